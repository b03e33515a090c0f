package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/flow"
	"github.com/salespilot-ai/salespilot/internal/scoring"
	"github.com/salespilot-ai/salespilot/internal/session"
)

// Operator-facing intent handlers. Each composes a directive and asks
// collaborators for side effects; collaborator failures become structured
// data, never turn failures.

func (e *Engine) analyzeLeads(ctx context.Context) Directive {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		return e.storeFailure("list leads", err)
	}
	if len(leads) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "I don't see any leads in the system. Add leads first, then I can analyze them for you.",
			SuggestedActions: []string{"Add leads", "Show help"},
		}
	}

	var high, medium, low int
	results := make([]map[string]any, 0, len(leads))
	var highlights []string
	for _, lead := range leads {
		res := scoring.Score(lead)
		notes := fmt.Sprintf("Auto-analyzed on %s", e.now().UTC().Format("2006-01-02"))
		if err := e.store.SaveAnalysis(ctx, lead.ID, crm.Analysis{
			Score:            res.Score,
			Status:           res.Status,
			PainPoints:       res.PainPoints,
			BudgetEstimate:   res.BudgetEstimate,
			DecisionTimeline: res.Timeline,
			Notes:            notes,
		}); err != nil {
			e.recordStoreError("save_analysis")
			continue
		}
		_ = e.store.RecordActivity(ctx, crm.Activity{
			LeadID:      lead.ID,
			Type:        "lead_analyzed",
			Description: fmt.Sprintf("Lead analyzed with score: %.2f", res.Score),
			Metadata:    fmt.Sprintf("Status: %s, Budget: %s", res.Status, res.BudgetEstimate),
			CreatedAt:   e.now(),
		})

		switch res.Tier {
		case scoring.TierHigh:
			high++
			if len(highlights) < 3 {
				highlights = append(highlights, fmt.Sprintf("  - %s - Score: %.2f - Budget: %s",
					lead.CompanyName, res.Score, res.BudgetEstimate))
			}
		case scoring.TierMedium:
			medium++
		default:
			low++
		}
		results = append(results, map[string]any{
			"lead_id":         lead.ID,
			"company":         lead.CompanyName,
			"lead_score":      res.Score,
			"status":          string(res.Status),
			"pain_points":     res.PainPoints,
			"budget_estimate": res.BudgetEstimate,
			"timeline":        res.Timeline,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lead analysis complete. Analyzed %d leads:\n\n", len(results))
	if high > 0 {
		fmt.Fprintf(&b, "High priority (%d leads):\n%s\n", high, strings.Join(highlights, "\n"))
		if high > 3 {
			fmt.Fprintf(&b, "  ...and %d more\n", high-3)
		}
		b.WriteString("\n")
	}
	if medium > 0 {
		fmt.Fprintf(&b, "Medium priority (%d leads)\n\n", medium)
	}
	if low > 0 {
		fmt.Fprintf(&b, "Low priority (%d leads)\n\n", low)
	}
	b.WriteString("Next steps:\n- Generate personalized emails for high-priority leads\n- Review pain points and budget estimates\n- Prioritize outreach based on scores")

	d := Directive{
		Understood:       true,
		ResponseText:     b.String(),
		ActionTaken:      "lead_analysis",
		SuggestedActions: []string{"Generate emails", "Show high priority leads", "Create invoice"},
	}
	d.withData("results", results)
	return d
}

func (e *Engine) showHighPriority(ctx context.Context) Directive {
	leads, err := e.store.LeadsByMinScore(ctx, 0.7)
	if err != nil {
		return e.storeFailure("list high-priority leads", err)
	}
	if len(leads) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "No high-priority leads found yet. Run 'analyze all leads' first to score and qualify your leads!",
			SuggestedActions: []string{"Analyze all leads", "Show all leads", "Generate emails"},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "High priority leads (%d found)\n\n", len(leads))
	for _, lead := range leads {
		fmt.Fprintf(&b, "%s (Score: %.2f)\n", lead.CompanyName, lead.LeadScore)
		fmt.Fprintf(&b, "  Contact: %s\n", lead.ContactName)
		fmt.Fprintf(&b, "  Email: %s\n", lead.Email)
		fmt.Fprintf(&b, "  Industry: %s\n", orDefault(lead.Industry, "N/A"))
		if lead.BudgetEstimate != "" {
			fmt.Fprintf(&b, "  Budget: %s\n", lead.BudgetEstimate)
		}
		if lead.DecisionTimeline != "" {
			fmt.Fprintf(&b, "  Timeline: %s\n", lead.DecisionTimeline)
		}
		if len(lead.PainPoints) > 0 {
			b.WriteString("  Pain points:\n")
			for i, point := range lead.PainPoints {
				if i >= 2 {
					break
				}
				fmt.Fprintf(&b, "    - %s\n", point)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("Recommended actions:\n- Generate personalized emails for these leads\n- Prioritize outreach to highest scores\n- Review pain points before reaching out")

	return Directive{
		Understood:       true,
		ResponseText:     b.String(),
		ActionTaken:      "show_high_priority",
		SuggestedActions: []string{"Generate emails", "Create invoice", "Analyze more leads"},
	}
}

func (e *Engine) generateEmails(ctx context.Context, s *session.Session) Directive {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		return e.storeFailure("list leads", err)
	}
	if len(leads) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "I don't see any leads in the system. Add leads first, then I can generate personalized emails for everyone.",
			SuggestedActions: []string{"Add leads", "Show help"},
		}
	}

	// Regeneration replaces old drafts wholesale.
	if _, err := e.store.DeleteDraftEmails(ctx); err != nil {
		e.recordStoreError("delete_drafts")
	}

	results := make([]map[string]string, 0, len(leads))
	failed := 0
	for _, lead := range leads {
		if lead.Email == "" || !strings.Contains(lead.Email, "@") {
			failed++
			results = append(results, map[string]string{
				"company": lead.CompanyName,
				"contact": lead.ContactName,
				"status":  "failed: missing or invalid email address",
			})
			continue
		}
		subjects := subjectTemplates(lead)
		bodies := bodyTemplates(lead)
		_, err := e.store.CreateEmail(ctx, crm.EmailRecord{
			LeadID:    lead.ID,
			Subject:   subjects[e.pick(len(subjects))],
			Body:      bodies[e.pick(len(bodies))],
			Recipient: lead.Email,
			Type:      "initial",
			Status:    crm.EmailStatusDraft,
			CreatedAt: e.now(),
		})
		if err != nil {
			failed++
			e.recordStoreError("create_email")
			results = append(results, map[string]string{
				"company": lead.CompanyName,
				"contact": lead.ContactName,
				"status":  "failed: " + err.Error(),
			})
			continue
		}
		results = append(results, map[string]string{
			"company": lead.CompanyName,
			"contact": lead.ContactName,
			"status":  "generated",
		})
	}

	s.LastAction = "generated_emails"
	success := len(leads) - failed

	var text string
	var suggestions []string
	switch {
	case failed == 0:
		text = fmt.Sprintf("Generated %d fresh personalized emails! Each one is customized for the company and industry. Want me to send them now, or review first?", success)
		suggestions = []string{"Send all emails", "Show me one example", "Schedule for later"}
	case success == 0:
		text = "Failed to generate any emails. Check that your leads have valid email addresses, then try again."
		suggestions = []string{"Show my leads", "Show help"}
	default:
		text = fmt.Sprintf("Generated %d emails successfully, but %d failed.\n\nSuccessful emails are ready to send. Check the results for details.", success, failed)
		suggestions = []string{"Send all emails", "Show me one example"}
	}

	d := Directive{
		Understood:       true,
		ResponseText:     text,
		ActionTaken:      "generate_emails",
		SuggestedActions: suggestions,
	}
	d.withData("results", results)
	return d
}

func (e *Engine) sendEmails(ctx context.Context, s *session.Session) Directive {
	drafts, err := e.store.EmailsByStatus(ctx, crm.EmailStatusDraft)
	if err != nil {
		return e.storeFailure("list draft emails", err)
	}
	if len(drafts) == 0 {
		return e.reportAlreadySent(ctx)
	}

	sent, failed := 0, 0
	results := make([]map[string]string, 0, len(drafts))
	for _, draft := range drafts {
		company := "Unknown"
		if lead, err := e.store.LeadByID(ctx, draft.LeadID); err == nil {
			company = lead.CompanyName
		}

		res := e.sender.Send(ctx, draft.Subject, draft.Body, draft.Recipient)
		if !res.Delivered {
			failed++
			if err := e.store.MarkEmailFailed(ctx, draft.ID, res.Reason); err != nil {
				e.recordStoreError("mark_email_failed")
			}
			if e.metrics != nil {
				e.metrics.CollaboratorErrors.WithLabelValues("mail", "send").Inc()
			}
			results = append(results, map[string]string{
				"company": company,
				"to":      draft.Recipient,
				"status":  "failed: " + res.Reason,
			})
			continue
		}

		now := e.now()
		if err := e.store.MarkEmailSent(ctx, draft.ID, now); err != nil {
			e.recordStoreError("mark_email_sent")
		}
		if err := e.store.MarkLeadContacted(ctx, draft.LeadID, now); err != nil && !errors.Is(err, crm.ErrLeadNotFound) {
			e.recordStoreError("mark_lead_contacted")
		}
		_ = e.store.RecordActivity(ctx, crm.Activity{
			LeadID:      draft.LeadID,
			Type:        "email_sent",
			Description: "Email sent: " + draft.Subject,
			CreatedAt:   now,
		})
		sent++
		results = append(results, map[string]string{
			"company": company,
			"to":      draft.Recipient,
			"status":  "sent",
		})
	}

	s.LastAction = "sent_emails"

	var b strings.Builder
	b.WriteString("Email sending complete!\n\n")
	fmt.Fprintf(&b, "Successfully sent: %d\n", sent)
	if failed > 0 {
		fmt.Fprintf(&b, "Failed: %d\n", failed)
	}
	b.WriteString("\nEmails marked as sent and leads updated to 'contacted' status.")

	d := Directive{
		Understood:       true,
		ResponseText:     b.String(),
		ActionTaken:      "send_emails",
		SuggestedActions: []string{"Create an invoice", "Follow up on leads", "Analyze responses"},
	}
	d.withData("results", results)
	if failed > 0 {
		d.withData("retry_suggestion", "Some deliveries failed; failed drafts keep their retry count and can be re-sent.")
	}
	return d
}

func (e *Engine) reportAlreadySent(ctx context.Context) Directive {
	sent, err := e.store.EmailsByStatus(ctx, crm.EmailStatusSent)
	if err != nil {
		return e.storeFailure("list sent emails", err)
	}
	if len(sent) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "No emails to send. Generate emails first!",
			SuggestedActions: []string{"Generate personalized emails"},
		}
	}

	var lines []string
	for i, rec := range sent {
		if i >= 5 {
			break
		}
		company := "Unknown"
		if lead, err := e.store.LeadByID(ctx, rec.LeadID); err == nil {
			company = lead.CompanyName
		}
		when := "recently"
		if rec.SentAt != nil {
			when = rec.SentAt.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("- %s (%s) - sent on %s", company, rec.Recipient, when))
	}
	more := ""
	if len(sent) > 5 {
		more = fmt.Sprintf("\n...and %d more", len(sent)-5)
	}

	return Directive{
		Understood: true,
		ResponseText: fmt.Sprintf("All emails have already been sent!\n\nSent emails (%d total):\n%s%s\n\nWould you like to send follow-up emails to these leads?",
			len(sent), strings.Join(lines, "\n"), more),
		ActionTaken:      "check_sent_emails",
		SuggestedActions: []string{"Yes, send follow-ups", "Show me sent emails", "Generate new emails"},
	}
}

func (e *Engine) showEmailExample(ctx context.Context) Directive {
	rec, ok := e.firstEmail(ctx)
	if !ok {
		return Directive{
			Understood:       true,
			ResponseText:     "No emails have been generated yet. Generate emails first!",
			SuggestedActions: []string{"Generate personalized emails"},
		}
	}
	lead, err := e.store.LeadByID(ctx, rec.LeadID)
	if err != nil {
		return Directive{
			Understood:       true,
			ResponseText:     "Email found but lead data is missing. Try generating emails again.",
			SuggestedActions: []string{"Generate personalized emails"},
		}
	}

	return Directive{
		Understood: true,
		ResponseText: fmt.Sprintf(`EMAIL PREVIEW

To: %s <%s>
Company: %s
Industry: %s

Subject:
%s

Email body:

%s

This email is personalized for %s based on their industry and company profile. Each lead receives a unique, tailored message.

Ready to send?`,
			lead.ContactName, lead.Email, lead.CompanyName, orDefault(lead.Industry, "N/A"),
			rec.Subject, rec.Body, lead.CompanyName),
		ActionTaken:      "show_example",
		SuggestedActions: []string{"Send all emails", "Generate more emails", "Create an invoice"},
	}
}

func (e *Engine) firstEmail(ctx context.Context) (crm.EmailRecord, bool) {
	for _, status := range []crm.EmailStatus{crm.EmailStatusDraft, crm.EmailStatusSent, crm.EmailStatusFailed} {
		recs, err := e.store.EmailsByStatus(ctx, status)
		if err != nil {
			e.recordStoreError("list_emails")
			return crm.EmailRecord{}, false
		}
		if len(recs) > 0 {
			return recs[0], true
		}
	}
	return crm.EmailRecord{}, false
}

func (e *Engine) startInvoice(s *session.Session) Directive {
	step := flow.StartInvoice(s)
	return Directive{
		Understood:   true,
		ResponseText: "Sure! I'll help you create an invoice. Let me ask you a few questions:\n\n1. Who is this invoice for? (Company name or client name)",
		AwaitingSlot: step.AwaitingSlot,
	}
}

func (e *Engine) continueInvoice(s *session.Session, text string) Directive {
	step := flow.AdvanceInvoice(s, text)
	if step.Reprompt {
		return Directive{
			Understood:   true,
			ResponseText: "I didn't catch the amount. Please enter just the number (e.g., '4000')",
			AwaitingSlot: step.AwaitingSlot,
		}
	}
	if step.Invoice == nil {
		return Directive{
			Understood:   true,
			ResponseText: invoicePrompt(step),
			AwaitingSlot: step.AwaitingSlot,
		}
	}

	inv := step.Invoice
	d := Directive{
		Understood: true,
		ResponseText: fmt.Sprintf(`Invoice created successfully!

Invoice details:
Client: %s
Services: %s
Amount: %s
Discount: %s

Invoice is ready! Say "send invoice" to email it to %s.`,
			inv.Client, inv.Services, inv.Amount, inv.Discount, inv.Client),
		ActionTaken:      "create_invoice",
		SuggestedActions: []string{"Send invoice", "Create another invoice", "Generate emails"},
	}
	d.withData("invoice", inv)
	return d
}

func invoicePrompt(step flow.InvoiceStep) string {
	switch step.AwaitingSlot {
	case flow.SlotServices:
		return fmt.Sprintf("Perfect! Invoice for %s.\n\n2. What services/products are you billing for? (e.g., 'Website development', 'Consulting')", step.Filled.Value)
	case flow.SlotAmount:
		return fmt.Sprintf("Got it: %s.\n\n3. What's the total amount? (e.g., '50,000' or just '4000')", step.Filled.Value)
	case flow.SlotDiscount:
		return fmt.Sprintf("Amount: %s.\n\n4. Any discount or special terms? (Type percentage like '10%%', an amount like '500', or 'none')", step.Filled.Value)
	default:
		return "Let's keep going."
	}
}

func (e *Engine) sendInvoice(ctx context.Context, s *session.Session) Directive {
	inv := s.PendingInvoice
	if inv == nil {
		return e.invoiceClientPicker(ctx)
	}

	// Deliver to the matching lead's address when we have one; otherwise the
	// invoice is confirmed without delivery.
	deliveredTo := ""
	if lead, ok := e.leadByCompany(ctx, inv.Client); ok {
		res := e.sender.Send(ctx,
			fmt.Sprintf("Invoice from SalesPilot - %s", inv.Services),
			fmt.Sprintf("Invoice for %s\n\nServices: %s\nAmount: %s\nDiscount: %s\n\nThank you for your business!",
				inv.Client, inv.Services, inv.Amount, inv.Discount),
			lead.Email)
		if res.Delivered {
			deliveredTo = lead.Email
			now := e.now()
			if rec, err := e.store.CreateEmail(ctx, crm.EmailRecord{
				LeadID:    lead.ID,
				Subject:   fmt.Sprintf("Invoice from SalesPilot - %s", inv.Services),
				Body:      fmt.Sprintf("Amount: %s, Discount: %s", inv.Amount, inv.Discount),
				Recipient: lead.Email,
				Type:      "invoice",
				Status:    crm.EmailStatusDraft,
				CreatedAt: now,
			}); err == nil {
				if err := e.store.MarkEmailSent(ctx, rec.ID, now); err != nil {
					e.recordStoreError("mark_email_sent")
				}
			}
		} else {
			if e.metrics != nil {
				e.metrics.CollaboratorErrors.WithLabelValues("mail", "send").Inc()
			}
			d := Directive{
				Understood:       true,
				ResponseText:     fmt.Sprintf("I couldn't deliver the invoice to %s: %s. The invoice is still pending, try again in a moment.", inv.Client, res.Reason),
				SuggestedActions: []string{"Send invoice", "Create another invoice"},
			}
			d.withData("delivery_error", res.Reason)
			return d
		}
	}

	s.PendingInvoice = nil
	text := fmt.Sprintf(`Invoice sent successfully!

Invoice has been emailed to %s

Summary:
- Services: %s
- Amount: %s
- Discount: %s

The client will receive the invoice in their inbox shortly!`, inv.Client, inv.Services, inv.Amount, inv.Discount)

	d := Directive{
		Understood:       true,
		ResponseText:     text,
		ActionTaken:      "sent_invoice",
		SuggestedActions: []string{"Create another invoice", "Generate emails", "Analyze leads"},
	}
	if deliveredTo != "" {
		d.withData("delivered_to", deliveredTo)
	}
	return d
}

func (e *Engine) invoiceClientPicker(ctx context.Context) Directive {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		return e.storeFailure("list leads", err)
	}
	if len(leads) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "No clients found in the system. Add leads first or create an invoice!",
			SuggestedActions: []string{"Create invoice", "Add leads"},
		}
	}

	var lines []string
	var suggestions []string
	for i, lead := range leads {
		if i < 10 {
			lines = append(lines, fmt.Sprintf("- %s (%s)", lead.CompanyName, lead.ContactName))
		}
		if i < 5 {
			suggestions = append(suggestions, lead.CompanyName)
		}
	}
	more := ""
	if len(leads) > 10 {
		more = fmt.Sprintf("\n...and %d more", len(leads)-10)
	}

	return Directive{
		Understood: true,
		ResponseText: fmt.Sprintf("Select a client to send an invoice to:\n\n%s%s\n\nType the client name, or create a new invoice first.",
			strings.Join(lines, "\n"), more),
		ActionTaken:      "show_clients_for_invoice",
		SuggestedActions: suggestions,
	}
}

func (e *Engine) leadByCompany(ctx context.Context, company string) (crm.Lead, bool) {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		e.recordStoreError("list_leads")
		return crm.Lead{}, false
	}
	for _, lead := range leads {
		if strings.EqualFold(lead.CompanyName, company) {
			return lead, true
		}
	}
	return crm.Lead{}, false
}

func (e *Engine) sendPitch(s *session.Session, lower string) Directive {
	situation := "general"
	switch {
	case strings.Contains(lower, "losing") || strings.Contains(lower, "competitor"):
		situation = "competitor"
	case strings.Contains(lower, "expensive") || strings.Contains(lower, "cost"):
		situation = "price_objection"
	case strings.Contains(lower, "timing") || strings.Contains(lower, "later"):
		situation = "timing"
	}

	text, ok := pitchTemplates[situation]
	if !ok {
		return Directive{
			Understood:   true,
			ResponseText: pitchFallback,
		}
	}
	s.LastAction = "generated_pitch"
	d := Directive{
		Understood:   true,
		ResponseText: text,
		ActionTaken:  "generated_pitch",
	}
	d.withData("pitch_type", situation)
	return d
}

func (e *Engine) startDiscount(s *session.Session, lower string) Directive {
	step := flow.Negotiate(s, lower)
	if e.metrics != nil {
		e.metrics.FlowEvents.WithLabelValues("discount", "started").Inc()
	}
	return e.discountDirective(step)
}

func (e *Engine) continueDiscount(s *session.Session, text string) Directive {
	step := flow.Negotiate(s, strings.ToLower(text))
	if !step.AwaitingAmount && e.metrics != nil {
		e.metrics.FlowEvents.WithLabelValues("discount", "resolved").Inc()
	}
	return e.discountDirective(step)
}

func (e *Engine) discountDirective(step flow.DiscountStep) Directive {
	if step.AwaitingAmount {
		return Directive{
			Understood:   true,
			ResponseText: "Client asked for a discount. How much are they asking for? (percentage or amount)",
			AwaitingSlot: "discount_amount",
		}
	}

	d := Directive{
		Understood: true,
		ResponseText: fmt.Sprintf(`Client asked for %d%% discount. Here's my recommendation:

Negotiation strategy:
1. Acknowledge their concern: "I understand budget is important"
2. Add value instead of just cutting price
3. Offer alternatives:
   - %d%% discount + extended support
   - Pilot program at reduced rate
   - Payment plan to spread cost

Want me to draft a response? Or tell me what direction to take.`, step.Requested, step.Counter),
	}
	d.withData("recommendations", step.Recommendation)
	return d
}

func (e *Engine) followUpOverview(ctx context.Context) Directive {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		return e.storeFailure("list leads", err)
	}
	count := 0
	for _, lead := range leads {
		if lead.Status == crm.LeadStatusContacted {
			count++
		}
	}
	d := Directive{
		Understood: true,
		ResponseText: fmt.Sprintf("I found %d leads that need follow-up. Want me to:\n\n1. Send automated follow-up to all\n2. Generate personalized follow-ups\n3. Show the list so you can choose", count),
		ActionTaken: "identified_follow_ups",
	}
	d.withData("follow_up_count", count)
	return d
}

func (e *Engine) clientResponded(lower string) Directive {
	sentiment := sentimentOf(lower)
	d := Directive{
		Understood:   true,
		ResponseText: clientResponseAdvice[string(sentiment)],
		ActionTaken:  "analyzed_client_response",
	}
	d.withData("sentiment", string(sentiment))
	return d
}

func (e *Engine) generateFollowup(ctx context.Context, s *session.Session) Directive {
	sentRecs, err := e.store.EmailsByStatus(ctx, crm.EmailStatusSent)
	if err != nil {
		return e.storeFailure("list sent emails", err)
	}
	sentMails := make([]flow.SentMail, 0, len(sentRecs))
	for _, rec := range sentRecs {
		if rec.SentAt == nil {
			continue
		}
		sentMails = append(sentMails, flow.SentMail{LeadID: rec.LeadID, SentAt: *rec.SentAt})
	}

	// Eligibility caps each lead at one prior delivered mail.
	priorSent := make(map[string]int, len(sentMails))
	for _, m := range sentMails {
		if _, ok := priorSent[m.LeadID]; ok {
			continue
		}
		recs, err := e.store.SentEmailsForLead(ctx, m.LeadID)
		if err != nil {
			return e.storeFailure("count sent emails", err)
		}
		priorSent[m.LeadID] = len(recs)
	}

	sel := flow.SelectFollowup(e.now(), sentMails, priorSent)
	switch sel.Kind {
	case flow.SelectionNoneSent:
		return Directive{
			Understood:       true,
			ResponseText:     "No emails have been sent yet. Send initial emails first!",
			SuggestedActions: []string{"Send all emails", "Generate emails"},
		}
	case flow.SelectionAllCovered:
		return Directive{
			Understood:       true,
			ResponseText:     "All leads have already received follow-up emails! Great job staying on top of your outreach.",
			SuggestedActions: []string{"Analyze leads", "Generate new emails", "Create invoice"},
		}
	case flow.SelectionWait:
		company := "Unknown"
		if lead, err := e.store.LeadByID(ctx, sel.LeadID); err == nil {
			company = lead.CompanyName
		}
		return Directive{
			Understood: true,
			ResponseText: fmt.Sprintf(`No follow-ups ready yet.

All sent emails are less than 24 hours old. Follow-ups should wait at least 24 hours to avoid being pushy.

Next follow-up available:
- %s - in %d hours

I'll let you know when it's time!`, company, sel.HoursRemaining),
			SuggestedActions: []string{"Check again later", "Analyze leads", "Generate new emails"},
		}
	}

	lead, err := e.store.LeadByID(ctx, sel.LeadID)
	if err != nil {
		return Directive{
			Understood:       true,
			ResponseText:     "The eligible lead is missing from the system. Try analyzing leads again.",
			SuggestedActions: []string{"Analyze leads"},
		}
	}

	subjects := followupSubjectTemplates(lead)
	bodies := followupBodyTemplates(lead)
	draft := &session.FollowupDraft{
		LeadID:  lead.ID,
		Subject: subjects[e.pick(len(subjects))],
		Body:    bodies[e.pick(len(bodies))],
	}
	s.PendingFollowup = draft
	if e.metrics != nil {
		e.metrics.FlowEvents.WithLabelValues("followup", "previewed").Inc()
	}

	return Directive{
		Understood: true,
		ResponseText: fmt.Sprintf(`FOLLOW-UP EMAIL PREVIEW

To: %s <%s>
Company: %s
Original email sent: %d hours ago

Subject:
%s

Email body:

%s

This is a personalized follow-up email. Want to send it?`,
			lead.ContactName, lead.Email, lead.CompanyName, sel.HoursSinceSent,
			draft.Subject, draft.Body),
		ActionTaken:      "preview_followup",
		SuggestedActions: []string{"Yes, send this", "Generate another one", "Cancel"},
	}
}

func (e *Engine) sendPendingFollowup(ctx context.Context, s *session.Session) Directive {
	draft := s.PendingFollowup
	if draft == nil {
		return Directive{
			Understood:       true,
			ResponseText:     "No pending follow-up email found.",
			SuggestedActions: []string{"Generate follow-ups"},
		}
	}

	lead, err := e.store.LeadByID(ctx, draft.LeadID)
	if err != nil {
		s.PendingFollowup = nil
		return Directive{
			Understood:       true,
			ResponseText:     "The lead for this follow-up is missing from the system.",
			SuggestedActions: []string{"Analyze leads"},
		}
	}

	rec, err := e.store.CreateEmail(ctx, crm.EmailRecord{
		LeadID:    lead.ID,
		Subject:   draft.Subject,
		Body:      draft.Body,
		Recipient: lead.Email,
		Type:      "follow_up",
		Status:    crm.EmailStatusDraft,
		CreatedAt: e.now(),
	})
	if err != nil {
		return e.storeFailure("record follow-up email", err)
	}

	res := e.sender.Send(ctx, draft.Subject, draft.Body, lead.Email)
	s.PendingFollowup = nil
	if !res.Delivered {
		if err := e.store.MarkEmailFailed(ctx, rec.ID, res.Reason); err != nil {
			e.recordStoreError("mark_email_failed")
		}
		if e.metrics != nil {
			e.metrics.CollaboratorErrors.WithLabelValues("mail", "send").Inc()
		}
		d := Directive{
			Understood:       true,
			ResponseText:     fmt.Sprintf("Failed to send follow-up: %s", res.Reason),
			SuggestedActions: []string{"Try again", "Check email settings"},
		}
		d.withData("delivery_error", res.Reason)
		return d
	}

	now := e.now()
	if err := e.store.MarkEmailSent(ctx, rec.ID, now); err != nil {
		e.recordStoreError("mark_email_sent")
	}
	_ = e.store.RecordActivity(ctx, crm.Activity{
		LeadID:      lead.ID,
		Type:        "followup_sent",
		Description: "Follow-up sent: " + draft.Subject,
		CreatedAt:   now,
	})
	if e.metrics != nil {
		e.metrics.FlowEvents.WithLabelValues("followup", "sent").Inc()
	}

	return Directive{
		Understood: true,
		ResponseText: fmt.Sprintf(`Follow-up email sent successfully!

Sent to: %s (%s)
Company: %s

The follow-up email has been delivered. Great work staying on top of your leads!`,
			lead.ContactName, lead.Email, lead.CompanyName),
		ActionTaken:      "sent_followup",
		SuggestedActions: []string{"Send more follow-ups", "Analyze leads", "Create invoice"},
	}
}

func (e *Engine) generalQuery(ctx context.Context, original, lower string) Directive {
	if containsAny(lower, "hi", "hello", "hey", "greetings") {
		return Directive{
			Understood:       true,
			ResponseText:     "Hi there! I'm your outreach automation assistant. I can help you with:\n\n- Generating personalized emails for leads\n- Creating invoices\n- Handling client negotiations and discounts\n- Sending follow-ups\n- Pitching to save deals\n\nWhat would you like to do today?",
			SuggestedActions: []string{"Generate emails", "Create invoice", "Client asked for discount"},
		}
	}
	if containsAny(lower, "who are you", "what are you", "who r u", "what r u", "your name", "introduce yourself") {
		return Directive{
			Understood:       true,
			ResponseText:     "I'm an AI-powered business development assistant: email automation for personalized outreach at scale, deal management for invoices and negotiations, and lead intelligence for smart analysis and follow-ups.\n\nThink of me as your virtual BDE team member who never sleeps. What would you like me to help with?",
			SuggestedActions: []string{"Generate emails", "Create invoice", "Show my leads"},
		}
	}
	if containsAny(lower, "help", "what can you", "how to", "capabilities", "can you do") {
		return Directive{
			Understood:       true,
			ResponseText:     "I'm an intelligent outreach assistant that can:\n\n- Email automation: generate personalized emails based on company and industry\n- Invoice creation: walk you through creating invoices step-by-step\n- Negotiation help: provide strategies when clients ask for discounts\n- Deal saving: generate pitches when deals are at risk\n- Follow-ups: help manage client communications\n\nJust tell me what you need in natural language, and I'll handle it!",
			SuggestedActions: []string{"Show me leads", "Generate emails", "Create an invoice"},
		}
	}
	if containsAny(lower, "show", "display", "list", "view") && containsAny(lower, "lead", "data", "client", "company") {
		return e.showLeads(ctx)
	}
	if containsAny(lower, "thank", "thanks", "great job", "awesome", "perfect", "good work") {
		return Directive{
			Understood:       true,
			ResponseText:     "You're welcome! Happy to help. Is there anything else you'd like me to do?",
			SuggestedActions: []string{"Generate more emails", "Create invoice", "Show leads"},
		}
	}

	return Directive{
		Understood:   false,
		ResponseText: fmt.Sprintf("Hmm, I'm not quite sure what you want to do with: '%s'\n\nCan you rephrase? Try something like:\n- 'Generate emails for all leads'\n- 'Create an invoice'\n- 'Client wants 20%% discount'\n- 'Show me my leads'", original),
		SuggestedActions: []string{
			"Generate personalized emails",
			"Create an invoice",
			"Handle client discount request",
			"Show my leads",
		},
	}
}

func (e *Engine) showLeads(ctx context.Context) Directive {
	leads, err := e.store.Leads(ctx)
	if err != nil {
		return e.storeFailure("list leads", err)
	}
	if len(leads) == 0 {
		return Directive{
			Understood:       true,
			ResponseText:     "You don't have any leads in the system yet. Add some to get started!",
			SuggestedActions: []string{"Add leads", "Help me get started"},
		}
	}
	var lines []string
	for i, lead := range leads {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%s) - %s", lead.CompanyName, lead.ContactName, lead.Email))
	}
	trailer := ""
	if len(leads) > 10 {
		trailer = "\n\n...(showing first 10)"
	}
	return Directive{
		Understood:       true,
		ResponseText:     fmt.Sprintf("You have %d leads in the system:\n\n%s%s", len(leads), strings.Join(lines, "\n"), trailer),
		SuggestedActions: []string{"Generate emails for all", "Analyze these leads", "Create invoice"},
	}
}

// storeFailure folds a persistence failure into a directive with a retry hint.
func (e *Engine) storeFailure(op string, err error) Directive {
	e.recordStoreError(op)
	d := Directive{
		Understood:       true,
		ResponseText:     fmt.Sprintf("I ran into a storage problem while trying to %s. Please try again in a moment.", op),
		SuggestedActions: []string{"Try again"},
	}
	d.withData("error", err.Error())
	d.withData("retry_suggestion", "The storage backend did not respond; retrying usually resolves this.")
	return d
}

func (e *Engine) recordStoreError(code string) {
	if e.metrics != nil {
		e.metrics.CollaboratorErrors.WithLabelValues("crm", code).Inc()
	}
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
