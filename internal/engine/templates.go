package engine

import (
	"fmt"
	"strings"

	"github.com/salespilot-ai/salespilot/internal/crm"
)

// Outbound copy lives here as template builders keyed off lead data. Template
// choice goes through the engine's injectable random source so tests can pin
// the output.

func subjectTemplates(lead crm.Lead) []string {
	company := orDefault(lead.CompanyName, "Your Company")
	contact := orDefault(lead.ContactName, "there")
	industry := orDefault(lead.Industry, "Business")
	return []string{
		fmt.Sprintf("Partnership Opportunity for %s", company),
		fmt.Sprintf("How %s Can Increase Efficiency by 40%%", company),
		fmt.Sprintf("Quick Question for %s", contact),
		fmt.Sprintf("Helping %s Companies Scale Faster", industry),
		fmt.Sprintf("%s, I Have an Idea for %s", contact, company),
		fmt.Sprintf("Revolutionizing %s with AI Automation", industry),
		fmt.Sprintf("%s - Let's Talk About %s's Growth", contact, company),
		fmt.Sprintf("Exclusive Offer for %s", company),
		fmt.Sprintf("Transform %s's Operations", company),
		fmt.Sprintf("Quick Win for %s Leaders Like You", industry),
	}
}

func bodyTemplates(lead crm.Lead) []string {
	company := orDefault(lead.CompanyName, "Your Company")
	contact := orDefault(lead.ContactName, "there")
	industry := orDefault(lead.Industry, "Business")
	return []string{
		fmt.Sprintf(`Hi %s,

I came across %s and was impressed by your work in the %s space.

We've helped similar companies in %s increase their operational efficiency by 40%% and reduce manual tasks by 70%% through intelligent automation. Companies like yours typically see ROI within 2-3 months.

Would you be open to a quick 15-minute conversation to explore how we could help %s achieve similar results? No pressure - just sharing what's worked for others.

Best regards,
SalesPilot Outreach Team

P.S. If timing isn't right, I completely understand. Feel free to reach out when it makes sense.`, contact, company, industry, industry, company),
		fmt.Sprintf(`Hello %s,

I noticed %s is doing great work in %s. I wanted to reach out because we're helping companies like yours solve a common challenge.

Many %s leaders tell us they're spending too much time on repetitive tasks. Our AI-powered automation has helped clients:
- Save 15+ hours per week
- Reduce errors by 85%%
- Scale without hiring more staff

Would you be interested in a brief call to see if we could help %s achieve similar results?

Warm regards,
SalesPilot Outreach Team`, contact, company, industry, industry, company),
		fmt.Sprintf(`Hi %s,

I've been following %s's growth in the %s sector and wanted to share something that might interest you.

We recently helped three companies in %s automate their workflows, resulting in:
- 40%% faster deal closure
- 70%% reduction in manual data entry
- 3x increase in lead conversion

I'd love to show you how %s could achieve similar outcomes. Are you available for a quick 10-minute call this week?

Cheers,
SalesPilot Outreach Team`, contact, company, industry, industry, company),
		fmt.Sprintf(`Dear %s,

Quick question: Is %s looking to streamline operations and boost productivity?

We specialize in helping %s businesses like yours automate time-consuming tasks. Our clients typically:
- Reduce operational costs by 30%%
- Improve team productivity by 50%%
- Close deals 40%% faster

If you're open to exploring how this could work for %s, I'd be happy to share a quick demo.

Best,
SalesPilot Outreach Team`, contact, company, industry, company),
		fmt.Sprintf(`Hi %s,

I came across %s while researching innovative companies in %s.

What caught my attention is how companies like yours can benefit from AI-powered automation. We've worked with similar organizations to:
- Automate lead qualification and follow-ups
- Generate personalized client communications
- Track and analyze sales metrics in real-time

I believe %s could see significant value. Would you be open to a brief conversation?

Looking forward to connecting,
SalesPilot Outreach Team`, contact, company, industry, company),
	}
}

var followupIndustryExamples = map[string]string{
	"saas":         "reducing customer onboarding time by 50%",
	"fintech":      "automating compliance reports and saving 20 hours/week",
	"retail":       "streamlining inventory management and reducing stockouts",
	"healthcare":   "digitizing patient workflows and improving appointment scheduling",
	"construction": "automating project tracking and resource allocation",
	"edtech":       "increasing student engagement through automated personalization",
	"ecommerce":    "reducing cart abandonment by 30% with smart automation",
}

const followupGenericExample = "automating repetitive tasks and saving 10+ hours/week"

func followupSubjectTemplates(lead crm.Lead) []string {
	company := orDefault(lead.CompanyName, "your company")
	contact := orDefault(lead.ContactName, "there")
	return []string{
		fmt.Sprintf("Following up - %s", company),
		fmt.Sprintf("Hi %s, quick question", contact),
		fmt.Sprintf("Re: Automation opportunities for %s", company),
		fmt.Sprintf("Still interested, %s?", contact),
		"Thought you'd find this interesting",
		"Quick check-in about our last conversation",
		"Did you get a chance to review this?",
	}
}

func followupBodyTemplates(lead crm.Lead) []string {
	company := orDefault(lead.CompanyName, "your company")
	contact := orDefault(lead.ContactName, "there")
	industry := orDefault(lead.Industry, "similar")
	example := followupGenericExample
	if ex, ok := followupIndustryExamples[normalizeIndustry(lead.Industry)]; ok {
		example = ex
	}
	return []string{
		fmt.Sprintf(`Hi %s,

I hope you've had a great week! I'm following up on my email about automation solutions for %s.

I know inboxes get crowded, so I wanted to resurface this because I genuinely think it could help. We recently worked with a %s company on %s.

No pressure at all - but if you're curious, I'd love to share a 5-minute overview. Would Thursday or Friday work for a quick call?

Cheers,
SalesPilot Outreach Team

P.S. If timing isn't right, just let me know when would be better!`, contact, company, industry, example),
		fmt.Sprintf(`Hello %s,

Quick follow-up - I wanted to share something relevant to %s.

A %s company we worked with last month saw:
- 45%% faster deal cycles
- 3x improvement in lead response time
- %s

If any of that sounds useful, I'd be glad to walk you through how it would apply to %s. Fifteen minutes, no slides.

Best,
SalesPilot Outreach Team`, contact, company, industry, example, company),
		fmt.Sprintf(`Hi %s,

Just checking in on my last note about %s. Most teams we talk to are stretched thin this quarter, which is usually exactly when %s pays off fastest.

Happy to send a short written summary instead of a call if that's easier. What works for you?

Thanks,
SalesPilot Outreach Team`, contact, company, example),
	}
}

// Pitch copy for the save-the-deal handler, keyed by detected situation.
var pitchTemplates = map[string]string{
	"competitor": `Pitch to counter a competitor:

"I completely understand you're evaluating options - that's smart. Here's what our clients tell us sets us apart:

1. Implementation speed: operational in 1 week vs. 2-3 months
2. ROI proof: 30-day trial with real data, not promises
3. Support: dedicated account manager, not a ticket system

Happy to connect you with a client who tried the competitor first, then switched.

Can we do a side-by-side comparison this week?"`,
	"price_objection": `Pitch for price concerns:

"I hear you on the investment. Let me show you the math:

Current cost of the manual process: [X hours x Y rate] = $Z/month
Our solution: $A/month
Net savings: $B/month = 5-month payback

Plus: we offer a 60-day money-back guarantee. If you don't see ROI, full refund.

What if we start with a pilot on just one use case to prove value?"`,
	"timing": `Pitch for a timing objection:

"I totally get it - timing matters. Quick question: what would need to change for the timing to be right?

Most clients say 'not now' and then six months later wish they'd started sooner. The cost of waiting is usually higher than the cost of getting started.

What if we do a 30-day pilot starting next month? Low commitment, real results."`,
}

const pitchFallback = "Let me craft a pitch. What's the main objection: price, competitor, or timing?"

// Canned analyses for the client-responded handler, keyed by sentiment.
var clientResponseAdvice = map[string]string{
	"positive": `Great! The client is interested. Here's what I recommend:

1. Schedule a demo/call ASAP while they're warm
2. Send a calendar invite with 3 time options
3. Prepare a personalized deck for their industry

Want me to draft the calendar invite?`,
	"negative": `The client seems hesitant. Let me help:

1. Identify the real objection (price? timing? trust?)
2. Address it specifically
3. Offer a low-risk next step (pilot, case study, reference call)

What exactly did they say? I'll craft the response.`,
	"neutral": `The client responded but it's not clear if positive or negative. Want me to:

1. Send a clarifying question
2. Offer multiple options
3. Schedule a quick call to discuss`,
}

func normalizeIndustry(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
