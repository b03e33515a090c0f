package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/salespilot-ai/salespilot/internal/analysis"
	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/session"
)

// Lead-facing chat: a prospect talks to the assistant about the product. It
// shares the session store with the operator chat but keys sessions under a
// "lead:" prefix so the two surfaces never collide.

// LeadReply is the structured outcome of one lead chat turn.
type LeadReply struct {
	Response         string  `json:"response"`
	Sentiment        string  `json:"sentiment"`
	Intent           string  `json:"intent"`
	SuggestedAction  string  `json:"suggested_action"`
	ConversationTurn int     `json:"conversation_turn"`
	Confidence       float64 `json:"confidence"`
}

// Lead chat intents, checked in declaration order; first match wins.
var leadIntents = []struct {
	name string
	re   *regexp.Regexp
}{
	{"greeting", regexp.MustCompile(`hi|hello|hey|greetings|good\s+(morning|afternoon|evening)`)},
	{"pricing", regexp.MustCompile(`cost|price|expensive|cheap|afford|budget|pay|fee`)},
	{"features", regexp.MustCompile(`feature|capability|can\s+it|does\s+it|function|work|how`)},
	{"demo", regexp.MustCompile(`demo|show|see\s+it|trial|test|try`)},
	{"competitor", regexp.MustCompile(`competitor|salesforce|hubspot|pipedrive|alternative|vs|compare`)},
	{"objection_timing", regexp.MustCompile(`not\s+now|later|busy|not\s+ready|next\s+(month|quarter|year)`)},
	{"objection_trust", regexp.MustCompile(`prove|guarantee|risk|sure|certain|works|results`)},
	{"positive", regexp.MustCompile(`interested|sounds\s+good|great|perfect|yes|absolutely`)},
	{"question", regexp.MustCompile(`what|how|why|when|where|who|\?`)},
	{"goodbye", regexp.MustCompile(`bye|goodbye|thanks|thank\s+you|see\s+you`)},
}

func classifyLeadIntent(msg string) string {
	for _, it := range leadIntents {
		if it.re.MatchString(msg) {
			return it.name
		}
	}
	return "general_inquiry"
}

type pricingTier struct {
	Price    string
	Users    string
	Features string
}

var productKnowledge = struct {
	Features    []string
	Benefits    []string
	Pricing     map[string]pricingTier
	Competitors map[string]string
	CaseStudies []string
}{
	Features: []string{
		"automated lead qualification using AI scoring algorithms",
		"intelligent email personalization that adapts to client responses",
		"meeting scheduling with automatic timezone detection",
		"sentiment analysis for real-time conversation insights",
		"multi-channel communication tracking (email, chat, phone)",
	},
	Benefits: []string{
		"reduce manual work by 70% with automated lead qualification",
		"increase conversion rates by 40% through personalized outreach",
		"save 15 hours per week on repetitive tasks",
		"improve response time from hours to minutes",
		"gain data-driven insights from every interaction",
	},
	Pricing: map[string]pricingTier{
		"starter":      {Price: "$299/month", Users: "1-3 users", Features: "Basic automation"},
		"professional": {Price: "$799/month", Users: "5-10 users", Features: "Full automation + Analytics"},
		"enterprise":   {Price: "Custom", Users: "Unlimited", Features: "Custom integrations + Dedicated support"},
	},
	Competitors: map[string]string{
		"salesforce": "more affordable and easier to implement",
		"hubspot":    "better AI capabilities and automation",
		"pipedrive":  "superior lead scoring and qualification",
	},
	CaseStudies: []string{
		"TechCorp increased pipeline by 200% in 3 months",
		"RetailPro reduced sales cycle from 90 to 45 days",
		"FinanceHub achieved 85% lead qualification accuracy",
	},
}

// LeadChat runs one prospect message through the product-facing dialogue.
// Unknown lead ids still get a conversation; the lead snapshot just stays
// empty and the copy falls back to generic phrasing.
func (e *Engine) LeadChat(ctx context.Context, leadID, message string) LeadReply {
	lead, err := e.store.LeadByID(ctx, leadID)
	if err != nil {
		lead = crm.Lead{ID: leadID}
	}

	msg := strings.ToLower(message)
	tag := classifyLeadIntent(msg)
	res := analysis.Analyze(message)

	var reply LeadReply
	_, uerr := e.sessions.Update("lead:"+leadID, func(s *session.Session) error {
		for _, concern := range res.Entities.Concerns {
			if concern == "pricing" {
				s.AddObjection("pricing")
			}
		}
		switch tag {
		case "objection_timing":
			s.AddObjection("timing")
		case "objection_trust":
			s.AddObjection("trust")
		}

		response := e.leadResponse(tag, msg, res.Entities, lead, len(s.Turns))

		s.Turns = append(s.Turns,
			session.Turn{Role: "client", Text: message, Sentiment: string(res.Sentiment), Intent: tag, At: e.now()},
			session.Turn{Role: "agent", Text: response, At: e.now()},
		)

		reply = LeadReply{
			Response:         response,
			Sentiment:        string(res.Sentiment),
			Intent:           tag,
			SuggestedAction:  suggestLeadAction(tag, res.Sentiment, s),
			ConversationTurn: len(s.Turns) / 2,
			Confidence:       0.85,
		}
		return nil
	})
	if uerr != nil {
		reply = LeadReply{
			Response:   "Sorry, something went wrong on my end. Could you say that again?",
			Sentiment:  string(res.Sentiment),
			Intent:     tag,
			Confidence: 0.85,
		}
	}

	if e.metrics != nil {
		e.metrics.Turns.WithLabelValues("lead_chat_" + tag).Inc()
	}
	return reply
}

func (e *Engine) leadResponse(tag, msg string, ents analysis.Entities, lead crm.Lead, priorTurns int) string {
	company := orDefault(lead.CompanyName, "your company")
	industry := orDefault(lead.Industry, "your industry")
	kb := productKnowledge

	switch tag {
	case "greeting":
		greetings := []string{
			fmt.Sprintf("Hello! I'm here to help %s explore how we can optimize your business development process.", company),
			fmt.Sprintf("Hi there! Great to connect with someone from %s. I'd love to learn about your current challenges.", company),
			fmt.Sprintf("Welcome! I understand %s operates in %s - I'm curious what brought you here today?", company, industry),
		}
		return greetings[e.pick(len(greetings))]

	case "pricing":
		size := strings.ToLower(lead.CompanySize)
		if strings.Contains(msg, "starter") || (size != "" && strings.Contains(size, "small")) {
			tier := kb.Pricing["starter"]
			return fmt.Sprintf("For a company like %s, our Starter plan at %s would be ideal. This covers %s and includes %s. Based on similar clients, you'd see ROI within 2-3 months through time savings alone. What specific capabilities are most important to you?",
				company, tier.Price, tier.Users, tier.Features)
		}
		return fmt.Sprintf("Our pricing adapts to your needs. Most %s companies start with our Professional plan ($799/month) which delivers full automation and analytics. That typically saves 15+ hours per week. Given %s's scale, we could also explore an Enterprise solution with custom integrations. What's driving your interest in automation right now?",
			industry, company)

	case "features":
		switch {
		case strings.Contains(msg, "email"):
			feature := kb.Features[e.pick(2)]
			benefit := kb.Benefits[e.pick(2)]
			return fmt.Sprintf("Great question about email capabilities. We offer %s. In practical terms, this means %s. For %s companies, this is particularly powerful because it adapts messaging based on how prospects engage. Want me to show you a quick example?",
				feature, benefit, industry)
		case strings.Contains(msg, "ai") || strings.Contains(msg, "intelligence"):
			return fmt.Sprintf("Our AI engine analyzes every interaction to understand prospect intent and sentiment in real-time. For %s, this means your team knows instantly whether a lead is hot, warm, or needs nurturing - no guesswork. We've seen %s companies increase qualification accuracy by 60%%. What's your current lead qualification process like?",
				company, industry)
		default:
			features := strings.Join(e.sample(kb.Features, 3), "; ")
			return fmt.Sprintf("We provide several key capabilities including: %s. For %s, the most impactful would likely be intelligent lead scoring and automated personalization. These work together to ensure you're spending time on the right prospects with the right message. Which area interests you most?",
				features, company)
		}

	case "competitor":
		if len(ents.Competitors) > 0 {
			comp := ents.Competitors[0]
			advantage, ok := kb.Competitors[comp]
			if !ok {
				advantage = "more advanced AI and better ROI"
			}
			caseStudy := kb.CaseStudies[e.pick(len(kb.CaseStudies))]
			title := titleCase(comp)
			return fmt.Sprintf("I appreciate you mentioning %s - they're a solid platform. Where we differentiate is being %s. Specifically for %s, we excel at contextual automation rather than rigid workflows. For instance, %s. What's been your experience with %s so far?",
				title, advantage, industry, caseStudy, title)
		}
		return fmt.Sprintf("It's smart to evaluate options. Most %s companies we work with compared us to 2-3 alternatives. Our key differentiator is AI-first design - we don't bolt AI onto legacy systems. This means faster implementation and better results. What criteria matter most in your decision?",
			industry)

	case "objection_timing":
		return fmt.Sprintf("I completely understand - timing is crucial. Many %s companies tell us the same thing, then realize the cost of waiting. Here's a thought: what if we started with a 30-day pilot focused on just lead qualification? Low commitment, and you'd see concrete ROI data to make a confident decision. %s could be operational in a week. What would need to be true for the timing to work?",
			industry, company)

	case "objection_trust":
		caseStudy := kb.CaseStudies[e.pick(len(kb.CaseStudies))]
		return fmt.Sprintf("Absolutely fair concern - you need proof this works. Here's what I can offer: %s. Beyond case studies, we provide a 60-day money-back guarantee and can set you up with a reference call from a %s company. What specific outcome would you need to see to feel confident?",
			caseStudy, industry)

	case "positive":
		return fmt.Sprintf("Excellent! I'm excited about what we could accomplish together for %s. Based on our conversation, I think the next logical step is a 15-minute demo tailored to %s workflows. I can show you exactly how the AI makes decisions and you can ask questions in real-time. Does tomorrow or Thursday work better?",
			company, industry)

	case "demo":
		return fmt.Sprintf("Perfect - a demo is the best way to see the value. I'll customize it for %s's specific use case in %s. We'll walk through live lead scoring, email personalization, and the analytics dashboard. Takes about 15 minutes. I have slots available this week - what day works for you?",
			company, industry)

	case "goodbye":
		return fmt.Sprintf("Thank you for your time! I'll send over some %s-specific resources for %s. Feel free to reach out anytime - I'm here to help. Have a great day!",
			industry, company)

	default:
		if priorTurns == 0 {
			return fmt.Sprintf("Thanks for reaching out! I help %s companies like %s streamline business development with AI-powered automation. What specific challenge brought you here today - is it lead qualification, email outreach, or something else?",
				industry, company)
		}
		return fmt.Sprintf("I want to make sure I'm addressing what matters to %s. Could you tell me more about what you're looking to achieve? Whether it's saving time, increasing conversions, or improving your sales process, I can explain how we approach that.",
			company)
	}
}

// suggestLeadAction ranks next-step recommendations: hot signals first, then
// any objection raised earlier in the session, then the intent default.
func suggestLeadAction(tag string, sentiment analysis.Sentiment, s *session.Session) string {
	if tag == "demo" || (tag == "positive" && sentiment == analysis.SentimentPositive) {
		return "schedule_demo_immediately"
	}

	if s.HasObjection("pricing") {
		return "send_roi_calculator"
	}
	if s.HasObjection("timing") {
		return "suggest_pilot_program"
	}
	if s.HasObjection("trust") {
		return "send_case_study"
	}

	switch tag {
	case "pricing":
		return "send_pricing_breakdown"
	case "features":
		return "schedule_demo"
	case "competitor":
		return "send_comparison_guide"
	case "positive":
		return "move_to_proposal"
	case "greeting":
		return "continue_discovery"
	}
	return "continue_conversation"
}

func titleCase(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

// sample returns k distinct entries from src in stable draw order.
func (e *Engine) sample(src []string, k int) []string {
	if k >= len(src) {
		return append([]string(nil), src...)
	}
	pool := append([]string(nil), src...)
	out := make([]string, 0, k)
	for len(out) < k {
		i := e.pick(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}
