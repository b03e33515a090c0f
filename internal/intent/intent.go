// Package intent classifies free-text operator messages into a closed set of
// sales-assistant intents using keyword matching with single-typo tolerance.
package intent

import "strings"

type Intent string

const (
	GenerateEmails   Intent = "generate_emails"
	SendFollowups    Intent = "send_followups"
	ShowHighPriority Intent = "show_high_priority"
	AnalyzeLeads     Intent = "analyze_leads"
	SendInvoice      Intent = "send_invoice"
	ShowEmailExample Intent = "show_email_example"
	SendEmails       Intent = "send_emails"
	CreateInvoice    Intent = "create_invoice"
	SendPitch        Intent = "send_pitch"
	DiscountRequest  Intent = "handle_discount_request"
	FollowUp         Intent = "follow_up"
	ClientResponded  Intent = "client_responded"
	Unknown          Intent = "unknown"
)

// All lists every resolvable intent, in priority order.
func All() []Intent {
	out := make([]Intent, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.intent)
	}
	return append(out, Unknown)
}

// rule matches when keywords hit; when second is non-empty both sets must hit
// independently. Keyword sets overlap between intents, so order is load-bearing:
// email generation outranks follow-ups, invoice sending outranks invoice creation.
type rule struct {
	intent   Intent
	keywords []string
	second   []string
}

var rules = []rule{
	{intent: GenerateEmails, keywords: []string{"generate email", "create email", "email all", "mail all", "generate more", "genrate", "generat", "crete", "creat"}},
	{intent: SendFollowups, keywords: []string{"follow up", "followup", "follow-up", "folowup", "followp"}},
	{intent: ShowHighPriority,
		keywords: []string{"show", "display", "view", "displa", "vew"},
		second:   []string{"high priority", "priority", "qualified", "top lead", "best", "prioriti", "pririty"}},
	{intent: AnalyzeLeads,
		keywords: []string{"analyze", "analyse", "qualify", "score", "analze", "analize", "qualfy"},
		second:   []string{"lead", "all lead", "my lead", "leed"}},
	{intent: SendInvoice, keywords: []string{"send invoice", "email invoice", "send inv", "sendinvoice", "send invoce", "sendinvoce"}},
	{intent: ShowEmailExample,
		keywords: []string{"show", "display", "view", "example", "sample", "exampl", "sampl"},
		second:   []string{"email", "one", "emai", "emial", "mail"}},
	{intent: SendEmails, keywords: []string{"send all", "send email", "send them", "deliver", "sendall", "sendemail", "snd all"}},
	{intent: CreateInvoice, keywords: []string{"invoice", "bill", "create invoice", "make invoice", "invoce", "invice", "creat invoice"}},
	{intent: SendPitch, keywords: []string{"pitch", "convince", "save deal", "losing client", "retention", "pitc", "convinse", "sav deal"}},
	{intent: DiscountRequest, keywords: []string{"discount", "reduce price", "lower cost", "cheaper", "budget", "discont", "discoun", "reduc"}},
	{intent: FollowUp, keywords: []string{"follow up", "followup", "check in", "touch base", "folowup", "chek in", "touchbase"}},
	{intent: ClientResponded, keywords: []string{"client said", "client responded", "client replied", "got response", "respnded", "replid"}},
}

// Classify resolves text to exactly one intent. Resolution is total and
// deterministic; the first rule in priority order that matches wins.
func Classify(text string) Intent {
	msg := strings.ToLower(text)
	for _, r := range rules {
		if !matchAny(msg, r.keywords) {
			continue
		}
		if len(r.second) > 0 && !matchAny(msg, r.second) {
			continue
		}
		return r.intent
	}
	return Unknown
}

func matchAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if matchKeyword(text, kw) {
			return true
		}
	}
	return false
}

// matchKeyword accepts an exact substring hit, or for single-word keywords
// longer than three characters, an in-order greedy scan against each word of
// the input matching all but at most one character. Scanning word by word
// keeps the tolerance local: characters scattered across the whole message
// never add up to a match. The scan preserves character order; it is
// deliberately not an edit-distance metric.
func matchKeyword(text, keyword string) bool {
	if strings.Contains(text, keyword) {
		return true
	}
	if len(keyword) <= 3 || strings.Contains(keyword, " ") {
		return false
	}
	for _, word := range strings.Fields(text) {
		matched := 0
		pos := 0
		for i := 0; i < len(keyword); i++ {
			idx := strings.IndexByte(word[pos:], keyword[i])
			if idx < 0 {
				continue
			}
			matched++
			pos += idx + 1
		}
		if matched >= len(keyword)-1 {
			return true
		}
	}
	return false
}
