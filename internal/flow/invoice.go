// Package flow holds the multi-turn task engines: invoice slot collection,
// discount negotiation and the follow-up confirmation gate. Flows mutate
// session state and return structured step results; the dialogue engine owns
// the user-facing wording.
package flow

import (
	"regexp"
	"strings"

	"github.com/salespilot-ai/salespilot/internal/session"
)

// Invoice slot names, in collection order.
const (
	SlotClientName = "client_name"
	SlotServices   = "services"
	SlotAmount     = "amount"
	SlotDiscount   = "discount"
)

var invoiceSlots = []string{SlotClientName, SlotServices, SlotAmount, SlotDiscount}

// InvoiceStep is the outcome of feeding one message into an open invoice flow.
type InvoiceStep struct {
	// AwaitingSlot names the next slot to ask for; empty once the flow closes.
	AwaitingSlot string
	// Reprompt is set when the input did not parse for the awaited slot and
	// the same question must be asked again.
	Reprompt bool
	// Filled is the slot just collected, with its normalized value.
	Filled session.Slot
	// Invoice is the finalized record, set only on the closing step.
	Invoice *session.Invoice
}

// StartInvoice opens the invoice flow on the session and reports the first
// slot to collect.
func StartInvoice(s *session.Session) InvoiceStep {
	s.CurrentTask = session.TaskInvoiceCreation
	s.Slots = nil
	return InvoiceStep{AwaitingSlot: SlotClientName}
}

// AdvanceInvoice consumes one message for the open invoice flow. The amount
// slot re-prompts until a number is found; every other slot accepts free text.
// When the last slot fills, the flow closes and the invoice is parked on the
// session as pending.
func AdvanceInvoice(s *session.Session, input string) InvoiceStep {
	input = strings.TrimSpace(input)
	slot := NextInvoiceSlot(s)

	var value string
	switch slot {
	case SlotAmount:
		amount, ok := ExtractAmount(input)
		if !ok {
			return InvoiceStep{AwaitingSlot: SlotAmount, Reprompt: true}
		}
		value = amount
	case SlotDiscount:
		value = NormalizeDiscount(input)
	default:
		value = input
	}
	s.SetSlot(slot, value)

	if next := NextInvoiceSlot(s); next != "" {
		return InvoiceStep{AwaitingSlot: next, Filled: session.Slot{Name: slot, Value: value}}
	}

	client, _ := s.Slot(SlotClientName)
	services, _ := s.Slot(SlotServices)
	amount, _ := s.Slot(SlotAmount)
	discount, _ := s.Slot(SlotDiscount)
	inv := &session.Invoice{Client: client, Services: services, Amount: amount, Discount: discount}

	s.ClearFlow()
	s.PendingInvoice = inv
	s.LastAction = "created_invoice"
	return InvoiceStep{Filled: session.Slot{Name: slot, Value: value}, Invoice: inv}
}

// NextInvoiceSlot reports the first uncollected slot, or "" when all four are
// present.
func NextInvoiceSlot(s *session.Session) string {
	for _, name := range invoiceSlots {
		if _, ok := s.Slot(name); !ok {
			return name
		}
	}
	return ""
}

var amountRunRe = regexp.MustCompile(`[\d,]+`)

// ExtractAmount pulls the billing amount out of free text: every run of
// digits and commas is a candidate and the numerically largest one wins, so
// "website for 4000, contract 12" yields "4000". Candidates compare by digit
// count then lexically, so magnitude is not capped at machine integer width.
func ExtractAmount(text string) (string, bool) {
	runs := amountRunRe.FindAllString(text, -1)
	best := ""
	bestDigits := ""
	found := false
	for _, run := range runs {
		// Edge commas are list punctuation, not part of the amount.
		run = strings.Trim(run, ",")
		digits := strings.ReplaceAll(run, ",", "")
		if digits == "" {
			continue
		}
		digits = strings.TrimLeft(digits, "0")
		if !found || digitsGreater(digits, bestDigits) {
			best, bestDigits, found = run, digits, true
		}
	}
	return best, found
}

func digitsGreater(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

var noneVariants = []string{"none", "no", "nothing", "nahi", "na", "nope", "non", "noo", "nono", "nhi"}

// NormalizeDiscount folds the many ways of declining a discount into the
// literal "None"; anything else passes through trimmed.
func NormalizeDiscount(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, v := range noneVariants {
		if strings.Contains(lower, v) {
			return "None"
		}
	}
	return trimmed
}
