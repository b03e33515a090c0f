package flow

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/salespilot-ai/salespilot/internal/session"
)

// Recommendation is the negotiation guidance produced for a discount ask.
type Recommendation struct {
	CounterOffer string `json:"counter_offer"`
	Alternative  string `json:"alternative"`
	Risk         string `json:"risk"`
}

// DiscountStep is the outcome of one discount-negotiation turn.
type DiscountStep struct {
	// AwaitingAmount is set when no percentage was found and the flow stays
	// open asking for one.
	AwaitingAmount bool
	// Requested is the percentage the client asked for.
	Requested int
	// Counter is the counter-offer percentage (half the ask, rounded down).
	Counter        int
	Recommendation Recommendation
}

var percentRe = regexp.MustCompile(`(\d+)%|(\d+) percent`)

// ParsePercentage finds the first percentage mention ("20%" or "20 percent").
func ParsePercentage(text string) (int, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Negotiate handles a discount ask. With a percentage in hand it produces the
// counter-offer and closes the flow in one shot; without one it opens the flow
// and waits for the amount.
func Negotiate(s *session.Session, text string) DiscountStep {
	pct, ok := ParsePercentage(text)
	if !ok {
		s.CurrentTask = session.TaskDiscountNegotiation
		return DiscountStep{AwaitingAmount: true}
	}

	counter := pct / 2
	s.ClearFlow()
	s.LastAction = "analyzed_discount_request"
	return DiscountStep{
		Requested: pct,
		Counter:   counter,
		Recommendation: Recommendation{
			CounterOffer: fmt.Sprintf("%d%% with added value", counter),
			Alternative:  "Pilot program",
			Risk:         "Medium - client price-sensitive",
		},
	}
}
