package session

import "time"

// Task identifies the multi-turn flow currently holding a session, if any.
type Task string

const (
	TaskNone                Task = ""
	TaskInvoiceCreation     Task = "invoice_creation"
	TaskDiscountNegotiation Task = "discount_negotiation"
)

// Slot is one collected piece of flow input. Slots are kept as an ordered
// slice because collection order matters to the flows.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Turn is one append-only conversation entry. Turns are never rewritten.
type Turn struct {
	Role      string    `json:"role"` // "client" or "agent"
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment,omitempty"`
	Intent    string    `json:"intent,omitempty"`
	At        time.Time `json:"at"`
}

// Invoice is the finalized record an invoice flow leaves behind.
type Invoice struct {
	Client   string `json:"client"`
	Services string `json:"services"`
	Amount   string `json:"amount"`
	Discount string `json:"discount"`
}

// FollowupDraft is a generated follow-up awaiting explicit confirmation.
type FollowupDraft struct {
	LeadID  string `json:"lead_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Session is the per-conversation mutable record. It is mutated in place on
// every turn and lives until the janitor evicts it.
type Session struct {
	ID              string         `json:"id"`
	CurrentTask     Task           `json:"current_task"`
	Slots           []Slot         `json:"slots,omitempty"`
	PendingInvoice  *Invoice       `json:"pending_invoice,omitempty"`
	PendingFollowup *FollowupDraft `json:"pending_followup,omitempty"`
	Objections      []string       `json:"objections,omitempty"`
	LastAction      string         `json:"last_action,omitempty"`
	Turns           []Turn         `json:"turns,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	LastActivityAt  time.Time      `json:"last_activity_at"`
}

// Slot returns the collected value for name.
func (s *Session) Slot(name string) (string, bool) {
	for _, sl := range s.Slots {
		if sl.Name == name {
			return sl.Value, true
		}
	}
	return "", false
}

// SetSlot records a value, preserving first-collection order.
func (s *Session) SetSlot(name, value string) {
	for i, sl := range s.Slots {
		if sl.Name == name {
			s.Slots[i].Value = value
			return
		}
	}
	s.Slots = append(s.Slots, Slot{Name: name, Value: value})
}

// ClearFlow closes any open task and drops its collected slots.
func (s *Session) ClearFlow() {
	s.CurrentTask = TaskNone
	s.Slots = nil
}

// AddObjection records a category once, in first-raised order.
func (s *Session) AddObjection(category string) {
	for _, o := range s.Objections {
		if o == category {
			return
		}
	}
	s.Objections = append(s.Objections, category)
}

// HasObjection reports whether a category was ever raised in this session.
func (s *Session) HasObjection(category string) bool {
	for _, o := range s.Objections {
		if o == category {
			return true
		}
	}
	return false
}

func (s *Session) clone() *Session {
	c := *s
	if s.Slots != nil {
		c.Slots = append([]Slot(nil), s.Slots...)
	}
	if s.Objections != nil {
		c.Objections = append([]string(nil), s.Objections...)
	}
	if s.Turns != nil {
		c.Turns = append([]Turn(nil), s.Turns...)
	}
	if s.PendingInvoice != nil {
		inv := *s.PendingInvoice
		c.PendingInvoice = &inv
	}
	if s.PendingFollowup != nil {
		fu := *s.PendingFollowup
		c.PendingFollowup = &fu
	}
	return &c
}
