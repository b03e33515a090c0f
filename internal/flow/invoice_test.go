package flow

import (
	"testing"

	"github.com/salespilot-ai/salespilot/internal/session"
)

func TestInvoiceFlowHappyPath(t *testing.T) {
	s := &session.Session{ID: "s1"}

	step := StartInvoice(s)
	if step.AwaitingSlot != SlotClientName {
		t.Fatalf("StartInvoice awaiting = %q, want client_name", step.AwaitingSlot)
	}
	if s.CurrentTask != session.TaskInvoiceCreation {
		t.Fatalf("CurrentTask = %q, want invoice_creation", s.CurrentTask)
	}

	step = AdvanceInvoice(s, "Acme")
	if step.AwaitingSlot != SlotServices {
		t.Fatalf("after client_name awaiting = %q, want services", step.AwaitingSlot)
	}
	step = AdvanceInvoice(s, "Website")
	if step.AwaitingSlot != SlotAmount {
		t.Fatalf("after services awaiting = %q, want amount", step.AwaitingSlot)
	}
	step = AdvanceInvoice(s, "4000")
	if step.AwaitingSlot != SlotDiscount {
		t.Fatalf("after amount awaiting = %q, want discount", step.AwaitingSlot)
	}
	step = AdvanceInvoice(s, "none")
	if step.Invoice == nil {
		t.Fatalf("flow did not close on last slot")
	}

	want := session.Invoice{Client: "Acme", Services: "Website", Amount: "4000", Discount: "None"}
	if *step.Invoice != want {
		t.Fatalf("Invoice = %+v, want %+v", *step.Invoice, want)
	}
	if s.CurrentTask != session.TaskNone || s.Slots != nil {
		t.Fatalf("flow state not cleared: task=%q slots=%v", s.CurrentTask, s.Slots)
	}
	if s.PendingInvoice == nil || *s.PendingInvoice != want {
		t.Fatalf("PendingInvoice = %v, want %+v", s.PendingInvoice, want)
	}
	if s.LastAction != "created_invoice" {
		t.Fatalf("LastAction = %q", s.LastAction)
	}
}

func TestInvoiceAmountReprompts(t *testing.T) {
	s := &session.Session{ID: "s1"}
	StartInvoice(s)
	AdvanceInvoice(s, "Acme")
	AdvanceInvoice(s, "Consulting")

	step := AdvanceInvoice(s, "a fair price")
	if !step.Reprompt || step.AwaitingSlot != SlotAmount {
		t.Fatalf("unparseable amount: step = %+v, want amount reprompt", step)
	}
	if _, ok := s.Slot(SlotAmount); ok {
		t.Fatalf("amount slot filled from unparseable input")
	}

	step = AdvanceInvoice(s, "let's say 12,500 total")
	if step.AwaitingSlot != SlotDiscount {
		t.Fatalf("after retry awaiting = %q, want discount", step.AwaitingSlot)
	}
	if v, _ := s.Slot(SlotAmount); v != "12,500" {
		t.Fatalf("amount = %q, want 12,500", v)
	}
}

func TestExtractAmountPicksLargestRun(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"4000", "4000", true},
		{"website for 4000, contract 12", "4000", true},
		{"₹50,000", "50,000", true},
		{"charge 300 plus 4,500 setup", "4,500", true},
		{"no numbers here", "", false},
		{",,,", "", false},
		// Magnitude comparison is digit-based, so amounts past int64 still win.
		{"ref 99999999999999999999 for 4000", "99999999999999999999", true},
		{"items 007 and 10", "10", true},
	}
	for _, tt := range tests {
		got, ok := ExtractAmount(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ExtractAmount(%q) = %q,%v, want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeDiscount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"none", "None"},
		{"Nope", "None"},
		{"nahi yaar", "None"},
		{"10%", "10%"},
		{"  500  ", "500"},
	}
	for _, tt := range tests {
		if got := NormalizeDiscount(tt.in); got != tt.want {
			t.Fatalf("NormalizeDiscount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
