package mail

import (
	"context"
	"testing"
)

func TestNewSenderModes(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"auto without addr", Config{Mode: "auto"}, "*mail.MockSender", false},
		{"auto with addr", Config{Mode: "auto", SMTPAddr: "smtp.example.com:587"}, "*mail.SMTPSender", false},
		{"explicit mock", Config{Mode: "mock", SMTPAddr: "smtp.example.com:587"}, "*mail.MockSender", false},
		{"smtp without addr", Config{Mode: "smtp"}, "", true},
		{"unknown mode", Config{Mode: "carrier-pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSender(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewSender() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSender() error = %v", err)
			}
			switch s.(type) {
			case *MockSender:
				if tt.want != "*mail.MockSender" {
					t.Fatalf("NewSender() = MockSender, want %s", tt.want)
				}
			case *SMTPSender:
				if tt.want != "*mail.SMTPSender" {
					t.Fatalf("NewSender() = SMTPSender, want %s", tt.want)
				}
			default:
				t.Fatalf("NewSender() returned unexpected type %T", s)
			}
		})
	}
}

func TestMockSenderRecordsAndFails(t *testing.T) {
	m := NewMockSender()
	ctx := context.Background()

	if res := m.Send(ctx, "Hi", "body", "jo@acme.com"); !res.Delivered {
		t.Fatalf("Send() = %+v, want delivered", res)
	}

	m.FailNext(1)
	if res := m.Send(ctx, "Hi again", "body", "jo@acme.com"); res.Delivered || res.Reason == "" {
		t.Fatalf("Send() after FailNext = %+v, want failure with reason", res)
	}
	if res := m.Send(ctx, "Third", "body", "jo@acme.com"); !res.Delivered {
		t.Fatalf("failure budget did not clear: %+v", res)
	}

	sent := m.Sent()
	if len(sent) != 2 || sent[0].Subject != "Hi" || sent[1].Subject != "Third" {
		t.Fatalf("Sent() = %v", sent)
	}
}
