// Package mail is the delivery collaborator. Senders report delivery outcome
// as data rather than failing the turn: a bounced mail is a conversation fact,
// not a server error.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"sync"
)

// Result is the outcome of one delivery attempt.
type Result struct {
	Delivered bool
	Reason    string
}

// Sender delivers one outbound email.
type Sender interface {
	Send(ctx context.Context, subject, body, recipient string) Result
}

// Config selects and parameterizes the sender backend.
type Config struct {
	Mode        string // auto, smtp, mock
	SMTPAddr    string // host:port
	Username    string
	Password    string
	SenderName  string
	SenderEmail string
}

// NewSender resolves the configured mode. Auto picks smtp when an address is
// configured and falls back to mock otherwise.
func NewSender(cfg Config) (Sender, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "auto":
		if cfg.SMTPAddr != "" {
			return NewSMTPSender(cfg), nil
		}
		log.Printf("mail: no SMTP_ADDR, using mock sender")
		return NewMockSender(), nil
	case "smtp":
		if cfg.SMTPAddr == "" {
			return nil, fmt.Errorf("mail mode smtp requires SMTP_ADDR")
		}
		return NewSMTPSender(cfg), nil
	case "mock":
		return NewMockSender(), nil
	default:
		return nil, fmt.Errorf("unknown mail mode %q", mode)
	}
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	addr        string
	auth        smtp.Auth
	senderName  string
	senderEmail string
}

func NewSMTPSender(cfg Config) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		host := cfg.SMTPAddr
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	email := cfg.SenderEmail
	if email == "" {
		email = cfg.Username
	}
	return &SMTPSender{
		addr:        cfg.SMTPAddr,
		auth:        auth,
		senderName:  cfg.SenderName,
		senderEmail: email,
	}
}

func (s *SMTPSender) Send(_ context.Context, subject, body, recipient string) Result {
	from := s.senderEmail
	if s.senderName != "" {
		from = fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	}
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.senderEmail, []string{recipient}, []byte(msg)); err != nil {
		return Result{Delivered: false, Reason: err.Error()}
	}
	return Result{Delivered: true}
}

// MockSender records deliveries in memory. FailNext makes the next n sends
// bounce, for exercising the failure path.
type MockSender struct {
	mu       sync.Mutex
	sent     []MockMail
	failures int
}

type MockMail struct {
	Subject   string
	Body      string
	Recipient string
}

func NewMockSender() *MockSender { return &MockSender{} }

func (m *MockSender) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Sent returns the deliveries recorded so far.
func (m *MockSender) Sent() []MockMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockMail(nil), m.sent...)
}

func (m *MockSender) Send(_ context.Context, subject, body, recipient string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return Result{Delivered: false, Reason: "mock delivery failure"}
	}
	m.sent = append(m.sent, MockMail{Subject: subject, Body: body, Recipient: recipient})
	return Result{Delivered: true}
}
