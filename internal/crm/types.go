// Package crm is the persistence collaborator: lead snapshots, outbound email
// records and activity logging. The dialogue core only reads leads and requests
// writes through this interface; it never mutates a snapshot directly.
package crm

import (
	"context"
	"errors"
	"time"
)

var ErrLeadNotFound = errors.New("lead not found")
var ErrEmailNotFound = errors.New("email not found")

type LeadStatus string

const (
	LeadStatusNew              LeadStatus = "new"
	LeadStatusQualified        LeadStatus = "qualified"
	LeadStatusContacted        LeadStatus = "contacted"
	LeadStatusMeetingScheduled LeadStatus = "meeting_scheduled"
	LeadStatusNegotiating      LeadStatus = "negotiating"
	LeadStatusWon              LeadStatus = "won"
	LeadStatusLost             LeadStatus = "lost"
)

type EmailStatus string

const (
	EmailStatusDraft   EmailStatus = "draft"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
	EmailStatusOpened  EmailStatus = "opened"
	EmailStatusReplied EmailStatus = "replied"
)

// Lead is the read-only projection handed to the dialogue core.
type Lead struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Revenue     string `json:"revenue,omitempty"`
	Location    string `json:"location,omitempty"`

	LeadScore          float64  `json:"lead_score"`
	QualificationNotes string   `json:"qualification_notes,omitempty"`
	PainPoints         []string `json:"pain_points,omitempty"`
	BudgetEstimate     string   `json:"budget_estimate,omitempty"`
	DecisionTimeline   string   `json:"decision_timeline,omitempty"`

	Status          LeadStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
}

// EmailRecord tracks one outbound email from draft to delivery.
type EmailRecord struct {
	ID        string      `json:"id"`
	LeadID    string      `json:"lead_id"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Recipient string      `json:"recipient_email"`
	Type      string      `json:"email_type"` // initial, follow_up, invoice
	Status    EmailStatus `json:"status"`
	SentAt    *time.Time  `json:"sent_at,omitempty"`
	Error     string      `json:"error_message,omitempty"`
	Retries   int         `json:"retry_count"`
	CreatedAt time.Time   `json:"created_at"`
}

// Activity is an append-only audit entry per lead.
type Activity struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	Type        string    `json:"activity_type"`
	Description string    `json:"description"`
	Metadata    string    `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Analysis is a scoring write request: score, tier status and the derived
// estimates produced by the scoring heuristic.
type Analysis struct {
	Score            float64
	Status           LeadStatus
	PainPoints       []string
	BudgetEstimate   string
	DecisionTimeline string
	Notes            string
}

// Store persists leads, emails and activities.
type Store interface {
	CreateLead(ctx context.Context, lead Lead) (Lead, error)
	LeadByID(ctx context.Context, id string) (Lead, error)
	Leads(ctx context.Context) ([]Lead, error)
	LeadsByMinScore(ctx context.Context, minScore float64) ([]Lead, error)
	SaveAnalysis(ctx context.Context, leadID string, a Analysis) error
	MarkLeadContacted(ctx context.Context, leadID string, at time.Time) error

	CreateEmail(ctx context.Context, rec EmailRecord) (EmailRecord, error)
	EmailsByStatus(ctx context.Context, status EmailStatus) ([]EmailRecord, error)
	SentEmailsForLead(ctx context.Context, leadID string) ([]EmailRecord, error)
	MarkEmailSent(ctx context.Context, emailID string, at time.Time) error
	MarkEmailFailed(ctx context.Context, emailID, reason string) error
	DeleteDraftEmails(ctx context.Context) (int, error)

	RecordActivity(ctx context.Context, a Activity) error

	Close() error
}
