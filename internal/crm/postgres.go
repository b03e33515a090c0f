package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists CRM records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			company_size TEXT NOT NULL DEFAULT '',
			revenue TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			lead_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			qualification_notes TEXT NOT NULL DEFAULT '',
			pain_points TEXT NOT NULL DEFAULT '',
			budget_estimate TEXT NOT NULL DEFAULT '',
			decision_timeline TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'new',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_contacted_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS idx_leads_score ON leads (lead_score DESC);`,
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			recipient_email TEXT NOT NULL,
			email_type TEXT NOT NULL DEFAULT 'initial',
			status TEXT NOT NULL DEFAULT 'draft',
			sent_at TIMESTAMPTZ,
			error_message TEXT NOT NULL DEFAULT '',
			retry_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_emails_lead_status ON emails (lead_id, status);`,
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			lead_id TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_activities_lead ON activities (lead_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead Lead) (Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = LeadStatusNew
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, company_name, contact_name, email, phone, industry, company_size,
			revenue, location, lead_score, qualification_notes, pain_points, budget_estimate,
			decision_timeline, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		lead.ID, lead.CompanyName, lead.ContactName, lead.Email, lead.Phone, lead.Industry,
		lead.CompanySize, lead.Revenue, lead.Location, lead.LeadScore, lead.QualificationNotes,
		strings.Join(lead.PainPoints, "\n"), lead.BudgetEstimate, lead.DecisionTimeline,
		string(lead.Status), lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

const leadColumns = `id, company_name, contact_name, email, phone, industry, company_size,
	revenue, location, lead_score, qualification_notes, pain_points, budget_estimate,
	decision_timeline, status, created_at, updated_at, last_contacted_at`

func (s *PostgresStore) LeadByID(ctx context.Context, id string) (Lead, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1`, id)
	lead, err := scanLead(row)
	if err == pgx.ErrNoRows {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("query lead: %w", err)
	}
	return lead, nil
}

func (s *PostgresStore) Leads(ctx context.Context) ([]Lead, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (s *PostgresStore) LeadsByMinScore(ctx context.Context, minScore float64) ([]Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE lead_score >= $1 ORDER BY lead_score DESC`, minScore)
	if err != nil {
		return nil, fmt.Errorf("query leads by score: %w", err)
	}
	defer rows.Close()
	return collectLeads(rows)
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, leadID string, a Analysis) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET lead_score=$2, status=$3, pain_points=$4, budget_estimate=$5,
			decision_timeline=$6, qualification_notes=$7, updated_at=now()
		 WHERE id=$1`,
		leadID, a.Score, string(a.Status), strings.Join(a.PainPoints, "\n"),
		a.BudgetEstimate, a.DecisionTimeline, a.Notes,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (s *PostgresStore) MarkLeadContacted(ctx context.Context, leadID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET last_contacted_at=$2, updated_at=now(),
			status = CASE WHEN status IN ('new','qualified') THEN 'contacted' ELSE status END
		 WHERE id=$1`,
		leadID, at,
	)
	if err != nil {
		return fmt.Errorf("mark lead contacted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (s *PostgresStore) CreateEmail(ctx context.Context, rec EmailRecord) (EmailRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = EmailStatusDraft
	}
	if rec.Type == "" {
		rec.Type = "initial"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO emails (id, lead_id, subject, body, recipient_email, email_type, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.LeadID, rec.Subject, rec.Body, rec.Recipient, rec.Type, string(rec.Status), rec.CreatedAt,
	)
	if err != nil {
		return EmailRecord{}, fmt.Errorf("create email: %w", err)
	}
	return rec, nil
}

const emailColumns = `id, lead_id, subject, body, recipient_email, email_type, status,
	sent_at, error_message, retry_count, created_at`

func (s *PostgresStore) EmailsByStatus(ctx context.Context, status EmailStatus) ([]EmailRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE status=$1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()
	return collectEmails(rows)
}

func (s *PostgresStore) SentEmailsForLead(ctx context.Context, leadID string) ([]EmailRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE lead_id=$1 AND status='sent' ORDER BY created_at`, leadID)
	if err != nil {
		return nil, fmt.Errorf("query sent emails: %w", err)
	}
	defer rows.Close()
	return collectEmails(rows)
}

func (s *PostgresStore) MarkEmailSent(ctx context.Context, emailID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE emails SET status='sent', sent_at=$2, error_message='' WHERE id=$1`, emailID, at)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailNotFound
	}
	return nil
}

func (s *PostgresStore) MarkEmailFailed(ctx context.Context, emailID, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE emails SET status='failed', error_message=$2, retry_count=retry_count+1 WHERE id=$1`,
		emailID, reason)
	if err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDraftEmails(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM emails WHERE status='draft'`)
	if err != nil {
		return 0, fmt.Errorf("delete drafts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) RecordActivity(ctx context.Context, a Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO activities (id, lead_id, activity_type, description, metadata, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.LeadID, a.Type, a.Description, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var painPoints string
	var status string
	if err := row.Scan(&l.ID, &l.CompanyName, &l.ContactName, &l.Email, &l.Phone, &l.Industry,
		&l.CompanySize, &l.Revenue, &l.Location, &l.LeadScore, &l.QualificationNotes, &painPoints,
		&l.BudgetEstimate, &l.DecisionTimeline, &status, &l.CreatedAt, &l.UpdatedAt,
		&l.LastContactedAt); err != nil {
		return Lead{}, err
	}
	if painPoints != "" {
		l.PainPoints = strings.Split(painPoints, "\n")
	}
	l.Status = LeadStatus(status)
	return l, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	var out []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead rows: %w", err)
	}
	return out, nil
}

func collectEmails(rows pgx.Rows) ([]EmailRecord, error) {
	var out []EmailRecord
	for rows.Next() {
		var e EmailRecord
		var status string
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Subject, &e.Body, &e.Recipient, &e.Type,
			&status, &e.SentAt, &e.Error, &e.Retries, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan email row: %w", err)
		}
		e.Status = EmailStatus(status)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate email rows: %w", err)
	}
	return out, nil
}
