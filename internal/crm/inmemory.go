package crm

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process store for local/dev use and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	leadOrder  []string
	leads      map[string]*Lead
	emailOrder []string
	emails     map[string]*EmailRecord
	activities []Activity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		leads:  make(map[string]*Lead),
		emails: make(map[string]*EmailRecord),
	}
}

func (s *InMemoryStore) CreateLead(_ context.Context, lead Lead) (Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	cp := lead
	s.leads[lead.ID] = &cp
	s.leadOrder = append(s.leadOrder, lead.ID)
	return lead, nil
}

func (s *InMemoryStore) LeadByID(_ context.Context, id string) (Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	return cloneLead(l), nil
}

func (s *InMemoryStore) Leads(_ context.Context) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Lead, 0, len(s.leadOrder))
	for _, id := range s.leadOrder {
		out = append(out, cloneLead(s.leads[id]))
	}
	return out, nil
}

func (s *InMemoryStore) LeadsByMinScore(_ context.Context, minScore float64) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Lead
	for _, id := range s.leadOrder {
		if l := s.leads[id]; l.LeadScore >= minScore {
			out = append(out, cloneLead(l))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LeadScore > out[j].LeadScore })
	return out, nil
}

func (s *InMemoryStore) SaveAnalysis(_ context.Context, leadID string, a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	l.LeadScore = a.Score
	l.Status = a.Status
	l.PainPoints = append([]string(nil), a.PainPoints...)
	l.BudgetEstimate = a.BudgetEstimate
	l.DecisionTimeline = a.DecisionTimeline
	l.QualificationNotes = a.Notes
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStore) MarkLeadContacted(_ context.Context, leadID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[leadID]
	if !ok {
		return ErrLeadNotFound
	}
	t := at
	l.LastContactedAt = &t
	if l.Status == LeadStatusNew || l.Status == LeadStatusQualified {
		l.Status = LeadStatusContacted
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryStore) CreateEmail(_ context.Context, rec EmailRecord) (EmailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = EmailStatusDraft
	}
	cp := rec
	s.emails[rec.ID] = &cp
	s.emailOrder = append(s.emailOrder, rec.ID)
	return rec, nil
}

func (s *InMemoryStore) EmailsByStatus(_ context.Context, status EmailStatus) ([]EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EmailRecord
	for _, id := range s.emailOrder {
		if e := s.emails[id]; e.Status == status {
			out = append(out, cloneEmail(e))
		}
	}
	return out, nil
}

func (s *InMemoryStore) SentEmailsForLead(_ context.Context, leadID string) ([]EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []EmailRecord
	for _, id := range s.emailOrder {
		if e := s.emails[id]; e.LeadID == leadID && e.Status == EmailStatusSent {
			out = append(out, cloneEmail(e))
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkEmailSent(_ context.Context, emailID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.emails[emailID]
	if !ok {
		return ErrEmailNotFound
	}
	t := at
	e.Status = EmailStatusSent
	e.SentAt = &t
	e.Error = ""
	return nil
}

func (s *InMemoryStore) MarkEmailFailed(_ context.Context, emailID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.emails[emailID]
	if !ok {
		return ErrEmailNotFound
	}
	e.Status = EmailStatusFailed
	e.Error = reason
	e.Retries++
	return nil
}

func (s *InMemoryStore) DeleteDraftEmails(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.emailOrder[:0]
	removed := 0
	for _, id := range s.emailOrder {
		if s.emails[id].Status == EmailStatusDraft {
			delete(s.emails, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.emailOrder = kept
	return removed, nil
}

func (s *InMemoryStore) RecordActivity(_ context.Context, a Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.activities = append(s.activities, a)
	return nil
}

// ActivitiesForLead is used by tests and the in-memory API listing.
func (s *InMemoryStore) ActivitiesForLead(leadID string) []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Activity
	for _, a := range s.activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out
}

func (s *InMemoryStore) Close() error { return nil }

func cloneLead(l *Lead) Lead {
	c := *l
	if l.PainPoints != nil {
		c.PainPoints = append([]string(nil), l.PainPoints...)
	}
	if l.LastContactedAt != nil {
		t := *l.LastContactedAt
		c.LastContactedAt = &t
	}
	return c
}

func cloneEmail(e *EmailRecord) EmailRecord {
	c := *e
	if e.SentAt != nil {
		t := *e.SentAt
		c.SentAt = &t
	}
	return c
}
