package crm

import (
	"context"
	"testing"
	"time"
)

func TestCreateLeadAssignsIDAndDefaults(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	lead, err := s.CreateLead(ctx, Lead{CompanyName: "Acme", ContactName: "Jo", Email: "jo@acme.com"})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	if lead.ID == "" {
		t.Fatalf("CreateLead() did not assign an id")
	}
	if lead.Status != LeadStatusNew {
		t.Fatalf("Status = %q, want %q", lead.Status, LeadStatusNew)
	}

	got, err := s.LeadByID(ctx, lead.ID)
	if err != nil {
		t.Fatalf("LeadByID() error = %v", err)
	}
	if got.CompanyName != "Acme" {
		t.Fatalf("CompanyName = %q, want Acme", got.CompanyName)
	}
}

func TestLeadByIDNotFound(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.LeadByID(context.Background(), "missing"); err != ErrLeadNotFound {
		t.Fatalf("LeadByID() error = %v, want ErrLeadNotFound", err)
	}
}

func TestLeadsByMinScoreSortsDescending(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for _, tc := range []struct {
		name  string
		score float64
	}{{"low", 0.3}, {"high", 0.9}, {"mid", 0.7}} {
		lead, _ := s.CreateLead(ctx, Lead{CompanyName: tc.name, Email: tc.name + "@x.com"})
		if err := s.SaveAnalysis(ctx, lead.ID, Analysis{Score: tc.score, Status: LeadStatusQualified}); err != nil {
			t.Fatalf("SaveAnalysis() error = %v", err)
		}
	}

	got, err := s.LeadsByMinScore(ctx, 0.7)
	if err != nil {
		t.Fatalf("LeadsByMinScore() error = %v", err)
	}
	if len(got) != 2 || got[0].CompanyName != "high" || got[1].CompanyName != "mid" {
		t.Fatalf("LeadsByMinScore() = %v, want [high mid]", got)
	}
}

func TestSnapshotsDoNotAliasStore(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	lead, _ := s.CreateLead(ctx, Lead{CompanyName: "Acme", Email: "jo@acme.com"})
	_ = s.SaveAnalysis(ctx, lead.ID, Analysis{Score: 0.5, Status: LeadStatusQualified, PainPoints: []string{"manual ops"}})

	snap, _ := s.LeadByID(ctx, lead.ID)
	snap.PainPoints[0] = "mutated"

	fresh, _ := s.LeadByID(ctx, lead.ID)
	if fresh.PainPoints[0] != "manual ops" {
		t.Fatalf("snapshot mutation leaked into store: %v", fresh.PainPoints)
	}
}

func TestMarkLeadContactedTransitions(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	lead, _ := s.CreateLead(ctx, Lead{CompanyName: "Acme", Email: "jo@acme.com"})

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := s.MarkLeadContacted(ctx, lead.ID, at); err != nil {
		t.Fatalf("MarkLeadContacted() error = %v", err)
	}
	got, _ := s.LeadByID(ctx, lead.ID)
	if got.Status != LeadStatusContacted {
		t.Fatalf("Status = %q, want %q", got.Status, LeadStatusContacted)
	}
	if got.LastContactedAt == nil || !got.LastContactedAt.Equal(at) {
		t.Fatalf("LastContactedAt = %v, want %v", got.LastContactedAt, at)
	}

	// won/lost must not be demoted back to contacted
	_ = s.SaveAnalysis(ctx, lead.ID, Analysis{Score: 0.9, Status: LeadStatusWon})
	_ = s.MarkLeadContacted(ctx, lead.ID, at.Add(time.Hour))
	got, _ = s.LeadByID(ctx, lead.ID)
	if got.Status != LeadStatusWon {
		t.Fatalf("Status after re-contact = %q, want %q", got.Status, LeadStatusWon)
	}
}

func TestEmailLifecycle(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	lead, _ := s.CreateLead(ctx, Lead{CompanyName: "Acme", Email: "jo@acme.com"})

	rec, err := s.CreateEmail(ctx, EmailRecord{LeadID: lead.ID, Subject: "Hi", Body: "b", Recipient: "jo@acme.com"})
	if err != nil {
		t.Fatalf("CreateEmail() error = %v", err)
	}
	if rec.Status != EmailStatusDraft {
		t.Fatalf("Status = %q, want draft", rec.Status)
	}

	drafts, _ := s.EmailsByStatus(ctx, EmailStatusDraft)
	if len(drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(drafts))
	}

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := s.MarkEmailSent(ctx, rec.ID, at); err != nil {
		t.Fatalf("MarkEmailSent() error = %v", err)
	}
	sent, _ := s.SentEmailsForLead(ctx, lead.ID)
	if len(sent) != 1 || sent[0].SentAt == nil || !sent[0].SentAt.Equal(at) {
		t.Fatalf("SentEmailsForLead() = %v", sent)
	}

	if err := s.MarkEmailFailed(ctx, rec.ID, "smtp down"); err != nil {
		t.Fatalf("MarkEmailFailed() error = %v", err)
	}
	failed, _ := s.EmailsByStatus(ctx, EmailStatusFailed)
	if len(failed) != 1 || failed[0].Error != "smtp down" || failed[0].Retries != 1 {
		t.Fatalf("failed email = %+v", failed[0])
	}
}

func TestDeleteDraftEmailsKeepsSent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	lead, _ := s.CreateLead(ctx, Lead{CompanyName: "Acme", Email: "jo@acme.com"})

	d1, _ := s.CreateEmail(ctx, EmailRecord{LeadID: lead.ID, Subject: "a", Recipient: "jo@acme.com"})
	_, _ = s.CreateEmail(ctx, EmailRecord{LeadID: lead.ID, Subject: "b", Recipient: "jo@acme.com"})
	sent, _ := s.CreateEmail(ctx, EmailRecord{LeadID: lead.ID, Subject: "c", Recipient: "jo@acme.com"})
	_ = s.MarkEmailSent(ctx, sent.ID, time.Now())
	_ = s.MarkEmailFailed(ctx, d1.ID, "boom")

	removed, err := s.DeleteDraftEmails(ctx)
	if err != nil {
		t.Fatalf("DeleteDraftEmails() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if left, _ := s.EmailsByStatus(ctx, EmailStatusDraft); len(left) != 0 {
		t.Fatalf("drafts left = %d, want 0", len(left))
	}
	if kept, _ := s.SentEmailsForLead(ctx, lead.ID); len(kept) != 1 {
		t.Fatalf("sent emails = %d, want 1", len(kept))
	}
}

func TestRecordActivityIsAppendOnly(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_ = s.RecordActivity(ctx, Activity{LeadID: "l1", Type: "email_sent", Description: "first"})
	_ = s.RecordActivity(ctx, Activity{LeadID: "l1", Type: "analysis", Description: "second"})
	_ = s.RecordActivity(ctx, Activity{LeadID: "l2", Type: "email_sent"})

	got := s.ActivitiesForLead("l1")
	if len(got) != 2 || got[0].Description != "first" || got[1].Description != "second" {
		t.Fatalf("ActivitiesForLead() = %v", got)
	}
}
