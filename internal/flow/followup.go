package flow

import (
	"sort"
	"strings"
	"time"
)

// Confirmation classifies a reply to a pending follow-up preview.
type Confirmation int

const (
	// ConfirmationNone means the reply matched no gate keyword; the message
	// falls through to normal intent resolution with the draft retained.
	ConfirmationNone Confirmation = iota
	ConfirmationSend
	ConfirmationRegenerate
	ConfirmationCancel
)

var (
	confirmWords    = []string{"yes", "send", "ok", "sure", "confirm"}
	regenerateWords = []string{"generate another", "another", "regenerate", "new one"}
	cancelWords     = []string{"cancel", "no", "stop"}
)

// ClassifyConfirmation checks the gate keyword groups in fixed order, so
// "no, send it" confirms: the send group is consulted before cancel.
func ClassifyConfirmation(text string) Confirmation {
	lower := strings.ToLower(text)
	for _, w := range confirmWords {
		if strings.Contains(lower, w) {
			return ConfirmationSend
		}
	}
	for _, w := range regenerateWords {
		if strings.Contains(lower, w) {
			return ConfirmationRegenerate
		}
	}
	for _, w := range cancelWords {
		if strings.Contains(lower, w) {
			return ConfirmationCancel
		}
	}
	return ConfirmationNone
}

// followupMinAge is the cool-off before a lead may be followed up.
const followupMinAge = 24 * time.Hour

// SentMail is one delivered email, as the selection input.
type SentMail struct {
	LeadID string
	SentAt time.Time
}

type SelectionKind int

const (
	// SelectionNoneSent: nothing has gone out yet.
	SelectionNoneSent SelectionKind = iota
	// SelectionEligible: LeadID needs a follow-up now.
	SelectionEligible
	// SelectionWait: nothing ready; LeadID becomes eligible in HoursRemaining.
	SelectionWait
	// SelectionAllCovered: every lead already got its follow-up.
	SelectionAllCovered
)

// FollowupSelection is the outcome of scanning sent mail for follow-up work.
type FollowupSelection struct {
	Kind           SelectionKind
	LeadID         string
	HoursSinceSent int
	HoursRemaining int
}

// SelectFollowup picks the first lead due a follow-up: its mail is at least
// 24 hours old and priorSent reports at most one delivered mail for it in
// total. When nobody is due, it reports how long until the nearest lead
// becomes eligible.
func SelectFollowup(now time.Time, sent []SentMail, priorSent map[string]int) FollowupSelection {
	if len(sent) == 0 {
		return FollowupSelection{Kind: SelectionNoneSent}
	}

	for _, m := range sent {
		hours := now.Sub(m.SentAt).Hours()
		if hours >= followupMinAge.Hours() && priorSent[m.LeadID] <= 1 {
			return FollowupSelection{
				Kind:           SelectionEligible,
				LeadID:         m.LeadID,
				HoursSinceSent: int(hours),
			}
		}
	}

	type pending struct {
		leadID    string
		remaining float64
	}
	var waiting []pending
	for _, m := range sent {
		remaining := followupMinAge.Hours() - now.Sub(m.SentAt).Hours()
		if remaining > 0 {
			waiting = append(waiting, pending{leadID: m.LeadID, remaining: remaining})
		}
	}
	if len(waiting) == 0 {
		return FollowupSelection{Kind: SelectionAllCovered}
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i].remaining < waiting[j].remaining })
	return FollowupSelection{
		Kind:           SelectionWait,
		LeadID:         waiting[0].leadID,
		HoursRemaining: int(waiting[0].remaining),
	}
}
