package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/scoring"
)

// analyzeAndStore scores one lead and persists the result. Persistence
// failures are swallowed: the caller still gets the computed score and the
// store converges on the next analysis run.
func analyzeAndStore(ctx context.Context, store crm.Store, lead crm.Lead) scoring.Result {
	res := scoring.Score(lead)
	now := time.Now()

	_ = store.SaveAnalysis(ctx, lead.ID, crm.Analysis{
		Score:            res.Score,
		Status:           res.Status,
		PainPoints:       res.PainPoints,
		BudgetEstimate:   res.BudgetEstimate,
		DecisionTimeline: res.Timeline,
		Notes:            fmt.Sprintf("Analyzed on %s", now.UTC().Format("2006-01-02")),
	})
	_ = store.RecordActivity(ctx, crm.Activity{
		LeadID:      lead.ID,
		Type:        "lead_analyzed",
		Description: fmt.Sprintf("Lead analyzed with score: %.2f", res.Score),
		CreatedAt:   now,
	})
	return res
}
