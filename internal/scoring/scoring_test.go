package scoring

import (
	"testing"

	"github.com/salespilot-ai/salespilot/internal/crm"
)

func TestScoreBaseAndDefaults(t *testing.T) {
	got := Score(crm.Lead{CompanyName: "Bare Co"})
	if got.Score != 0.5 {
		t.Fatalf("Score = %v, want 0.5", got.Score)
	}
	if got.Tier != TierMedium || got.Status != crm.LeadStatusContacted {
		t.Fatalf("tier = %v/%v, want medium/contacted", got.Tier, got.Status)
	}
	if len(got.PainPoints) != 2 || got.PainPoints[0] != "Process automation opportunities" {
		t.Fatalf("PainPoints = %v, want generic defaults", got.PainPoints)
	}
	if got.BudgetEstimate != "$10K - $30K" || got.Timeline != "1-2 months" {
		t.Fatalf("estimates = %q/%q", got.BudgetEstimate, got.Timeline)
	}
}

func TestScoreAdditiveComponents(t *testing.T) {
	tests := []struct {
		name string
		lead crm.Lead
		want float64
	}{
		{"high-value industry", crm.Lead{Industry: "SaaS"}, 0.7},
		{"enterprise size", crm.Lead{CompanySize: "enterprise"}, 0.7},
		{"1000+ size", crm.Lead{CompanySize: "1000+"}, 0.7},
		{"mid size", crm.Lead{CompanySize: "200-500"}, 0.6},
		{"top revenue", crm.Lead{Revenue: "$100M+"}, 0.65},
		{"mid revenue", crm.Lead{Revenue: "$20M-$50M"}, 0.6},
		{"complete contact data", crm.Lead{Phone: "555", Industry: "retail", Location: "NYC"}, 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.lead)
			if diff := got.Score - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("Score(%+v) = %v, want %v", tt.lead, got.Score, tt.want)
			}
		})
	}
}

func TestScoreClampsAtOne(t *testing.T) {
	lead := crm.Lead{
		Industry:    "fintech",
		CompanySize: "enterprise, 1000+",
		Revenue:     "$500M",
		Phone:       "555-0100",
		Location:    "London",
	}
	got := Score(lead)
	if got.Score != 1.0 {
		t.Fatalf("Score = %v, want clamped 1.0", got.Score)
	}
	if got.Tier != TierHigh || got.Status != crm.LeadStatusQualified {
		t.Fatalf("tier = %v/%v, want high/qualified", got.Tier, got.Status)
	}
}

func TestScoreIsMonotonicInIndustry(t *testing.T) {
	base := crm.Lead{CompanySize: "500", Revenue: "$50M"}
	upgraded := base
	upgraded.Industry = "healthcare"
	if Score(upgraded).Score < Score(base).Score {
		t.Fatalf("adding high-value industry decreased score")
	}
}

func TestIndustryEstimates(t *testing.T) {
	got := Score(crm.Lead{Industry: "Healthcare Tech"})
	if got.PainPoints[0] != "Patient data management" {
		t.Fatalf("PainPoints = %v", got.PainPoints)
	}

	got = Score(crm.Lead{Revenue: "$100M", CompanySize: "1000+"})
	if got.BudgetEstimate != "$50K - $200K" {
		t.Fatalf("BudgetEstimate = %q, want revenue table to win", got.BudgetEstimate)
	}
	if got.Timeline != "6-12 months" {
		t.Fatalf("Timeline = %q, want 6-12 months", got.Timeline)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	lead := crm.Lead{Industry: "edtech", CompanySize: "200", Revenue: "$20M", Phone: "1", Location: "x"}
	a, b := Score(lead), Score(lead)
	if a.Score != b.Score || a.BudgetEstimate != b.BudgetEstimate || a.Timeline != b.Timeline {
		t.Fatalf("Score() not deterministic: %+v vs %+v", a, b)
	}
}
