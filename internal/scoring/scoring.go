// Package scoring is the deterministic lead qualification heuristic: an
// additive score over lead attributes plus industry-derived estimates for
// pain points, budget and decision timeline.
package scoring

import (
	"strings"

	"github.com/salespilot-ai/salespilot/internal/crm"
)

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Result carries the score, its qualification tier, the lead status the tier
// maps to, and the derived estimates.
type Result struct {
	Score          float64
	Tier           Tier
	Status         crm.LeadStatus
	PainPoints     []string
	BudgetEstimate string
	Timeline       string
}

var highValueIndustries = []string{"saas", "fintech", "technology", "healthcare", "finance"}

// industryPainPoints is checked in this order; the first industry whose key is
// a substring of the lead's industry wins.
var industryPainPoints = []struct {
	key    string
	points []string
}{
	{"saas", []string{"Need to scale customer acquisition", "High customer churn rates"}},
	{"retail", []string{"Inventory management challenges", "Need for better customer analytics"}},
	{"fintech", []string{"Compliance and regulatory requirements", "Need for real-time transaction processing"}},
	{"healthcare", []string{"Patient data management", "Appointment scheduling inefficiencies"}},
	{"construction", []string{"Project management complexity", "Resource allocation challenges"}},
	{"edtech", []string{"Student engagement and retention", "Content delivery scalability"}},
	{"ecommerce", []string{"Cart abandonment issues", "Website performance optimization"}},
}

var defaultPainPoints = []string{"Process automation opportunities", "Digital transformation needs"}

// Score evaluates a lead. Same snapshot in, same result out.
func Score(lead crm.Lead) Result {
	s := calculate(lead)
	tier, status := tierFor(s)
	return Result{
		Score:          s,
		Tier:           tier,
		Status:         status,
		PainPoints:     painPoints(lead),
		BudgetEstimate: budgetEstimate(lead),
		Timeline:       timelineEstimate(lead),
	}
}

func calculate(lead crm.Lead) float64 {
	score := 0.5

	industry := strings.ToLower(lead.Industry)
	if industry != "" {
		for _, ind := range highValueIndustries {
			if strings.Contains(industry, ind) {
				score += 0.2
				break
			}
		}
	}

	if lead.CompanySize != "" {
		size := strings.ToLower(lead.CompanySize)
		if strings.Contains(size, "enterprise") || strings.Contains(lead.CompanySize, "1000+") {
			score += 0.2
		} else if strings.Contains(lead.CompanySize, "500") || strings.Contains(lead.CompanySize, "200") {
			score += 0.1
		}
	}

	if lead.Revenue != "" {
		if strings.Contains(lead.Revenue, "$100M") || strings.Contains(lead.Revenue, "$500M") {
			score += 0.15
		} else if strings.Contains(lead.Revenue, "$50M") || strings.Contains(lead.Revenue, "$20M") {
			score += 0.1
		}
	}

	if lead.Phone != "" && lead.Industry != "" && lead.Location != "" {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func tierFor(score float64) (Tier, crm.LeadStatus) {
	switch {
	case score >= 0.7:
		return TierHigh, crm.LeadStatusQualified
	case score >= 0.4:
		return TierMedium, crm.LeadStatusContacted
	default:
		return TierLow, crm.LeadStatusNew
	}
}

func painPoints(lead crm.Lead) []string {
	industry := strings.ToLower(lead.Industry)
	if industry != "" {
		for _, e := range industryPainPoints {
			if strings.Contains(industry, e.key) {
				return append([]string(nil), e.points...)
			}
		}
	}
	return append([]string(nil), defaultPainPoints...)
}

func budgetEstimate(lead crm.Lead) string {
	if lead.Revenue != "" {
		switch {
		case strings.Contains(lead.Revenue, "$100M") || strings.Contains(lead.Revenue, "$500M"):
			return "$50K - $200K"
		case strings.Contains(lead.Revenue, "$50M"):
			return "$30K - $100K"
		case strings.Contains(lead.Revenue, "$20M") || strings.Contains(lead.Revenue, "$10M"):
			return "$15K - $50K"
		}
	}
	if lead.CompanySize != "" {
		switch {
		case strings.Contains(lead.CompanySize, "500") || strings.Contains(lead.CompanySize, "1000"):
			return "$40K - $150K"
		case strings.Contains(lead.CompanySize, "200"):
			return "$25K - $80K"
		}
	}
	return "$10K - $30K"
}

func timelineEstimate(lead crm.Lead) string {
	if lead.CompanySize != "" {
		size := strings.ToLower(lead.CompanySize)
		switch {
		case strings.Contains(size, "enterprise") || strings.Contains(lead.CompanySize, "1000"):
			return "6-12 months"
		case strings.Contains(lead.CompanySize, "500"):
			return "3-6 months"
		case strings.Contains(lead.CompanySize, "100") || strings.Contains(lead.CompanySize, "200"):
			return "2-3 months"
		}
	}
	return "1-2 months"
}
