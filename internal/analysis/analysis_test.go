package analysis

import (
	"reflect"
	"testing"
)

func TestAnalyzeSentiment(t *testing.T) {
	cases := []struct {
		text string
		want Sentiment
	}{
		{"this sounds good, I am interested", SentimentPositive},
		{"too expensive, not for us", SentimentNegative},
		{"we will think about it", SentimentNeutral},
		// One positive and one negative occurrence tie to neutral.
		{"great but expensive", SentimentNeutral},
		{"", SentimentNeutral},
	}
	for _, tc := range cases {
		if got := Analyze(tc.text).Sentiment; got != tc.want {
			t.Errorf("Analyze(%q).Sentiment = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestAnalyzeEntities(t *testing.T) {
	got := Analyze("We compared Salesforce and Zoho; the email automation looks complex and the price is high").Entities

	if want := []string{"salesforce", "zoho"}; !reflect.DeepEqual(got.Competitors, want) {
		t.Errorf("Competitors = %v, want %v", got.Competitors, want)
	}
	// "ai" hits as a literal substring of "email"; the scan is not tokenized.
	if want := []string{"automation", "ai", "email"}; !reflect.DeepEqual(got.Features, want) {
		t.Errorf("Features = %v, want %v", got.Features, want)
	}
	if want := []string{"pricing", "complexity"}; !reflect.DeepEqual(got.Concerns, want) {
		t.Errorf("Concerns = %v, want %v", got.Concerns, want)
	}
}

func TestAnalyzeReturnsAllMatchesNotJustFirst(t *testing.T) {
	got := Analyze("hubspot or pipedrive, whichever has lead scoring analytics").Entities
	if len(got.Competitors) != 2 {
		t.Fatalf("Competitors = %v, want both mentions", got.Competitors)
	}
	if len(got.Features) < 3 {
		t.Fatalf("Features = %v, want lead, scoring and analytics", got.Features)
	}
}
