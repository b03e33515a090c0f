package intent

import "testing"

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"generate emails for all leads", GenerateEmails},
		{"generate more follow-up emails", GenerateEmails}, // email generation outranks follow-up
		{"send follow up to everyone", SendFollowups},
		{"show me high priority leads", ShowHighPriority},
		{"analyze all my leads", AnalyzeLeads},
		{"send invoice to the client", SendInvoice},
		{"show me one example email", ShowEmailExample},
		{"deliver them now", SendEmails},
		{"bill the client", CreateInvoice},
		{"help me pitch to save the deal", SendPitch},
		{"client wants 20% discount", DiscountRequest},
		{"time to touch base with them", FollowUp},
		{"client said they need time", ClientResponded},
		{"what is the weather like", Unknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassifyDeterministicAndTotal(t *testing.T) {
	inputs := []string{"", "hi", "generate emails", "zzzz", "client wants discount", "???"}
	valid := map[Intent]bool{}
	for _, i := range All() {
		valid[i] = true
	}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		if first != second {
			t.Fatalf("Classify(%q) not deterministic: %q vs %q", in, first, second)
		}
		if !valid[first] {
			t.Fatalf("Classify(%q) = %q, not in the closed intent set", in, first)
		}
	}
}

func TestClassifyTypoTolerance(t *testing.T) {
	// One deleted character still matches.
	if got := Classify("client asked for a discunt"); got != DiscountRequest {
		t.Fatalf("Classify(discunt) = %q, want %q", got, DiscountRequest)
	}
	// One substituted character still matches.
	if got := Classify("they want it cheeper"); got != DiscountRequest {
		t.Fatalf("Classify(cheeper) = %q, want %q", got, DiscountRequest)
	}
	// Two or more alterations do not match.
	if got := Classify("dscnt please"); got != Unknown {
		t.Fatalf("Classify(dscnt) = %q, want %q", got, Unknown)
	}
}

func TestMatchKeywordRules(t *testing.T) {
	if matchKeyword("no bil here", "bill") != true {
		t.Fatalf("matchKeyword: one missing char in a >3 char word should match")
	}
	// Short keywords get no typo tolerance.
	if matchKeyword("bli", "bill") {
		t.Fatalf("matchKeyword: out-of-order chars must not match")
	}
	if matchKeyword("folow up", "follow up") {
		t.Fatalf("matchKeyword: multi-word keywords get no typo tolerance")
	}
}
