// Package analysis derives sentiment and entity mentions from client messages
// using fixed vocabularies. Multi-word phrases count as literal substring
// occurrences; nothing here is tokenized.
package analysis

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Entities holds every vocabulary hit found in a message, ordered by detection.
type Entities struct {
	Competitors []string `json:"competitors_mentioned"`
	Features    []string `json:"features_mentioned"`
	Concerns    []string `json:"concerns"`
}

type Result struct {
	Sentiment Sentiment `json:"sentiment"`
	Entities  Entities  `json:"entities"`
}

var positiveWords = []string{
	"great", "excellent", "perfect", "love", "interested", "yes",
	"definitely", "absolutely", "sounds good", "amazing",
}

var negativeWords = []string{
	"expensive", "costly", "no", "not", "never", "cant", "problem",
	"difficult", "hard", "concerned", "worried", "doubt",
}

var competitors = []string{"salesforce", "hubspot", "pipedrive", "zoho"}

var featureKeywords = []string{"automation", "ai", "analytics", "email", "lead", "scoring"}

var concernVocab = []struct {
	category string
	words    []string
}{
	{"pricing", []string{"expensive", "cost", "price"}},
	{"complexity", []string{"complex", "difficult", "hard"}},
	{"timing", []string{"time", "busy", "later"}},
}

// Analyze scans text against all vocabularies. Sentiment compares occurrence
// counts; ties resolve to neutral.
func Analyze(text string) Result {
	msg := strings.ToLower(text)

	positive := 0
	for _, w := range positiveWords {
		positive += strings.Count(msg, w)
	}
	negative := 0
	for _, w := range negativeWords {
		negative += strings.Count(msg, w)
	}

	sentiment := SentimentNeutral
	switch {
	case positive > negative:
		sentiment = SentimentPositive
	case negative > positive:
		sentiment = SentimentNegative
	}

	var ents Entities
	for _, c := range competitors {
		if strings.Contains(msg, c) {
			ents.Competitors = append(ents.Competitors, c)
		}
	}
	for _, f := range featureKeywords {
		if strings.Contains(msg, f) {
			ents.Features = append(ents.Features, f)
		}
	}
	for _, cv := range concernVocab {
		for _, w := range cv.words {
			if strings.Contains(msg, w) {
				ents.Concerns = append(ents.Concerns, cv.category)
				break
			}
		}
	}

	return Result{Sentiment: sentiment, Entities: ents}
}
