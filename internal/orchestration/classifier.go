package orchestration

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Detection caps
const (
	maxDetectedIntents = 3

	confidenceBase        = 0.5
	confidencePerKeyword  = 0.1
	confidenceKeywordCap  = 0.3
	confidencePerEntity   = 0.1
	confidenceUnknownOnly = 0.3
)

var (
	tickerWordRe   = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	tickerQuotedRe = regexp.MustCompile(`['"]([A-Z]{2,5})['"]`)
	tickerPrefixRe = regexp.MustCompile(`(?i)(?:ticker|symbol|holding)[\s:]*([A-Z]{2,5})`)

	amountRe    = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)([kKmM])?`)
	timeframeRe = regexp.MustCompile(`(?i)\b(\d+)\s*(years?|months?)\b`)

	// Uppercase tokens that look like tickers but never are
	tickerExcluded = map[string]struct{}{
		"THE": {}, "AND": {}, "FOR": {}, "WITH": {}, "FROM": {}, "THAT": {},
		"THIS": {}, "WHAT": {}, "WHEN": {}, "WHERE": {}, "HOW": {}, "WHY": {},
		"IS": {}, "IT": {}, "MY": {}, "YOUR": {}, "PORTFOLIO": {}, "STOCK": {},
		"PRICE": {}, "SHARE": {}, "DIVIDEND": {}, "ANNUAL": {}, "ALSO": {},
		"SOME": {}, "EACH": {}, "MANY": {}, "MORE": {}, "HAVE": {}, "WILL": {},
		"CAN": {}, "ABOUT": {}, "BEEN": {}, "THAN": {}, "JUST": {}, "INTO": {},
		"OVER": {}, "ONLY": {}, "WHICH": {}, "WOULD": {}, "COULD": {},
		"SHOULD": {}, "IN": {}, "ON": {}, "AT": {}, "BY": {}, "TO": {},
		"OF": {}, "OR": {}, "UP": {}, "SSN": {},
	}
)

// IntentScore pairs an intent with its keyword match count
type IntentScore struct {
	Intent Intent
	Score  int
}

// Classifier detects intents and extracts entities from user text.
// It is a pure function of its input: no LLM call, no I/O, identical
// input always yields identical output.
type Classifier struct{}

// NewClassifier creates a classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// DetectIntents scores every intent by keyword matches and returns up
// to three, ranked by score descending with ties broken by the fixed
// priority order. Falls back to unknown when nothing matches.
func (c *Classifier) DetectIntents(text string) []IntentScore {
	lower := strings.ToLower(text)

	var scored []IntentScore
	for _, intent := range intentPriority {
		matches := 0
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > 0 {
			scored = append(scored, IntentScore{Intent: intent, Score: matches})
		}
	}

	if len(scored) == 0 {
		return []IntentScore{{Intent: IntentUnknown, Score: 0}}
	}

	// Stable sort keeps priority order among equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > maxDetectedIntents {
		scored = scored[:maxDetectedIntents]
	}
	return scored
}

// PrimaryIntent returns the top-ranked intent
func (c *Classifier) PrimaryIntent(scores []IntentScore) Intent {
	if len(scores) > 0 {
		return scores[0].Intent
	}
	return IntentUnknown
}

// ExtractTickers finds 2-5 letter uppercase tokens, quoted symbols and
// symbols after ticker/symbol/holding prefixes, minus the stoplist.
// Order follows first appearance, duplicates removed.
func (c *Classifier) ExtractTickers(text string) []string {
	var candidates []string
	for _, m := range tickerWordRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	for _, m := range tickerQuotedRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	for _, m := range tickerPrefixRe.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, strings.ToUpper(m[1]))
	}

	seen := make(map[string]struct{})
	var tickers []string
	for _, cand := range candidates {
		if _, excluded := tickerExcluded[cand]; excluded {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		tickers = append(tickers, cand)
	}
	return tickers
}

// ExtractAmounts finds $-prefixed amounts, normalizing thousands
// separators and k/m suffixes. Returned in order of appearance.
func (c *Classifier) ExtractAmounts(text string) []float64 {
	var amounts []float64
	for _, m := range amountRe.FindAllStringSubmatch(text, -1) {
		clean := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			value *= 1_000
		case "m":
			value *= 1_000_000
		}
		amounts = append(amounts, value)
	}
	return amounts
}

// ExtractTimeframe returns the first "<n> years"/"<n> months" phrase,
// or empty when none is present
func (c *Classifier) ExtractTimeframe(text string) string {
	return timeframeRe.FindString(text)
}

// ConfidenceScore combines keyword match density with extracted
// entities. Unknown-only detections get a fixed low score.
func (c *Classifier) ConfidenceScore(scores []IntentScore, text string) float64 {
	if len(scores) == 1 && scores[0].Intent == IntentUnknown {
		return confidenceUnknownOnly
	}

	keywordMatches := 0
	for _, s := range scores {
		keywordMatches += s.Score
	}

	score := confidenceBase

	keywordBonus := float64(keywordMatches) * confidencePerKeyword
	if keywordBonus > confidenceKeywordCap {
		keywordBonus = confidenceKeywordCap
	}
	score += keywordBonus

	if len(c.ExtractTickers(text)) > 0 {
		score += confidencePerEntity
	}
	if len(c.ExtractAmounts(text)) > 0 {
		score += confidencePerEntity
	}
	if c.ExtractTimeframe(text) != "" {
		score += confidencePerEntity
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}
