package agents

import (
	"regexp"
	"strconv"
	"strings"
)

// Each agent does its own lightweight entity parsing from the raw
// message, independent of upstream classification.

var (
	tickerTokenRe = regexp.MustCompile(`\b([A-Z]{1,5})\b`)
	amountTokenRe = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)([kKmM])?`)
	// "$50,000 in AAPL" style holding declarations
	holdingPairRe = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)([kKmM])?\s+(?:in|of|on)\s+([A-Z]{1,5})\b`)
	horizonRe     = regexp.MustCompile(`(?i)\b(\d+)\s*(years?|months?)\b`)

	tickerNoise = map[string]struct{}{
		"A": {}, "I": {}, "WHAT": {}, "ABOUT": {}, "PRICE": {}, "STOCK": {},
		"IS": {}, "THE": {}, "OF": {}, "FOR": {}, "AND": {}, "THAT": {},
		"THIS": {}, "FROM": {}, "WITH": {}, "NEWS": {}, "MY": {}, "IN": {},
		"ON": {}, "TO": {}, "OR": {}, "HOW": {}, "DO": {}, "CAN": {},
		"SHOULD": {}, "BUY": {}, "SELL": {},
	}
)

// messageTickers extracts candidate tickers from free text
func messageTickers(message string) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, m := range tickerTokenRe.FindAllStringSubmatch(message, -1) {
		token := m[1]
		if _, noise := tickerNoise[token]; noise {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tickers = append(tickers, token)
	}
	return tickers
}

// messageAmounts extracts dollar amounts in order of appearance
func messageAmounts(message string) []float64 {
	var amounts []float64
	for _, m := range amountTokenRe.FindAllStringSubmatch(message, -1) {
		if v, ok := parseAmount(m[1], m[2]); ok {
			amounts = append(amounts, v)
		}
	}
	return amounts
}

// messageHoldings extracts "$amount in TICKER" pairs
func messageHoldings(message string) map[string]float64 {
	holdings := make(map[string]float64)
	for _, m := range holdingPairRe.FindAllStringSubmatch(message, -1) {
		ticker := m[3]
		if _, noise := tickerNoise[ticker]; noise {
			continue
		}
		if v, ok := parseAmount(m[1], m[2]); ok {
			holdings[ticker] += v
		}
	}
	return holdings
}

// messageHorizonYears extracts the first time horizon as fractional
// years, or 0 when absent
func messageHorizonYears(message string) float64 {
	m := horizonRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "month") {
		return n / 12
	}
	return n
}

func parseAmount(digits, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return v, true
}
