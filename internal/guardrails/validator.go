package guardrails

import (
	"regexp"
	"strings"
	"unicode"

	"fincoach/internal/adapters/config"
	"fincoach/pkg/errors"
)

// Financial limits applied before any agent runs.
const (
	MinAmount         = 1.0
	MaxAmount         = 10_000_000  // $10M per position or goal
	MaxPortfolioValue = 100_000_000 // $100M
	MinYears          = 1
	MaxYears          = 50
	MaxHoldings       = 100

	ConcentrationWarningPct = 50.0
	ConcentrationErrorPct   = 95.0
)

var (
	allowedCharsRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-\$\%\(\)\,\.\?\!]+$`)
	tickerRe       = regexp.MustCompile(`^[A-Z]{1,5}$`)

	// Substrings that suggest injection attempts, matched case-insensitively
	dangerousPatterns = []string{"DROP", "DELETE", "INSERT", "UPDATE", "--", "/*"}

	// Uppercase words that look like tickers but are not
	tickerStopwords = map[string]struct{}{
		"THE": {}, "AND": {}, "FOR": {}, "WITH": {}, "FROM": {}, "THAT": {},
		"THIS": {}, "WHAT": {}, "WHEN": {}, "WHERE": {}, "HOW": {}, "WHY": {},
		"IS": {}, "IT": {}, "MY": {}, "YOUR": {},
		"PORTFOLIO": {}, "STOCK": {}, "PRICE": {}, "SHARE": {}, "DIVIDEND": {},
	}
)

// InputValidator checks user queries before they reach the workflow
type InputValidator struct {
	minQueryLength int
	maxQueryLength int
}

// NewInputValidator creates a validator with limits from config
func NewInputValidator(cfg config.GuardrailsConfig) *InputValidator {
	minLen := cfg.MinQueryLength
	if minLen <= 0 {
		minLen = 3
	}
	maxLen := cfg.MaxQueryLength
	if maxLen <= 0 {
		maxLen = 5000
	}
	return &InputValidator{
		minQueryLength: minLen,
		maxQueryLength: maxLen,
	}
}

// ValidateQuery runs all input checks and returns the first violation
func (v *InputValidator) ValidateQuery(query string) error {
	if len(query) > v.maxQueryLength {
		return errors.Wrapf(errors.ErrQueryTooLong, "query too long, maximum %d characters", v.maxQueryLength)
	}
	if len(query) < v.minQueryLength {
		return errors.Wrapf(errors.ErrQueryTooShort, "query too short, minimum %d characters", v.minQueryLength)
	}

	if !allowedCharsRe.MatchString(query) {
		return errors.Wrap(errors.ErrDisallowedPattern, "query contains invalid characters")
	}

	upper := strings.ToUpper(query)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(upper, pattern) {
			return errors.Wrap(errors.ErrDisallowedPattern, "query contains suspicious patterns")
		}
	}

	special := 0
	for _, c := range query {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != ' ' {
			special++
		}
	}
	if float64(special)/float64(len(query)) > 0.3 {
		return errors.Wrap(errors.ErrDisallowedPattern, "query has too many special characters")
	}

	return nil
}

// ValidateTicker reports whether the symbol looks like a real ticker
func (v *InputValidator) ValidateTicker(ticker string) bool {
	if !tickerRe.MatchString(ticker) {
		return false
	}
	_, excluded := tickerStopwords[ticker]
	return !excluded
}

// ValidateTickers returns the subset of symbols that fail ticker validation
func (v *InputValidator) ValidateTickers(tickers []string) []string {
	var invalid []string
	for _, t := range tickers {
		if !v.ValidateTicker(t) {
			invalid = append(invalid, t)
		}
	}
	return invalid
}

// ValidateAmount checks a dollar amount against global bounds
func (v *InputValidator) ValidateAmount(amount float64) error {
	if amount < MinAmount {
		return errors.Wrapf(errors.ErrInvalidInput, "amount too small, minimum $%.0f", MinAmount)
	}
	if amount > MaxAmount {
		return errors.Wrapf(errors.ErrInvalidInput, "amount exceeds maximum $%d", int(MaxAmount))
	}
	return nil
}

// ValidateTimeframe checks a planning horizon in years
func (v *InputValidator) ValidateTimeframe(years int) error {
	if years < MinYears {
		return errors.Wrapf(errors.ErrInvalidInput, "minimum timeframe is %d year", MinYears)
	}
	if years > MaxYears {
		return errors.Wrapf(errors.ErrInvalidInput, "maximum timeframe is %d years", MaxYears)
	}
	return nil
}
