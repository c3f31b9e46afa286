package guardrails

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ValidationResult collects everything wrong or suspicious about a
// financial payload. Errors block processing, warnings are surfaced to
// the user alongside the response.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Goal describes a savings target for feasibility checks
type Goal struct {
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Years         int
}

// FinancialValidator validates portfolios and goals
type FinancialValidator struct {
	input *InputValidator
}

// NewFinancialValidator creates a validator sharing ticker and amount rules
func NewFinancialValidator(input *InputValidator) *FinancialValidator {
	return &FinancialValidator{input: input}
}

// ValidatePortfolio checks holdings (ticker -> dollar value) for bad
// tickers, out-of-range amounts and dangerous concentration
func (v *FinancialValidator) ValidatePortfolio(holdings map[string]decimal.Decimal) ValidationResult {
	var res ValidationResult

	if len(holdings) == 0 {
		res.Errors = append(res.Errors, "portfolio cannot be empty")
		return res
	}

	if len(holdings) > MaxHoldings {
		res.Errors = append(res.Errors, fmt.Sprintf("portfolio exceeds maximum holdings (%d)", MaxHoldings))
	}

	total := decimal.Zero
	for _, amount := range holdings {
		total = total.Add(amount)
	}

	if total.GreaterThan(decimal.NewFromInt(MaxPortfolioValue)) {
		res.Errors = append(res.Errors, fmt.Sprintf("portfolio value exceeds $%s", humanize.Comma(int64(MaxPortfolioValue))))
	}

	for ticker, amount := range holdings {
		if !v.input.ValidateTicker(ticker) {
			res.Errors = append(res.Errors, fmt.Sprintf("invalid ticker: %s", ticker))
		}

		if err := v.input.ValidateAmount(amount.InexactFloat64()); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ticker, err))
		}

		if total.IsPositive() {
			pct := amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
			if pct > ConcentrationErrorPct {
				res.Errors = append(res.Errors, fmt.Sprintf("%s concentration %.1f%% exceeds maximum", ticker, pct))
			} else if pct > ConcentrationWarningPct {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s concentration %.1f%% is very high (risk)", ticker, pct))
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateGoal checks target, current savings and timeframe for sanity
func (v *FinancialValidator) ValidateGoal(goal Goal) ValidationResult {
	var res ValidationResult

	maxAmount := decimal.NewFromInt(MaxAmount)

	if !goal.TargetAmount.IsPositive() || goal.TargetAmount.GreaterThan(maxAmount) {
		res.Errors = append(res.Errors, "target amount invalid")
	}
	if goal.CurrentAmount.IsNegative() || goal.CurrentAmount.GreaterThan(maxAmount) {
		res.Errors = append(res.Errors, "current amount invalid")
	}
	if goal.Years < MinYears || goal.Years > MaxYears {
		res.Errors = append(res.Errors, fmt.Sprintf("timeframe must be %d-%d years", MinYears, MaxYears))
	}

	if goal.CurrentAmount.GreaterThan(goal.TargetAmount) {
		res.Errors = append(res.Errors, "current amount exceeds target (goal already achieved)")
	}

	if goal.CurrentAmount.IsPositive() && goal.Years > 0 {
		ratio := goal.TargetAmount.Div(goal.CurrentAmount).InexactFloat64()
		growthRate := (math.Pow(ratio, 1.0/float64(goal.Years)) - 1) * 100
		if growthRate > 50 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("goal requires %.1f%% annual growth (very ambitious)", growthRate))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
