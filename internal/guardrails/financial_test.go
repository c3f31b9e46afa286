package guardrails

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFinancialValidator() *FinancialValidator {
	return NewFinancialValidator(testValidator())
}

func holdings(pairs map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for k, v := range pairs {
		out[k] = decimal.NewFromFloat(v)
	}
	return out
}

func TestValidatePortfolio_Valid(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidatePortfolio(holdings(map[string]float64{
		"AAPL": 10000,
		"MSFT": 12000,
		"VTI":  15000,
	}))

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidatePortfolio_Empty(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidatePortfolio(nil)
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "cannot be empty")
}

func TestValidatePortfolio_InvalidTicker(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidatePortfolio(holdings(map[string]float64{
		"AAPL":  10000,
		"STOCK": 10000,
	}))

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "invalid ticker: STOCK")
}

func TestValidatePortfolio_Concentration(t *testing.T) {
	v := testFinancialValidator()

	// 60% in one position warns but stays valid
	res := v.ValidatePortfolio(holdings(map[string]float64{
		"AAPL": 60000,
		"MSFT": 40000,
	}))
	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "AAPL concentration 60.0%")

	// 96% in one position is an error
	res = v.ValidatePortfolio(holdings(map[string]float64{
		"AAPL": 96000,
		"MSFT": 4000,
	}))
	assert.False(t, res.Valid)
}

func TestValidateGoal_Valid(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidateGoal(Goal{
		TargetAmount:  decimal.NewFromInt(500000),
		CurrentAmount: decimal.NewFromInt(100000),
		Years:         20,
	})

	assert.True(t, res.Valid)
	assert.Empty(t, res.Warnings)
}

func TestValidateGoal_AlreadyAchieved(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidateGoal(Goal{
		TargetAmount:  decimal.NewFromInt(100000),
		CurrentAmount: decimal.NewFromInt(200000),
		Years:         10,
	})

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "goal already achieved")
}

func TestValidateGoal_AmbitiousGrowth(t *testing.T) {
	v := testFinancialValidator()

	// 1000 -> 100000 in 2 years requires ~900% annual growth
	res := v.ValidateGoal(Goal{
		TargetAmount:  decimal.NewFromInt(100000),
		CurrentAmount: decimal.NewFromInt(1000),
		Years:         2,
	})

	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "annual growth")
}

func TestValidateGoal_BadTimeframe(t *testing.T) {
	v := testFinancialValidator()

	res := v.ValidateGoal(Goal{
		TargetAmount:  decimal.NewFromInt(100000),
		CurrentAmount: decimal.NewFromInt(1000),
		Years:         0,
	})
	assert.False(t, res.Valid)

	res = v.ValidateGoal(Goal{
		TargetAmount:  decimal.NewFromInt(100000),
		CurrentAmount: decimal.NewFromInt(1000),
		Years:         60,
	})
	assert.False(t, res.Valid)
}
