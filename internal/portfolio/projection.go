package portfolio

import "math"

// Default assumed annual returns by risk appetite, in percent
var defaultReturns = map[string]float64{
	RiskLow:      3.0,
	RiskModerate: 6.0,
	RiskHigh:     8.5,
}

// AllocationMix is a stocks/bonds/cash split in percent
type AllocationMix struct {
	Stocks float64
	Bonds  float64
	Cash   float64
}

// GoalInput describes a savings goal
type GoalInput struct {
	CurrentValue     float64
	GoalAmount       float64
	TimeHorizonYears float64
	RiskAppetite     string
	// MonthlyBudget, when positive, fixes the contribution and the
	// projection solves for time instead
	MonthlyBudget float64
	// AnnualReturnPct overrides the risk-appetite default when positive
	AnnualReturnPct float64
}

// GoalProjection is the result of projecting a goal forward
type GoalProjection struct {
	CurrentValue            float64
	GoalAmount              float64
	TimeHorizonYears        float64
	Gap                     float64
	AssumedAnnualReturnPct  float64
	RequiredMonthlyPayment  float64
	ProjectedValue          float64
	ProjectedMonthsToGoal   float64
	RiskLevel               string
	SuggestedAllocation     AllocationMix
	GoalReachable           bool
}

// DefaultReturn returns the assumed annual return for a risk appetite
func DefaultReturn(riskAppetite string) float64 {
	if r, ok := defaultReturns[riskAppetite]; ok {
		return r
	}
	return defaultReturns[RiskModerate]
}

// ProjectGoal runs the compound interest projection:
//
//	FV = PV*(1+r)^n + PMT*((1+r)^n - 1)/r
//
// with r the monthly rate and n the horizon in months. Without a fixed
// budget it solves for the monthly payment that closes the gap.
func ProjectGoal(in GoalInput) GoalProjection {
	annualReturn := in.AnnualReturnPct
	if annualReturn <= 0 {
		annualReturn = DefaultReturn(in.RiskAppetite)
	}

	risk := in.RiskAppetite
	if risk == "" {
		risk = RiskModerate
	}

	monthlyRate := annualReturn / 100 / 12
	totalMonths := in.TimeHorizonYears * 12
	gap := in.GoalAmount - in.CurrentValue

	growthFactor := math.Pow(1+monthlyRate, totalMonths)
	annuityFactor := (growthFactor - 1) / monthlyRate

	var requiredMonthly float64
	if in.MonthlyBudget > 0 {
		requiredMonthly = in.MonthlyBudget
	} else if gap > 0 {
		remaining := in.GoalAmount - in.CurrentValue*growthFactor
		if remaining > 0 {
			requiredMonthly = remaining / annuityFactor
		}
	}

	projectedValue := in.CurrentValue*growthFactor + requiredMonthly*annuityFactor

	monthsToGoal := totalMonths
	if in.MonthlyBudget > 0 {
		monthsToGoal = monthsToReach(in.CurrentValue, in.GoalAmount, in.MonthlyBudget, monthlyRate)
	}

	return GoalProjection{
		CurrentValue:           in.CurrentValue,
		GoalAmount:             in.GoalAmount,
		TimeHorizonYears:       in.TimeHorizonYears,
		Gap:                    gap,
		AssumedAnnualReturnPct: annualReturn,
		RequiredMonthlyPayment: requiredMonthly,
		ProjectedValue:         projectedValue,
		ProjectedMonthsToGoal:  monthsToGoal,
		RiskLevel:              risk,
		SuggestedAllocation:    AllocationByHorizon(in.TimeHorizonYears),
		GoalReachable:          !math.IsInf(monthsToGoal, 1),
	}
}

// monthsToReach walks forward month by month until the future value
// covers the goal, capped at 50 years
func monthsToReach(current, goal, monthlyContribution, monthlyRate float64) float64 {
	if monthlyContribution <= 0 && current*(1+monthlyRate) <= current {
		return math.Inf(1)
	}

	const maxMonths = 600
	for months := 1; months <= maxMonths; months++ {
		growth := math.Pow(1+monthlyRate, float64(months))
		futureValue := current*growth + monthlyContribution*(growth-1)/monthlyRate
		if futureValue >= goal {
			return float64(months)
		}
	}
	return math.Inf(1)
}

// AllocationByHorizon suggests a stocks/bonds/cash mix: longer horizons
// tolerate more equity exposure
func AllocationByHorizon(years float64) AllocationMix {
	switch {
	case years >= 10:
		return AllocationMix{Stocks: 85, Bonds: 10, Cash: 5}
	case years >= 7:
		return AllocationMix{Stocks: 80, Bonds: 15, Cash: 5}
	case years >= 5:
		return AllocationMix{Stocks: 70, Bonds: 25, Cash: 5}
	case years >= 3:
		return AllocationMix{Stocks: 60, Bonds: 35, Cash: 5}
	default:
		return AllocationMix{Stocks: 40, Bonds: 45, Cash: 15}
	}
}
