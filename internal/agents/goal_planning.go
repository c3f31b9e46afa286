package agents

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"fincoach/internal/guardrails"
	"fincoach/internal/portfolio"
	"fincoach/pkg/logger"
)

// Defaults when the message doesn't state them
const (
	defaultGoalAmount   = 100_000.0
	defaultHorizonYears = 5.0
)

// GoalPlanning projects savings goals with compound interest math
type GoalPlanning struct {
	validator *guardrails.FinancialValidator
	log       *logger.Logger
}

// NewGoalPlanning creates the goal planning agent
func NewGoalPlanning(validator *guardrails.FinancialValidator) *GoalPlanning {
	return &GoalPlanning{
		validator: validator,
		log:       logger.Get().With("agent", string(AgentGoalPlanning)),
	}
}

func (a *GoalPlanning) ID() AgentID { return AgentGoalPlanning }

func (a *GoalPlanning) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	input := goalInputFromMessage(message)

	years := int(math.Round(input.TimeHorizonYears))
	if years < 1 {
		years = 1
	}
	check := a.validator.ValidateGoal(guardrails.Goal{
		TargetAmount:  decimal.NewFromFloat(input.GoalAmount),
		CurrentAmount: decimal.NewFromFloat(input.CurrentValue),
		Years:         years,
	})
	if !check.Valid {
		return &Output{
			AnswerText: "I can't project that goal as stated:\n- " +
				strings.Join(check.Errors, "\n- "),
			Confidence: 0.3,
			StructuredData: map[string]interface{}{
				"error":  "invalid_goal",
				"issues": check.Errors,
			},
		}, nil
	}

	projection := portfolio.ProjectGoal(input)

	a.log.Debugw("Goal projected",
		"goal", projection.GoalAmount,
		"monthly", projection.RequiredMonthlyPayment)

	text := renderProjection(projection)
	if len(check.Warnings) > 0 {
		text += "\n\n### Validation Warnings\n- " + strings.Join(check.Warnings, "\n- ")
	}

	return &Output{
		AnswerText: text,
		Confidence: 0.85,
		StructuredData: map[string]interface{}{
			"current_value":        projection.CurrentValue,
			"goal_amount":          projection.GoalAmount,
			"gap":                  projection.Gap,
			"monthly_contribution": projection.RequiredMonthlyPayment,
			"projected_value":      projection.ProjectedValue,
			"months_to_goal":       projection.ProjectedMonthsToGoal,
			"risk_level":           projection.RiskLevel,
		},
	}, nil
}

// goalInputFromMessage maps stated amounts onto a goal: with two or
// more amounts the first is current savings and the largest of the
// rest is the target; a single amount is the target.
func goalInputFromMessage(message string) portfolio.GoalInput {
	amounts := messageAmounts(message)

	current := 0.0
	goal := defaultGoalAmount

	switch {
	case len(amounts) >= 2:
		current = amounts[0]
		goal = amounts[1]
		for _, v := range amounts[2:] {
			if v > goal {
				goal = v
			}
		}
	case len(amounts) == 1:
		goal = amounts[0]
	}

	horizon := messageHorizonYears(message)
	if horizon <= 0 {
		horizon = defaultHorizonYears
	}

	return portfolio.GoalInput{
		CurrentValue:     current,
		GoalAmount:       goal,
		TimeHorizonYears: horizon,
		RiskAppetite:     portfolio.RiskModerate,
	}
}

func renderProjection(p portfolio.GoalProjection) string {
	var b strings.Builder

	gapPct := 0.0
	if p.GoalAmount > 0 {
		gapPct = p.Gap / p.GoalAmount * 100
	}

	fmt.Fprintf(&b, "## Financial Goal Projection\n\n")
	fmt.Fprintf(&b, "### Your Goal\n")
	fmt.Fprintf(&b, "- **Target Amount:** $%s\n", humanize.CommafWithDigits(p.GoalAmount, 2))
	fmt.Fprintf(&b, "- **Current Value:** $%s\n", humanize.CommafWithDigits(p.CurrentValue, 2))
	fmt.Fprintf(&b, "- **Gap:** $%s (%.1f%%)\n", humanize.CommafWithDigits(p.Gap, 2), gapPct)
	fmt.Fprintf(&b, "- **Time Horizon:** %.1f years\n", p.TimeHorizonYears)
	fmt.Fprintf(&b, "- **Risk Level:** %s\n", strings.ToUpper(p.RiskLevel))

	b.WriteString("\n### Projections\n")
	if p.RequiredMonthlyPayment > 0 {
		fmt.Fprintf(&b, "You need to save **$%s/month** to reach your goal in %.1f years.\n",
			humanize.CommafWithDigits(p.RequiredMonthlyPayment, 2), p.TimeHorizonYears)
	} else {
		b.WriteString("You're already on track to reach your goal.\n")
	}

	fmt.Fprintf(&b, "\n**Assumed Annual Return:** %.1f%%\n", p.AssumedAnnualReturnPct)
	fmt.Fprintf(&b, "**Projected Value in %.1f years:** $%s\n",
		p.TimeHorizonYears, humanize.CommafWithDigits(p.ProjectedValue, 2))

	alloc := p.SuggestedAllocation
	fmt.Fprintf(&b, "\n### Asset Allocation Strategy\n")
	fmt.Fprintf(&b, "**Recommended Allocation** (based on %.1f-year horizon):\n", p.TimeHorizonYears)
	fmt.Fprintf(&b, "- Stocks: %.0f%%\n- Bonds: %.0f%%\n- Cash: %.0f%%\n",
		alloc.Stocks, alloc.Bonds, alloc.Cash)

	b.WriteString(`
### Key Insights

1. **Monthly Savings:** Consistent monthly contributions are the most powerful tool. Even small increases compound significantly over time.
2. **Return Assumptions:** Actual returns vary with market conditions.
3. **Rebalancing:** Review and rebalance your portfolio annually to maintain your target allocation.
4. **Inflation:** Remember to account for inflation when setting your goal amount.

### Next Steps
- Set up automatic monthly contributions if possible
- Adjust allocation based on your comfort with volatility
- Review progress quarterly`)

	return strings.TrimSpace(b.String())
}
