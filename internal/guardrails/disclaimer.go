package guardrails

// Disclaimer categories appended to synthesized responses
const (
	DisclaimerTax          = "tax"
	DisclaimerInvestment   = "investment"
	DisclaimerGoalPlanning = "goal_planning"
	DisclaimerGeneral      = "general"
)

var disclaimers = map[string]string{
	DisclaimerTax: "⚠️ **TAX DISCLAIMER**: This is educational information only, " +
		"not tax advice. Consult a qualified tax professional for your specific situation.",
	DisclaimerInvestment: "⚠️ **INVESTMENT DISCLAIMER**: This analysis is for informational purposes only. " +
		"Past performance doesn't guarantee future results. Consider your risk tolerance " +
		"and financial goals before making decisions.",
	DisclaimerGoalPlanning: "⚠️ **PLANNING DISCLAIMER**: These projections are estimates based on assumptions. " +
		"Actual results may vary significantly based on market conditions and changes.",
	DisclaimerGeneral: "⚠️ **GENERAL DISCLAIMER**: Not financial advice. Consult a qualified financial " +
		"advisor before making investment decisions.",
}

// DisclaimerManager picks the disclaimer matching detected intents
type DisclaimerManager struct{}

// NewDisclaimerManager creates a new manager
func NewDisclaimerManager() *DisclaimerManager {
	return &DisclaimerManager{}
}

// Get returns the disclaimer for a category, falling back to general
func (m *DisclaimerManager) Get(category string) string {
	if d, ok := disclaimers[category]; ok {
		return d
	}
	return disclaimers[DisclaimerGeneral]
}

// Apply appends exactly one disclaimer keyed on the primary intent
// behind the response. Secondary intents never escalate the notice: a
// question that is primarily educational keeps the general disclaimer
// even when an analysis keyword also matched.
func (m *DisclaimerManager) Apply(response, primaryIntent string) string {
	category := DisclaimerGeneral
	switch primaryIntent {
	case "tax_question", "tax":
		category = DisclaimerTax
	case "investment_plan", "goal_planning":
		category = DisclaimerGoalPlanning
	case "portfolio_analysis", "market_analysis", "investment":
		category = DisclaimerInvestment
	}
	return response + "\n\n" + m.Get(category)
}
