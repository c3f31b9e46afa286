package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisclaimerManager_Get(t *testing.T) {
	m := NewDisclaimerManager()

	assert.Contains(t, m.Get(DisclaimerTax), "TAX DISCLAIMER")
	assert.Contains(t, m.Get(DisclaimerInvestment), "INVESTMENT DISCLAIMER")
	assert.Contains(t, m.Get(DisclaimerGoalPlanning), "PLANNING DISCLAIMER")
	assert.Contains(t, m.Get(DisclaimerGeneral), "GENERAL DISCLAIMER")

	// Unknown category falls back to general
	assert.Contains(t, m.Get("nonsense"), "GENERAL DISCLAIMER")
}

func TestDisclaimerManager_Apply(t *testing.T) {
	m := NewDisclaimerManager()

	out := m.Apply("answer", "tax_question")
	assert.Contains(t, out, "TAX DISCLAIMER")

	out = m.Apply("answer", "investment_plan")
	assert.Contains(t, out, "PLANNING DISCLAIMER")

	out = m.Apply("answer", "goal_planning")
	assert.Contains(t, out, "PLANNING DISCLAIMER")

	out = m.Apply("answer", "portfolio_analysis")
	assert.Contains(t, out, "INVESTMENT DISCLAIMER")

	out = m.Apply("answer", "market_analysis")
	assert.Contains(t, out, "INVESTMENT DISCLAIMER")

	out = m.Apply("answer", "education_question")
	assert.Contains(t, out, "GENERAL DISCLAIMER")

	out = m.Apply("answer", "")
	assert.Contains(t, out, "GENERAL DISCLAIMER")
}

func TestDisclaimerManager_ApplyKeepsResponse(t *testing.T) {
	m := NewDisclaimerManager()

	out := m.Apply("original response text", "tax_question")
	assert.Contains(t, out, "original response text")
}
