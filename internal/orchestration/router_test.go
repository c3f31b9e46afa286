package orchestration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincoach/internal/agents"
)

func TestRoute_SingleIntent(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		intent Intent
		want   []agents.AgentID
	}{
		{IntentEducationQuestion, []agents.AgentID{agents.AgentFinanceQA}},
		{IntentTaxQuestion, []agents.AgentID{agents.AgentTaxEducation}},
		{IntentPortfolioAnalysis, []agents.AgentID{agents.AgentPortfolioAnalysis}},
		{IntentMarketAnalysis, []agents.AgentID{agents.AgentMarketAnalysis}},
		{IntentNewsAnalysis, []agents.AgentID{agents.AgentNewsSynthesizer}},
		{IntentGoalPlanning, []agents.AgentID{agents.AgentGoalPlanning}},
		{IntentUnknown, []agents.AgentID{agents.AgentFinanceQA}},
	}

	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			decision := r.Route([]IntentScore{{Intent: tt.intent, Score: 1}})
			assert.Equal(t, tt.want, decision.Agents)
			assert.Equal(t, StrategySequential, decision.Strategy)
		})
	}
}

func TestRoute_InvestmentPlanFansOut(t *testing.T) {
	r := NewRouter()

	decision := r.Route([]IntentScore{{Intent: IntentInvestmentPlan, Score: 2}})

	require.Len(t, decision.Agents, 3)
	assert.Equal(t, []agents.AgentID{
		agents.AgentPortfolioAnalysis,
		agents.AgentGoalPlanning,
		agents.AgentTaxEducation,
	}, decision.Agents)
	assert.Equal(t, StrategyParallel, decision.Strategy)
}

func TestRoute_UnionDeduplicates(t *testing.T) {
	r := NewRouter()

	// investment_plan already covers goal planning's agent
	decision := r.Route([]IntentScore{
		{Intent: IntentInvestmentPlan, Score: 2},
		{Intent: IntentGoalPlanning, Score: 1},
	})

	assert.Len(t, decision.Agents, 3)
}

func TestRoute_OrderStableByFirstAppearance(t *testing.T) {
	r := NewRouter()

	decision := r.Route([]IntentScore{
		{Intent: IntentMarketAnalysis, Score: 3},
		{Intent: IntentTaxQuestion, Score: 1},
	})

	assert.Equal(t, []agents.AgentID{
		agents.AgentMarketAnalysis,
		agents.AgentTaxEducation,
	}, decision.Agents)
}

func TestRoute_EmptyFallsBackToQA(t *testing.T) {
	r := NewRouter()

	decision := r.Route(nil)

	assert.Equal(t, []agents.AgentID{agents.AgentFinanceQA}, decision.Agents)
}

func TestParseIntentList(t *testing.T) {
	t.Run("valid list", func(t *testing.T) {
		scores := parseIntentList("tax_question, goal_planning")
		require.Len(t, scores, 2)
		assert.Equal(t, IntentTaxQuestion, scores[0].Intent)
		assert.Equal(t, IntentGoalPlanning, scores[1].Intent)
		assert.Greater(t, scores[0].Score, scores[1].Score)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		assert.Empty(t, parseIntentList("I think this is about taxes."))
	})

	t.Run("unknown not accepted", func(t *testing.T) {
		assert.Empty(t, parseIntentList("unknown"))
	})

	t.Run("capped and deduplicated", func(t *testing.T) {
		scores := parseIntentList("tax_question, tax_question, goal_planning, market_analysis, news_analysis")
		assert.Len(t, scores, 3)
	})
}
