package orchestration

import "fincoach/internal/agents"

// Intent classifies what the user is asking for
type Intent string

const (
	IntentEducationQuestion Intent = "education_question"
	IntentTaxQuestion       Intent = "tax_question"
	IntentPortfolioAnalysis Intent = "portfolio_analysis"
	IntentMarketAnalysis    Intent = "market_analysis"
	IntentNewsAnalysis      Intent = "news_analysis"
	IntentGoalPlanning      Intent = "goal_planning"
	IntentInvestmentPlan    Intent = "investment_plan"
	IntentUnknown           Intent = "unknown"
)

// intentPriority breaks score ties: lower index wins
var intentPriority = []Intent{
	IntentEducationQuestion,
	IntentTaxQuestion,
	IntentPortfolioAnalysis,
	IntentMarketAnalysis,
	IntentNewsAnalysis,
	IntentGoalPlanning,
	IntentInvestmentPlan,
}

// intentKeywords drives keyword-based intent detection. Kept as data so
// vocabularies can be tuned without touching classifier logic.
var intentKeywords = map[Intent][]string{
	IntentEducationQuestion: {
		"what is", "how does", "explain", "define", "understand",
		"tell me about", "describe", "difference between", "concept",
		"meaning of", "why is",
	},
	IntentTaxQuestion: {
		"tax", "capital gains", "ira", "401k", "roth",
		"deductible", "harvesting", "dividend tax", "tax strategy",
		"tax loss", "tax efficient",
	},
	IntentPortfolioAnalysis: {
		"analyze portfolio", "portfolio allocation", "diversification",
		"my holdings", "my portfolio", "concentration", "rebalance", "position",
		"allocation percentage", "analyze", "my stocks", "my shares",
	},
	IntentMarketAnalysis: {
		"price of", "quote", "stock price", "market data",
		"historical", "trend", "fundamentals", "compare",
		"current price", "trading at", "what is the price",
		"market analysis", "stock analysis", "ticker", "symbol",
	},
	IntentNewsAnalysis: {
		"news", "sentiment", "headlines", "market condition",
		"what's happening", "latest", "recent", "market movement",
		"events affecting", "market outlook",
	},
	IntentGoalPlanning: {
		"goal", "reach", "save", "monthly contribution", "timeline",
		"projection", "project", "when will i", "how much do i need",
		"years to goal", "financial plan", "achieve", "target",
		"path to", "years until",
	},
	IntentInvestmentPlan: {
		"plan", "strategy", "comprehensive", "full analysis",
		"complete picture", "what should i do", "recommendation",
		"overall strategy", "investment approach",
	},
}

// intentAgents maps each intent to the agents that serve it.
// investment_plan fans out to three agents, unknown falls back to Q&A.
var intentAgents = map[Intent][]agents.AgentID{
	IntentEducationQuestion: {agents.AgentFinanceQA},
	IntentTaxQuestion:       {agents.AgentTaxEducation},
	IntentPortfolioAnalysis: {agents.AgentPortfolioAnalysis},
	IntentMarketAnalysis:    {agents.AgentMarketAnalysis},
	IntentNewsAnalysis:      {agents.AgentNewsSynthesizer},
	IntentGoalPlanning:      {agents.AgentGoalPlanning},
	IntentInvestmentPlan: {
		agents.AgentPortfolioAnalysis,
		agents.AgentGoalPlanning,
		agents.AgentTaxEducation,
	},
	IntentUnknown: {agents.AgentFinanceQA},
}
