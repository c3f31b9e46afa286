package agents

import "context"

// AgentID identifies one of the six specialist agents
type AgentID string

const (
	AgentFinanceQA         AgentID = "finance_qa"
	AgentPortfolioAnalysis AgentID = "portfolio_analysis"
	AgentMarketAnalysis    AgentID = "market_analysis"
	AgentGoalPlanning      AgentID = "goal_planning"
	AgentTaxEducation      AgentID = "tax_education"
	AgentNewsSynthesizer   AgentID = "news_synthesizer"
)

// AllAgentIDs lists every agent in registration order
func AllAgentIDs() []AgentID {
	return []AgentID{
		AgentFinanceQA,
		AgentPortfolioAnalysis,
		AgentMarketAnalysis,
		AgentGoalPlanning,
		AgentTaxEducation,
		AgentNewsSynthesizer,
	}
}

// Citation is a structured reference attached to an answer
type Citation struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	Category  string `json:"category"`
}

// Output is what every agent returns from Execute
type Output struct {
	AnswerText     string                 `json:"answer_text"`
	Confidence     float64                `json:"confidence"`
	Citations      []Citation             `json:"citations,omitempty"`
	StructuredData map[string]interface{} `json:"structured_data,omitempty"`
	TokensUsed     int                    `json:"tokens_used,omitempty"`
}

// Agent is one financial-domain capability. Implementations wrap an LLM
// call, a vector search, a market-data lookup, or some combination.
// Execute must return errors rather than panic, the executor isolates
// failures per agent.
type Agent interface {
	ID() AgentID

	// Execute answers the user message. convContext carries the
	// formatted conversation history plus any extracted entities and
	// may be empty.
	Execute(ctx context.Context, message, convContext string) (*Output, error)
}
