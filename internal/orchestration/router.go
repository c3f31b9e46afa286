package orchestration

import (
	"fmt"

	"fincoach/internal/agents"
	"fincoach/pkg/logger"
)

// ExecutionStrategy selects how the chosen agents run
type ExecutionStrategy string

const (
	StrategyParallel   ExecutionStrategy = "parallel"
	StrategySequential ExecutionStrategy = "sequential"
)

// Decision is the router output
type Decision struct {
	Agents    []agents.AgentID
	Strategy  ExecutionStrategy
	Reasoning string
}

// Router maps detected intents onto agents via the fixed intentAgents
// table
type Router struct {
	log *logger.Logger
}

// NewRouter creates a router
func NewRouter() *Router {
	return &Router{
		log: logger.Get().With("component", "router"),
	}
}

// Route unions the mapped agents of every detected intent, deduplicated
// and order-stable by first appearance. An empty result falls back to
// the general Q&A agent.
func (r *Router) Route(scores []IntentScore) Decision {
	seen := make(map[agents.AgentID]struct{})
	var selected []agents.AgentID

	var intents []Intent
	for _, s := range scores {
		intents = append(intents, s.Intent)
		for _, id := range intentAgents[s.Intent] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			selected = append(selected, id)
		}
	}

	if len(selected) == 0 {
		selected = []agents.AgentID{agents.AgentFinanceQA}
	}

	decision := Decision{
		Agents:    selected,
		Strategy:  r.Strategy(selected),
		Reasoning: fmt.Sprintf("Detected intents: %v. Routing to %d agent(s).", intents, len(selected)),
	}

	r.log.Infow("Routing decision",
		"intents", intents,
		"agents", selected,
		"strategy", decision.Strategy)

	return decision
}

// Strategy chooses parallel whenever two or more independent agents
// were selected. No agent pair declares a data dependency, so the
// composite investment_plan fan-out also runs parallel.
func (r *Router) Strategy(selected []agents.AgentID) ExecutionStrategy {
	if len(selected) >= 2 {
		return StrategyParallel
	}
	return StrategySequential
}
