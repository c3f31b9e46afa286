package orchestration

import (
	"fincoach/internal/agents"
	"fincoach/internal/conversation"
)

// WorkflowState tracks progress through the request pipeline.
// It only ever advances forward, the single branch is the early exit
// to StateBlocked on a guardrail failure.
type WorkflowState string

const (
	StateReceived        WorkflowState = "received"
	StateGuarded         WorkflowState = "guarded"
	StateContextPrepared WorkflowState = "context_prepared"
	StateIntentDetected  WorkflowState = "intent_detected"
	StateRouted          WorkflowState = "routed"
	StateExecuted        WorkflowState = "executed"
	StateSynthesized     WorkflowState = "synthesized"
	StateComplete        WorkflowState = "complete"
	StateBlocked         WorkflowState = "blocked"
)

// Execution statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// AgentExecution records one agent run, successful or not
type AgentExecution struct {
	AgentID         agents.AgentID `json:"agent_id"`
	Status          string         `json:"status"`
	Output          *agents.Output `json:"output,omitempty"`
	ExecutionTimeMs float64        `json:"execution_time_ms"`
	ErrorMessage    string         `json:"error_message,omitempty"`
}

// State is the single mutable record threaded through the workflow.
// One instance is created per request and discarded after the response
// is returned.
type State struct {
	// Input
	UserInput           string
	SessionID           string
	UserID              string
	ConversationHistory []conversation.Message

	// Guardrails
	InputValidated  bool
	GuardrailErrors []string
	PIIDetected     bool

	// Context
	ConversationSummary *conversation.Summary
	ConversationContext string

	// Intent
	DetectedIntents    []Intent
	PrimaryIntent      Intent
	ConfidenceScore    float64
	ExtractedTickers   []string
	ExtractedAmounts   []float64
	ExtractedTimeframe string

	// Routing
	SelectedAgents   []agents.AgentID
	RoutingRationale string

	// Execution
	AgentExecutions []AgentExecution
	ExecutionTimes  map[string]float64

	// Synthesis
	SynthesizedResponse string
	ResponseStructure   map[string]string
	Citations           []agents.Citation
	ResponseConfidence  float64
	KeyInsights         []string
	Recommendations     []string

	WorkflowState WorkflowState
	ErrorMessages []string
}

// NewState creates the per-request state
func NewState(userInput, sessionID, userID string, history []conversation.Message) *State {
	return &State{
		UserInput:           userInput,
		SessionID:           sessionID,
		UserID:              userID,
		ConversationHistory: history,
		ExecutionTimes:      make(map[string]float64),
		WorkflowState:       StateReceived,
	}
}

// AddError appends a stage error
func (s *State) AddError(msg string) {
	s.ErrorMessages = append(s.ErrorMessages, msg)
}

// HasErrors reports whether any stage recorded an error
func (s *State) HasErrors() bool {
	return len(s.ErrorMessages) > 0
}

// AddExecution records an agent run and its timing
func (s *State) AddExecution(exec AgentExecution) {
	s.AgentExecutions = append(s.AgentExecutions, exec)
	s.ExecutionTimes[string(exec.AgentID)] = exec.ExecutionTimeMs
}

// ExecutionFor returns the record for a specific agent
func (s *State) ExecutionFor(id agents.AgentID) *AgentExecution {
	for i := range s.AgentExecutions {
		if s.AgentExecutions[i].AgentID == id {
			return &s.AgentExecutions[i]
		}
	}
	return nil
}

// SuccessfulExecutions returns executions with status success, in
// execution order
func (s *State) SuccessfulExecutions() []AgentExecution {
	var out []AgentExecution
	for _, exec := range s.AgentExecutions {
		if exec.Status == StatusSuccess {
			out = append(out, exec)
		}
	}
	return out
}

// IntentStrings renders detected intents for logs and metadata
func (s *State) IntentStrings() []string {
	out := make([]string, 0, len(s.DetectedIntents))
	for _, intent := range s.DetectedIntents {
		out = append(out, string(intent))
	}
	return out
}
