package orchestration

import (
	"context"
	"time"

	"fincoach/internal/agents"
	"fincoach/internal/conversation"
	"fincoach/internal/guardrails"
	"fincoach/internal/metrics"
	"fincoach/pkg/errors"
	"fincoach/pkg/logger"
)

// InternalErrorMessage is returned when a stage fails unexpectedly.
// The real cause goes to logs, never to the user.
const InternalErrorMessage = "I'm sorry, something went wrong while processing your request. " +
	"Please try again in a moment."

// Request is one chat turn entering the workflow. History is supplied
// by the calling layer, the workflow itself persists nothing.
type Request struct {
	SessionID string
	UserID    string
	Message   string
	History   []conversation.Message
}

// Response is the stable contract returned to the web layer
type Response struct {
	SessionID      string                 `json:"session_id"`
	Message        string                 `json:"message"`
	Citations      []agents.Citation      `json:"citations"`
	Confidence     float64                `json:"confidence"`
	Intent         string                 `json:"intent"`
	AgentsUsed     []string               `json:"agents_used"`
	ExecutionTimes map[string]float64     `json:"execution_times"`
	TotalTimeMs    float64                `json:"total_time_ms"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// Result pairs the response with the updated history the caller should
// persist for the session
type Result struct {
	Response *Response
	State    *State
	History  []conversation.Message
}

// Workflow sequences guard, context preparation, intent detection,
// routing, execution and synthesis for one request
type Workflow struct {
	validator    *guardrails.InputValidator
	pii          *guardrails.PIIDetector
	rateLimiter  guardrails.RateLimiter
	audit        *guardrails.AuditLogger
	conversation *conversation.Manager
	classifier   IntentDetector
	router       *Router
	executor     *Executor
	synthesizer  *Synthesizer

	workflowTimeout time.Duration
	log             *logger.Logger
}

// IntentDetector is the classification surface the workflow depends
// on. The keyword Classifier satisfies it, and so does the LLM-backed
// router variant.
type IntentDetector interface {
	DetectIntents(text string) []IntentScore
	PrimaryIntent(scores []IntentScore) Intent
	ExtractTickers(text string) []string
	ExtractAmounts(text string) []float64
	ExtractTimeframe(text string) string
	ConfidenceScore(scores []IntentScore, text string) float64
}

// WorkflowDeps collects everything a workflow needs
type WorkflowDeps struct {
	Validator       *guardrails.InputValidator
	PII             *guardrails.PIIDetector
	RateLimiter     guardrails.RateLimiter
	Audit           *guardrails.AuditLogger
	Conversation    *conversation.Manager
	Classifier      IntentDetector
	Router          *Router
	Executor        *Executor
	Synthesizer     *Synthesizer
	WorkflowTimeout time.Duration
}

// NewWorkflow wires the workflow from its dependencies
func NewWorkflow(deps WorkflowDeps) *Workflow {
	timeout := deps.WorkflowTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Workflow{
		validator:       deps.Validator,
		pii:             deps.PII,
		rateLimiter:     deps.RateLimiter,
		audit:           deps.Audit,
		conversation:    deps.Conversation,
		classifier:      deps.Classifier,
		router:          deps.Router,
		executor:        deps.Executor,
		synthesizer:     deps.Synthesizer,
		workflowTimeout: timeout,
		log:             logger.Get().With("component", "workflow"),
	}
}

// Run executes the full pipeline for one request. It never returns an
// error to the caller: every failure mode becomes a terminal response.
func (w *Workflow) Run(ctx context.Context, req Request) (result *Result) {
	start := time.Now()
	state := NewState(req.Message, req.SessionID, req.UserID, req.History)

	defer func() {
		if r := recover(); r != nil {
			w.log.Errorw("Workflow panic",
				"session_id", req.SessionID,
				"stage", state.WorkflowState,
				"panic", r)
			state.AddError("internal error")
			state.WorkflowState = StateComplete
			state.SynthesizedResponse = InternalErrorMessage
			metrics.WorkflowRequests.WithLabelValues("error").Inc()
			result = w.buildResult(state, start)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.workflowTimeout)
	defer cancel()

	w.log.Infow("Workflow started",
		"session_id", req.SessionID,
		"query_hash", guardrails.HashQuery(req.Message))

	// Rate limit runs before any stage
	if w.rateLimiter != nil {
		if err := w.rateLimiter.Allow(ctx, req.UserID); err != nil {
			metrics.GuardrailBlocks.WithLabelValues("rate_limit").Inc()
			metrics.WorkflowRequests.WithLabelValues("blocked").Inc()
			return w.block(state, start, err.Error()+". Please wait before sending more questions.")
		}
	}

	if blocked := w.stageGuard(state); blocked != nil {
		metrics.WorkflowRequests.WithLabelValues("blocked").Inc()
		return w.block(state, start, *blocked)
	}

	w.stageContext(state)
	w.stageIntent(state)
	w.stageRoute(state)
	w.stageExecute(ctx, state)
	w.stageSynthesize(state)

	state.WorkflowState = StateComplete
	state.ConversationHistory = append(state.ConversationHistory,
		conversation.NewAssistantMessage(state.SynthesizedResponse))

	metrics.WorkflowRequests.WithLabelValues("complete").Inc()
	metrics.WorkflowDuration.WithLabelValues(string(state.PrimaryIntent)).
		Observe(time.Since(start).Seconds())

	result = w.buildResult(state, start)

	if w.audit != nil {
		w.audit.Record(req.SessionID, req.UserID, req.Message,
			result.Response.AgentsUsed,
			len(result.Response.Message),
			result.Response.TotalTimeMs,
			nil)
	}

	w.log.Infow("Workflow complete",
		"session_id", req.SessionID,
		"intent", state.PrimaryIntent,
		"agents", len(state.SelectedAgents),
		"total_ms", result.Response.TotalTimeMs)

	return result
}

// stageGuard validates input and scans for PII. A non-nil return is the
// user-facing rejection message.
func (w *Workflow) stageGuard(state *State) *string {
	defer w.observeStage("guard")()

	if err := w.validator.ValidateQuery(state.UserInput); err != nil {
		state.AddError(err.Error())
		metrics.GuardrailBlocks.WithLabelValues("validation").Inc()
		msg := rejectionMessage(err)
		return &msg
	}

	if found, kinds := w.pii.Detect(state.UserInput); found {
		state.PIIDetected = true
		state.AddError("PII detected in input")
		metrics.GuardrailBlocks.WithLabelValues("pii").Inc()
		msg := w.pii.Warning(kinds)
		return &msg
	}

	state.InputValidated = true
	state.WorkflowState = StateGuarded
	return nil
}

func (w *Workflow) stageContext(state *State) {
	defer w.observeStage("context")()

	state.ConversationHistory = append(state.ConversationHistory,
		conversation.NewUserMessage(state.UserInput))

	trimmed, summary := w.conversation.TrimHistory(state.ConversationHistory)
	state.ConversationHistory = trimmed
	state.ConversationSummary = summary
	state.ConversationContext = w.conversation.FormatForPrompt(trimmed, summary)

	state.WorkflowState = StateContextPrepared
}

func (w *Workflow) stageIntent(state *State) {
	defer w.observeStage("intent")()

	scores := w.classifier.DetectIntents(state.UserInput)
	state.DetectedIntents = make([]Intent, 0, len(scores))
	for _, s := range scores {
		state.DetectedIntents = append(state.DetectedIntents, s.Intent)
	}
	state.PrimaryIntent = w.classifier.PrimaryIntent(scores)
	state.ConfidenceScore = w.classifier.ConfidenceScore(scores, state.UserInput)
	state.ExtractedTickers = w.classifier.ExtractTickers(state.UserInput)
	state.ExtractedAmounts = w.classifier.ExtractAmounts(state.UserInput)
	state.ExtractedTimeframe = w.classifier.ExtractTimeframe(state.UserInput)

	metrics.IntentDetections.WithLabelValues(string(state.PrimaryIntent)).Inc()

	state.WorkflowState = StateIntentDetected

	w.log.Infow("Intents detected",
		"session_id", state.SessionID,
		"intents", state.IntentStrings(),
		"confidence", state.ConfidenceScore,
		"tickers", state.ExtractedTickers)
}

func (w *Workflow) stageRoute(state *State) {
	defer w.observeStage("route")()

	scores := make([]IntentScore, 0, len(state.DetectedIntents))
	for _, intent := range state.DetectedIntents {
		scores = append(scores, IntentScore{Intent: intent})
	}

	decision := w.router.Route(scores)
	state.SelectedAgents = decision.Agents
	state.RoutingRationale = decision.Reasoning

	state.WorkflowState = StateRouted
}

func (w *Workflow) stageExecute(ctx context.Context, state *State) {
	defer w.observeStage("execute")()

	execCtx := ExecContext{
		Conversation: state.ConversationContext,
		Tickers:      state.ExtractedTickers,
		Amounts:      state.ExtractedAmounts,
		Timeframe:    state.ExtractedTimeframe,
	}

	var execs []AgentExecution
	if w.router.Strategy(state.SelectedAgents) == StrategyParallel {
		execs = w.executor.ExecuteParallel(ctx, state.SelectedAgents, state.UserInput, execCtx)
	} else {
		execs = w.executor.ExecuteSequential(ctx, state.SelectedAgents, state.UserInput, execCtx, true)
	}

	for _, exec := range execs {
		state.AddExecution(exec)
		metrics.AgentCalls.WithLabelValues(string(exec.AgentID), exec.Status).Inc()
		metrics.AgentLatency.WithLabelValues(string(exec.AgentID)).
			Observe(exec.ExecutionTimeMs / 1000.0)
		if exec.Output != nil && exec.Output.TokensUsed > 0 {
			metrics.AgentTokens.WithLabelValues(string(exec.AgentID)).
				Add(float64(exec.Output.TokensUsed))
		}
	}

	state.WorkflowState = StateExecuted
}

func (w *Workflow) stageSynthesize(state *State) {
	defer w.observeStage("synthesize")()

	w.synthesizer.Synthesize(state)
	if state.SynthesizedResponse == RedactionNotice {
		metrics.OutputRedactions.Inc()
	}

	state.WorkflowState = StateSynthesized
}

// block finishes the workflow in the terminal blocked state
func (w *Workflow) block(state *State, start time.Time, message string) *Result {
	state.WorkflowState = StateBlocked
	state.SynthesizedResponse = message
	state.ResponseConfidence = 0

	w.log.Warnw("Workflow blocked",
		"session_id", state.SessionID,
		"errors", state.ErrorMessages)

	result := w.buildResult(state, start)

	if w.audit != nil {
		w.audit.Record(state.SessionID, state.UserID, state.UserInput,
			nil, len(message), result.Response.TotalTimeMs,
			errors.Wrap(errors.ErrWorkflowBlocked, "guardrail violation"))
	}

	return result
}

func (w *Workflow) buildResult(state *State, start time.Time) *Result {
	agentsUsed := make([]string, 0, len(state.AgentExecutions))
	for _, exec := range state.AgentExecutions {
		if exec.Status == StatusSuccess {
			agentsUsed = append(agentsUsed, string(exec.AgentID))
		}
	}

	metadata := map[string]interface{}{
		"workflow_state":   string(state.WorkflowState),
		"detected_intents": state.IntentStrings(),
		"pii_detected":     state.PIIDetected,
	}
	if len(state.KeyInsights) > 0 {
		metadata["key_insights"] = state.KeyInsights
	}
	if len(state.Recommendations) > 0 {
		metadata["recommendations"] = state.Recommendations
	}
	if state.RoutingRationale != "" {
		metadata["routing_rationale"] = state.RoutingRationale
	}

	intent := state.PrimaryIntent
	if intent == "" {
		intent = IntentUnknown
	}

	return &Result{
		Response: &Response{
			SessionID:      state.SessionID,
			Message:        state.SynthesizedResponse,
			Citations:      state.Citations,
			Confidence:     state.ResponseConfidence,
			Intent:         string(intent),
			AgentsUsed:     agentsUsed,
			ExecutionTimes: state.ExecutionTimes,
			TotalTimeMs:    float64(time.Since(start).Microseconds()) / 1000.0,
			Metadata:       metadata,
		},
		State:   state,
		History: state.ConversationHistory,
	}
}

func (w *Workflow) observeStage(stage string) func() {
	start := time.Now()
	return func() {
		metrics.WorkflowStageDuration.WithLabelValues(stage).
			Observe(time.Since(start).Seconds())
	}
}

// rejectionMessage converts guardrail sentinels into actionable text
func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, errors.ErrQueryTooShort):
		return "Your message is too short. Please ask a complete question."
	case errors.Is(err, errors.ErrQueryTooLong):
		return "Your message is too long. Please shorten it and try again."
	case errors.Is(err, errors.ErrDisallowedPattern):
		return "Your message contains characters or patterns that cannot be processed. " +
			"Please rephrase using plain language."
	default:
		return "Your message could not be processed. Please rephrase and try again."
	}
}
