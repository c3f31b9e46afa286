package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fincoach/internal/agents"
	"fincoach/pkg/logger"
)

// ExecContext carries entities extracted during intent detection plus
// the formatted conversation history into agent calls
type ExecContext struct {
	Conversation string
	Tickers      []string
	Amounts      []float64
	Timeframe    string

	// PriorOutputs holds earlier agents' answers during sequential
	// execution with shared outputs, in execution order
	PriorOutputs []PriorOutput
}

// PriorOutput is one earlier agent's answer passed to later agents
type PriorOutput struct {
	AgentID agents.AgentID
	Text    string
}

// Executor runs selected agents with per-agent timeouts and failure
// isolation. One agent failing never aborts its siblings or the request.
type Executor struct {
	registry     *agents.Registry
	agentTimeout time.Duration
	maxParallel  int
	log          *logger.Logger
}

// NewExecutor creates an executor
func NewExecutor(registry *agents.Registry, agentTimeout time.Duration, maxParallel int) *Executor {
	if agentTimeout <= 0 {
		agentTimeout = 30 * time.Second
	}
	if maxParallel <= 0 {
		maxParallel = 3
	}
	return &Executor{
		registry:     registry,
		agentTimeout: agentTimeout,
		maxParallel:  maxParallel,
		log:          logger.Get().With("component", "executor"),
	}
}

// ExecuteParallel fans out over all selected agents concurrently and
// waits for every branch to finish. Results come back in the order the
// agents were selected. Agents beyond the parallel cap are recorded as
// skipped rather than silently dropped.
func (e *Executor) ExecuteParallel(ctx context.Context, ids []agents.AgentID, message string, execCtx ExecContext) []AgentExecution {
	running := ids
	var skipped []agents.AgentID
	if len(ids) > e.maxParallel {
		running = ids[:e.maxParallel]
		skipped = ids[e.maxParallel:]
	}

	results := make([]AgentExecution, len(running))
	var wg sync.WaitGroup

	for i, id := range running {
		wg.Add(1)
		go func(i int, id agents.AgentID) {
			defer wg.Done()
			results[i] = e.executeOne(ctx, id, message, execCtx)
		}(i, id)
	}

	wg.Wait()

	for _, id := range skipped {
		e.log.Warnw("Agent skipped, parallel cap reached", "agent", id, "cap", e.maxParallel)
		results = append(results, AgentExecution{
			AgentID:      id,
			Status:       StatusSkipped,
			ErrorMessage: fmt.Sprintf("skipped: parallel agent cap (%d) reached", e.maxParallel),
		})
	}

	return results
}

// ExecuteSequential runs agents one after another. With sharedOutputs
// each agent sees the answers produced before it.
func (e *Executor) ExecuteSequential(ctx context.Context, ids []agents.AgentID, message string, execCtx ExecContext, sharedOutputs bool) []AgentExecution {
	results := make([]AgentExecution, 0, len(ids))

	for _, id := range ids {
		exec := e.executeOne(ctx, id, message, execCtx)
		results = append(results, exec)

		if sharedOutputs && exec.Status == StatusSuccess && exec.Output != nil {
			execCtx.PriorOutputs = append(execCtx.PriorOutputs,
				PriorOutput{AgentID: id, Text: exec.Output.AnswerText})
		}
	}

	return results
}

// executeOne wraps a single agent call with timing, timeout and panic
// recovery
func (e *Executor) executeOne(ctx context.Context, id agents.AgentID, message string, execCtx ExecContext) (exec AgentExecution) {
	start := time.Now()
	exec.AgentID = id

	defer func() {
		exec.ExecutionTimeMs = float64(time.Since(start).Microseconds()) / 1000.0
		if r := recover(); r != nil {
			e.log.Errorw("Agent panicked", "agent", id, "panic", r)
			exec.Status = StatusError
			exec.Output = nil
			exec.ErrorMessage = fmt.Sprintf("agent %s failed: internal error", id)
		}
	}()

	agent, ok := e.registry.Get(id)
	if !ok {
		exec.Status = StatusError
		exec.ErrorMessage = fmt.Sprintf("agent %s is not registered", id)
		return exec
	}

	agentCtx, cancel := context.WithTimeout(ctx, e.agentTimeout)
	defer cancel()

	output, err := agent.Execute(agentCtx, message, e.buildContext(execCtx, id))
	if err != nil {
		exec.Status = StatusError
		if agentCtx.Err() == context.DeadlineExceeded {
			exec.ErrorMessage = fmt.Sprintf("agent %s timed out after %s", id, e.agentTimeout)
		} else {
			exec.ErrorMessage = fmt.Sprintf("agent %s failed: %v", id, err)
		}
		e.log.Warnw("Agent execution failed", "agent", id, "error", exec.ErrorMessage)
		return exec
	}

	exec.Status = StatusSuccess
	exec.Output = output

	e.log.Infow("Agent completed",
		"agent", id,
		"confidence", output.Confidence,
		"citations", len(output.Citations))

	return exec
}

// buildContext renders conversation history, extracted entities and any
// prior outputs into the context string agents receive
func (e *Executor) buildContext(execCtx ExecContext, current agents.AgentID) string {
	var parts []string

	if execCtx.Conversation != "" {
		parts = append(parts, execCtx.Conversation)
	}
	if len(execCtx.Tickers) > 0 {
		parts = append(parts, "[Context: Tickers: "+strings.Join(execCtx.Tickers, ", ")+"]")
	}
	if len(execCtx.Amounts) > 0 {
		amounts := make([]string, 0, len(execCtx.Amounts))
		for _, a := range execCtx.Amounts {
			amounts = append(amounts, fmt.Sprintf("$%.2f", a))
		}
		parts = append(parts, "[Context: Amounts: "+strings.Join(amounts, ", ")+"]")
	}
	if execCtx.Timeframe != "" {
		parts = append(parts, "[Context: Timeframe: "+execCtx.Timeframe+"]")
	}

	for _, prior := range execCtx.PriorOutputs {
		if prior.AgentID == current {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Output from %s: %s]", prior.AgentID, prior.Text))
	}

	return strings.Join(parts, "\n")
}
