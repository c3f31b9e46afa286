package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Workflow metrics
	WorkflowRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_workflow_requests_total",
			Help: "Total number of orchestration workflow runs",
		},
		[]string{"status"}, // status: complete|blocked|error
	)

	WorkflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fincoach_workflow_duration_seconds",
			Help:    "End-to-end workflow duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"intent"},
	)

	WorkflowStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fincoach_workflow_stage_duration_seconds",
			Help:    "Per-stage workflow duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"stage"},
	)

	// Guardrail metrics
	GuardrailBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_guardrail_blocks_total",
			Help: "Total requests blocked by guardrails",
		},
		[]string{"reason"}, // reason: validation|pii|rate_limit
	)

	OutputRedactions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fincoach_output_redactions_total",
			Help: "Total synthesized responses replaced by a redaction notice",
		},
	)

	// Intent metrics
	IntentDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_intent_detections_total",
			Help: "Total primary intent detections",
		},
		[]string{"intent"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_agent_calls_total",
			Help: "Total number of agent executions",
		},
		[]string{"agent", "status"}, // status: success|error|skipped
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fincoach_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent"},
	)

	// RAG metrics
	RetrievalQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_retrieval_queries_total",
			Help: "Total vector search retrievals",
		},
		[]string{"status"}, // status: success|error|empty
	)

	RetrievalLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fincoach_retrieval_latency_seconds",
			Help:    "Vector search latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	// Market data metrics
	QuoteLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincoach_quote_lookups_total",
			Help: "Total market data quote lookups",
		},
		[]string{"source"}, // source: cache|provider|error
	)
)

// Register registers all metrics with the default registry
func Register() {
	prometheus.MustRegister(
		WorkflowRequests,
		WorkflowDuration,
		WorkflowStageDuration,
		GuardrailBlocks,
		OutputRedactions,
		IntentDetections,
		AgentCalls,
		AgentLatency,
		AgentTokens,
		RetrievalQueries,
		RetrievalLatency,
		QuoteLookups,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
