package orchestration

import (
	"fmt"
	"strings"

	"fincoach/internal/agents"
	"fincoach/internal/guardrails"
	"fincoach/pkg/logger"
)

// Confidence assigned when every selected agent failed
const allFailedConfidence = 0.2

// RedactionNotice replaces a synthesized answer that failed the output
// PII scan
const RedactionNotice = "The generated response was withheld because it contained " +
	"potentially sensitive personal information. Please rephrase your question " +
	"without including personal details."

var sectionNames = map[agents.AgentID]string{
	agents.AgentFinanceQA:         "Educational Content",
	agents.AgentPortfolioAnalysis: "Portfolio Analysis",
	agents.AgentMarketAnalysis:    "Market Data",
	agents.AgentGoalPlanning:      "Financial Projections",
	agents.AgentTaxEducation:      "Tax Information",
	agents.AgentNewsSynthesizer:   "Market News & Sentiment",
}

// Synthesizer merges agent outputs into the final user-facing message:
// sections, insights, citations, disclaimers, output-side PII scan.
type Synthesizer struct {
	pii         *guardrails.PIIDetector
	disclaimers *guardrails.DisclaimerManager
	log         *logger.Logger
	audit       *logger.Logger
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(pii *guardrails.PIIDetector, disclaimers *guardrails.DisclaimerManager) *Synthesizer {
	return &Synthesizer{
		pii:         pii,
		disclaimers: disclaimers,
		log:         logger.Get().With("component", "synthesizer"),
		audit:       logger.Audit(),
	}
}

// Synthesize fills the synthesis fields of the state from its agent
// executions
func (s *Synthesizer) Synthesize(state *State) {
	s.log.Infow("Synthesizing response", "executions", len(state.AgentExecutions))

	successes := state.SuccessfulExecutions()

	var text string
	switch {
	case len(successes) == 0:
		text = s.allFailedMessage(state)
		state.ResponseConfidence = allFailedConfidence
	case len(state.AgentExecutions) == 1:
		text = successes[0].Output.AnswerText
		state.ResponseConfidence = successes[0].Output.Confidence
	default:
		text = s.multiAgentText(state)
		state.ResponseConfidence = averageConfidence(successes)
	}

	if text == "" {
		text = "I was unable to generate a response for your query. " +
			"Please try rephrasing or provide more specific information."
	}

	state.ResponseStructure = s.buildStructure(state)
	state.KeyInsights = s.extractInsights(successes)
	state.Recommendations = s.extractRecommendations(successes)
	state.Citations = collectCitations(state, successes)

	text = s.disclaimers.Apply(text, string(state.PrimaryIntent))

	// Output-side PII scan: a leaking answer is replaced wholesale and
	// citations are withheld too, they could carry the same context
	if found, kinds := s.pii.Detect(text); found {
		s.audit.Warnw("PII detected in synthesized response",
			"session_id", state.SessionID,
			"pii_types", kinds,
			"redacted_response", s.pii.Redact(text))
		text = RedactionNotice
		state.Citations = nil
		state.KeyInsights = nil
		state.Recommendations = nil
		state.ResponseStructure = nil
	}

	state.SynthesizedResponse = text
}

// multiAgentText renders one labeled section per successful agent, in
// the router's agent order
func (s *Synthesizer) multiAgentText(state *State) string {
	var sections []string

	for _, id := range state.SelectedAgents {
		exec := state.ExecutionFor(id)
		if exec == nil || exec.Status != StatusSuccess || exec.Output == nil {
			continue
		}
		if exec.Output.AnswerText == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("**%s:**\n%s", sectionNames[id], exec.Output.AnswerText))
	}

	return strings.Join(sections, "\n\n")
}

// allFailedMessage names what went wrong instead of a generic apology
func (s *Synthesizer) allFailedMessage(state *State) string {
	var reasons []string
	for _, exec := range state.AgentExecutions {
		if exec.ErrorMessage != "" {
			reasons = append(reasons, "- "+exec.ErrorMessage)
		}
	}

	if len(reasons) == 0 {
		return "I was unable to process your request. Please try rephrasing your question."
	}

	return "I encountered errors while processing your request:\n" +
		strings.Join(reasons, "\n") +
		"\n\nPlease try rephrasing your question."
}

func (s *Synthesizer) buildStructure(state *State) map[string]string {
	structure := make(map[string]string)
	for _, id := range state.SelectedAgents {
		exec := state.ExecutionFor(id)
		if exec == nil || exec.Status != StatusSuccess || exec.Output == nil || exec.Output.AnswerText == "" {
			continue
		}
		structure[sectionNames[id]] = exec.Output.AnswerText
	}
	return structure
}

// extractInsights surfaces notable metrics from structured agent data
func (s *Synthesizer) extractInsights(successes []AgentExecution) []string {
	var insights []string

	for _, exec := range successes {
		data := exec.Output.StructuredData
		if data == nil {
			continue
		}

		if div, ok := toFloat(data["diversification"]); ok {
			insights = append(insights, fmt.Sprintf("Diversification score: %.0f/100", div))
		}
		if total, ok := toFloat(data["total_value"]); ok {
			insights = append(insights, fmt.Sprintf("Portfolio value: $%.2f", total))
		}
		if contribution, ok := toFloat(data["monthly_contribution"]); ok {
			insights = append(insights, fmt.Sprintf("Required monthly contribution: $%.2f", contribution))
		}
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

// extractRecommendations pulls the first recommendation-looking
// sentence from each successful answer
func (s *Synthesizer) extractRecommendations(successes []AgentExecution) []string {
	var recs []string

	for _, exec := range successes {
		lower := strings.ToLower(exec.Output.AnswerText)
		if !strings.Contains(lower, "recommend") && !strings.Contains(lower, "should") {
			continue
		}
		for _, sentence := range strings.Split(exec.Output.AnswerText, ".") {
			sl := strings.ToLower(sentence)
			if strings.Contains(sl, "recommend") || strings.Contains(sl, "should") {
				clean := strings.TrimSpace(sentence)
				if len(clean) > 10 {
					recs = append(recs, clean)
					break
				}
			}
		}
	}

	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}

func collectCitations(state *State, successes []AgentExecution) []agents.Citation {
	var citations []agents.Citation
	seen := make(map[string]struct{})

	for _, id := range state.SelectedAgents {
		exec := state.ExecutionFor(id)
		if exec == nil || exec.Status != StatusSuccess || exec.Output == nil {
			continue
		}
		for _, c := range exec.Output.Citations {
			key := c.SourceURL + "|" + c.Title
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			citations = append(citations, c)
		}
	}

	return citations
}

func averageConfidence(successes []AgentExecution) float64 {
	if len(successes) == 0 {
		return allFailedConfidence
	}
	var sum float64
	for _, exec := range successes {
		sum += exec.Output.Confidence
	}
	return sum / float64(len(successes))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
