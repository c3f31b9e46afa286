package orchestration

import (
	"context"
	"strings"
	"time"

	"fincoach/internal/adapters/ai"
	"fincoach/pkg/logger"
)

const classifierSystemPrompt = `You classify financial questions into intents.
Valid intents: education_question, tax_question, portfolio_analysis, market_analysis, news_analysis, goal_planning, investment_plan.
Reply with up to three comma-separated intents, most relevant first. Reply with exactly one word per intent and nothing else.`

// LLMClassifier asks the model to classify intents and falls back to
// keyword matching whenever the model is unavailable or replies with
// something that does not parse. Entity extraction and confidence
// always come from the keyword classifier, which is deterministic.
type LLMClassifier struct {
	client   ai.CompletionClient
	fallback *Classifier
	timeout  time.Duration
	log      *logger.Logger
}

func NewLLMClassifier(client ai.CompletionClient, fallback *Classifier) *LLMClassifier {
	return &LLMClassifier{
		client:   client,
		fallback: fallback,
		timeout:  5 * time.Second,
		log:      logger.Get().With("component", "llm_classifier"),
	}
}

func (c *LLMClassifier) DetectIntents(text string) []IntentScore {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	resp, err := c.client.Complete(ctx, ai.CompletionRequest{
		System:      classifierSystemPrompt,
		Prompt:      text,
		Temperature: 0.0,
		MaxTokens:   32,
	})
	if err != nil {
		c.log.Warnw("LLM classification failed, falling back to keywords", "error", err)
		return c.fallback.DetectIntents(text)
	}

	scores := parseIntentList(resp.Text)
	if len(scores) == 0 {
		c.log.Warnw("Unparseable LLM classification, falling back to keywords",
			"reply", truncateReply(resp.Text))
		return c.fallback.DetectIntents(text)
	}
	return scores
}

func (c *LLMClassifier) PrimaryIntent(scores []IntentScore) Intent {
	return c.fallback.PrimaryIntent(scores)
}

func (c *LLMClassifier) ExtractTickers(text string) []string {
	return c.fallback.ExtractTickers(text)
}

func (c *LLMClassifier) ExtractAmounts(text string) []float64 {
	return c.fallback.ExtractAmounts(text)
}

func (c *LLMClassifier) ExtractTimeframe(text string) string {
	return c.fallback.ExtractTimeframe(text)
}

func (c *LLMClassifier) ConfidenceScore(scores []IntentScore, text string) float64 {
	return c.fallback.ConfidenceScore(scores, text)
}

// parseIntentList accepts only known intent names, preserving model
// order with descending synthetic scores so PrimaryIntent picks the
// first one
func parseIntentList(reply string) []IntentScore {
	valid := make(map[Intent]bool, len(intentPriority))
	for _, intent := range intentPriority {
		valid[intent] = true
	}

	var scores []IntentScore
	seen := make(map[Intent]bool)
	for _, part := range strings.Split(reply, ",") {
		candidate := Intent(strings.ToLower(strings.TrimSpace(part)))
		if !valid[candidate] || seen[candidate] {
			continue
		}
		seen[candidate] = true
		scores = append(scores, IntentScore{
			Intent: candidate,
			Score:  maxDetectedIntents - len(scores),
		})
		if len(scores) == maxDetectedIntents {
			break
		}
	}
	return scores
}

func truncateReply(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
