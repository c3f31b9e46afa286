package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fincoach/internal/marketdata"
	"fincoach/pkg/logger"
)

// Sentiment labels for a single news item or an aggregate
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// newsItem is a headline synthesized from price movement
type newsItem struct {
	Ticker    string
	Headline  string
	Summary   string
	Sentiment string
}

// NewsSynthesizer turns recent price movement into a sentiment digest
type NewsSynthesizer struct {
	quotes marketdata.Provider
	log    *logger.Logger
}

// NewNewsSynthesizer creates the news synthesis agent
func NewNewsSynthesizer(quotes marketdata.Provider) *NewsSynthesizer {
	return &NewsSynthesizer{
		quotes: quotes,
		log:    logger.Get().With("agent", string(AgentNewsSynthesizer)),
	}
}

func (a *NewsSynthesizer) ID() AgentID { return AgentNewsSynthesizer }

func (a *NewsSynthesizer) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	tickers := messageTickers(message)
	if len(tickers) == 0 {
		return &Output{
			AnswerText: "I'd be happy to summarize market news for you. " +
				"Please mention the ticker symbols you're interested in, for example: " +
				"\"What's the latest on AAPL and MSFT?\"",
			Confidence:     0.3,
			StructuredData: map[string]interface{}{"error": "no_tickers"},
		}, nil
	}

	results := marketdata.GetQuotes(ctx, a.quotes, tickers)

	var items []newsItem
	for _, r := range results {
		if r.Err != nil {
			a.log.Debugw("No quote for news synthesis", "ticker", r.Ticker)
			continue
		}
		items = append(items, itemFromQuote(r.Quote))
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no market data available for %s", strings.Join(tickers, ", "))
	}

	overall := aggregateSentiment(items)

	return &Output{
		AnswerText: renderNewsDigest(items, overall),
		Confidence: 0.7,
		StructuredData: map[string]interface{}{
			"tickers":           tickers,
			"items_count":       len(items),
			"overall_sentiment": overall,
		},
	}, nil
}

func itemFromQuote(q *marketdata.Quote) newsItem {
	sentiment := SentimentNeutral
	verb := "holds steady"
	switch q.Direction() {
	case "up":
		sentiment = SentimentBullish
		verb = "climbs"
	case "down":
		sentiment = SentimentBearish
		verb = "slips"
	}

	changePct := q.ChangePct
	if changePct < 0 {
		changePct = -changePct
	}

	headline := fmt.Sprintf("%s %s %.2f%% to $%s", q.Ticker, verb, changePct, q.Price.StringFixed(2))
	summary := fmt.Sprintf("%s moved %s%s (%.2f%%) in recent trading, closing at $%s.",
		q.Ticker, signPrefix(q.Change), q.Change.Abs().StringFixed(2), q.ChangePct, q.Price.StringFixed(2))

	return newsItem{
		Ticker:    q.Ticker,
		Headline:  headline,
		Summary:   summary,
		Sentiment: sentiment,
	}
}

func signPrefix(change decimal.Decimal) string {
	if change.Sign() < 0 {
		return "-$"
	}
	return "+$"
}

// aggregateSentiment labels the digest bullish or bearish only when a
// clear majority of items lean that way
func aggregateSentiment(items []newsItem) string {
	var bullish, bearish int
	for _, item := range items {
		switch item.Sentiment {
		case SentimentBullish:
			bullish++
		case SentimentBearish:
			bearish++
		}
	}

	total := len(items)
	if total == 0 {
		return SentimentNeutral
	}
	if float64(bullish)/float64(total) > 0.6 {
		return SentimentBullish
	}
	if float64(bearish)/float64(total) > 0.6 {
		return SentimentBearish
	}
	return SentimentNeutral
}

func renderNewsDigest(items []newsItem, overall string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Market News Digest\n\n")
	fmt.Fprintf(&b, "**Overall Sentiment:** %s\n\n", strings.ToUpper(overall))

	b.WriteString("### Headlines\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. **%s** [%s]\n   %s\n", i+1, item.Headline, item.Sentiment, item.Summary)
	}

	b.WriteString("\n### Takeaways\n")
	switch overall {
	case SentimentBullish:
		b.WriteString("- Most of your tracked tickers are trading higher\n")
		b.WriteString("- Positive momentum, but avoid chasing short-term moves\n")
	case SentimentBearish:
		b.WriteString("- Most of your tracked tickers are trading lower\n")
		b.WriteString("- Pullbacks are normal; focus on your long-term plan\n")
	default:
		b.WriteString("- Mixed signals across your tracked tickers\n")
		b.WriteString("- No clear direction; stay diversified\n")
	}
	b.WriteString("- Headlines summarize price action, not company fundamentals")

	return b.String()
}
