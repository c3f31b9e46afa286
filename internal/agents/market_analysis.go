package agents

import (
	"context"
	"fmt"
	"strings"

	"fincoach/internal/marketdata"
	"fincoach/pkg/logger"
)

// MarketAnalysis reports current quotes for the tickers mentioned in
// the message
type MarketAnalysis struct {
	quotes marketdata.Provider
	log    *logger.Logger
}

// NewMarketAnalysis creates the market analysis agent
func NewMarketAnalysis(quotes marketdata.Provider) *MarketAnalysis {
	return &MarketAnalysis{
		quotes: quotes,
		log:    logger.Get().With("agent", string(AgentMarketAnalysis)),
	}
}

func (a *MarketAnalysis) ID() AgentID { return AgentMarketAnalysis }

func (a *MarketAnalysis) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	tickers := messageTickers(message)
	if len(tickers) == 0 {
		return &Output{
			AnswerText: "I couldn't find stock tickers in your message. " +
				"Please specify which stocks you'd like to analyze, for example AAPL or GOOGL.",
			Confidence: 0.3,
			StructuredData: map[string]interface{}{
				"error": "no_tickers",
			},
		}, nil
	}

	results := marketdata.GetQuotes(ctx, a.quotes, tickers)

	var quoted []marketdata.QuoteResult
	var failed []marketdata.QuoteResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		} else {
			quoted = append(quoted, r)
		}
	}

	if len(quoted) == 0 {
		return nil, fmt.Errorf("no market data available for %s", strings.Join(tickers, ", "))
	}

	var text string
	if len(quoted) == 1 && len(failed) == 0 {
		text = renderQuote(quoted[0].Quote)
	} else {
		text = renderComparison(quoted, failed)
	}

	structured := map[string]interface{}{
		"tickers":          tickers,
		"quotes_retrieved": len(quoted),
	}

	return &Output{
		AnswerText:     text,
		Confidence:     0.9,
		StructuredData: structured,
	}, nil
}

func renderQuote(q *marketdata.Quote) string {
	direction := "flat on the day"
	switch q.Direction() {
	case "up":
		direction = fmt.Sprintf("**UP** %.2f%% today", q.ChangePct)
	case "down":
		direction = fmt.Sprintf("**DOWN** %.2f%% today", -q.ChangePct)
	}

	return fmt.Sprintf(`## Market Quote - %s

**Current Price:** $%s
**Change:** %s (%+.2f%%)
**Currency:** %s
**Updated:** %s

### Analysis
The stock is %s.

**Next Steps:**
- Check historical trends for context
- Review company fundamentals
- Analyze volume and trading patterns`,
		q.Ticker,
		q.Price.StringFixed(2),
		q.Change.StringFixed(2), q.ChangePct,
		q.Currency,
		q.Timestamp.Format("2006-01-02 15:04:05 MST"),
		direction)
}

func renderComparison(quoted, failed []marketdata.QuoteResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Market Comparison\n\n**Quotes Retrieved:** %d/%d\n\n",
		len(quoted), len(quoted)+len(failed))

	for _, r := range quoted {
		fmt.Fprintf(&b, "- **%s**: $%s (%+.2f%%)\n",
			r.Quote.Ticker, r.Quote.Price.StringFixed(2), r.Quote.ChangePct)
	}

	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n**Failed Retrievals:** %d\n", len(failed))
		for _, r := range failed {
			fmt.Fprintf(&b, "- %s: %v\n", r.Ticker, r.Err)
		}
	}

	return strings.TrimSpace(b.String())
}
