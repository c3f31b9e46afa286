package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one price snapshot for a ticker
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	Change    decimal.Decimal `json:"change"`
	ChangePct float64         `json:"change_pct"`
	Timestamp time.Time       `json:"timestamp"`
}

// Direction reports whether the quote moved up, down or stayed flat
func (q *Quote) Direction() string {
	switch {
	case q.Change.IsPositive():
		return "up"
	case q.Change.IsNegative():
		return "down"
	default:
		return "flat"
	}
}

// Provider serves quotes for tickers
type Provider interface {
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
	Name() string
}

// QuoteResult pairs a ticker with its quote or failure, for batch
// lookups where partial results are still useful
type QuoteResult struct {
	Ticker string
	Quote  *Quote
	Err    error
}

// GetQuotes fetches multiple tickers from a provider, preserving order.
// Individual failures do not abort the batch.
func GetQuotes(ctx context.Context, p Provider, tickers []string) []QuoteResult {
	results := make([]QuoteResult, 0, len(tickers))
	for _, ticker := range tickers {
		quote, err := p.GetQuote(ctx, ticker)
		results = append(results, QuoteResult{Ticker: ticker, Quote: quote, Err: err})
	}
	return results
}
