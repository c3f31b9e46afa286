package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fincoach/pkg/errors"
)

type referencePrice struct {
	price     float64
	prevClose float64
}

// referencePrices is a fixed quote table for development and for
// degraded operation when no live feed is configured
var referencePrices = map[string]referencePrice{
	"AAPL":  {234.50, 233.05},
	"MSFT":  {432.10, 430.65},
	"GOOGL": {195.80, 194.20},
	"NVDA":  {875.30, 872.10},
	"JPM":   {198.45, 197.30},
	"JNJ":   {156.20, 155.80},
	"BND":   {82.15, 82.10},
	"AGG":   {95.40, 95.35},
	"PYPL":  {56.64, 55.90},
	"TLT":   {92.30, 92.15},
	"XOM":   {108.50, 107.20},
	"CVX":   {158.40, 157.10},
}

// StaticProvider serves quotes from the reference table. Deterministic,
// no network.
type StaticProvider struct {
	now func() time.Time
}

// NewStaticProvider creates a static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) GetQuote(_ context.Context, ticker string) (*Quote, error) {
	upper := strings.ToUpper(ticker)
	ref, ok := referencePrices[upper]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no quote data for ticker %s", upper)
	}

	price := decimal.NewFromFloat(ref.price)
	change := price.Sub(decimal.NewFromFloat(ref.prevClose))
	changePct, _ := change.Div(decimal.NewFromFloat(ref.prevClose)).Mul(decimal.NewFromInt(100)).Float64()

	return &Quote{
		Ticker:    upper,
		Price:     price,
		Currency:  "USD",
		Change:    change,
		ChangePct: changePct,
		Timestamp: p.now().UTC(),
	}, nil
}
