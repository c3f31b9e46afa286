package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"fincoach/pkg/logger"
)

// Risk levels derived from asset distribution and concentration
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskUnknown  = "unknown"
)

// assetClasses maps well-known tickers onto coarse asset classes.
// Unknown tickers fall into "other".
var assetClasses = map[string]string{
	"AAPL": "large_cap", "MSFT": "large_cap", "GOOGL": "large_cap",
	"AMZN": "large_cap", "NVDA": "large_cap", "TSLA": "large_cap",
	"JPM": "large_cap", "JNJ": "large_cap", "XOM": "large_cap",
	"LMND": "small_cap", "SNOW": "small_cap",
	"BND": "bonds", "AGG": "bonds", "TLT": "bonds",
	"SPY": "large_cap_etf", "QQQ": "tech_etf", "VTI": "total_market_etf",
}

// Holding is one position in a portfolio
type Holding struct {
	Ticker       string
	Quantity     decimal.Decimal
	CurrentPrice decimal.Decimal
	CostBasis    decimal.Decimal
}

// Value returns quantity times current price
func (h Holding) Value() decimal.Decimal {
	return h.Quantity.Mul(h.CurrentPrice)
}

// Position is one row of the allocation breakdown
type Position struct {
	Ticker        string
	Quantity      decimal.Decimal
	CurrentPrice  decimal.Decimal
	Value         decimal.Decimal
	AllocationPct float64
	GainLoss      decimal.Decimal
}

// Metrics summarizes a portfolio
type Metrics struct {
	TotalValue           decimal.Decimal
	TotalCost            decimal.Decimal
	TotalGainLoss        decimal.Decimal
	TotalReturnPct       float64
	HoldingsCount        int
	Allocation           []Position
	DiversificationScore float64
	AssetDistribution    map[string]float64
	RiskLevel            string
	LargestPosition      string
	LargestPositionPct   float64
}

// Trade is one rebalancing step
type Trade struct {
	Ticker   string
	Action   string
	Amount   decimal.Decimal
	DriftPct float64
}

// RebalancePlan lists trades needed to move toward a target allocation
type RebalancePlan struct {
	CurrentAllocation map[string]float64
	TargetAllocation  map[string]float64
	Trades            []Trade
	Urgency           string
	MaxDriftPct       float64
}

// Calculator computes portfolio metrics
type Calculator struct {
	log *logger.Logger
}

// NewCalculator creates a calculator
func NewCalculator() *Calculator {
	return &Calculator{
		log: logger.Get().With("component", "portfolio_calculator"),
	}
}

// CalculateMetrics computes value, allocation, diversification and risk
// for a set of holdings
func (c *Calculator) CalculateMetrics(holdings []Holding) Metrics {
	if len(holdings) == 0 {
		return Metrics{RiskLevel: RiskUnknown, LargestPosition: "N/A", AssetDistribution: map[string]float64{}}
	}

	totalValue := decimal.Zero
	totalCost := decimal.Zero
	hasCostBasis := false
	for _, h := range holdings {
		totalValue = totalValue.Add(h.Value())
		totalCost = totalCost.Add(h.Quantity.Mul(h.CostBasis))
		if !h.CostBasis.IsZero() {
			hasCostBasis = true
		}
	}
	if !hasCostBasis {
		totalCost = totalValue
	}

	gainLoss := totalValue.Sub(totalCost)
	returnPct := 0.0
	if totalCost.IsPositive() {
		returnPct, _ = gainLoss.Div(totalCost).Mul(decimal.NewFromInt(100)).Float64()
	}

	allocation := make([]Position, 0, len(holdings))
	largestTicker := holdings[0].Ticker
	largestPct := 0.0

	for _, h := range holdings {
		value := h.Value()
		pct := 0.0
		if totalValue.IsPositive() {
			pct, _ = value.Div(totalValue).Mul(decimal.NewFromInt(100)).Float64()
		}

		cost := h.Quantity.Mul(h.CostBasis)
		if !hasCostBasis {
			cost = value
		}

		allocation = append(allocation, Position{
			Ticker:        h.Ticker,
			Quantity:      h.Quantity,
			CurrentPrice:  h.CurrentPrice,
			Value:         value,
			AllocationPct: pct,
			GainLoss:      value.Sub(cost),
		})

		if pct > largestPct {
			largestPct = pct
			largestTicker = h.Ticker
		}
	}

	sort.SliceStable(allocation, func(i, j int) bool {
		return allocation[i].AllocationPct > allocation[j].AllocationPct
	})

	diversification := diversificationScore(allocation)
	assetDist := c.assetDistribution(holdings, totalValue)
	risk := riskLevel(assetDist, diversification)

	c.log.Debugw("Portfolio metrics calculated",
		"total_value", totalValue.StringFixed(2),
		"holdings", len(holdings),
		"risk", risk)

	return Metrics{
		TotalValue:           totalValue,
		TotalCost:            totalCost,
		TotalGainLoss:        gainLoss,
		TotalReturnPct:       returnPct,
		HoldingsCount:        len(holdings),
		Allocation:           allocation,
		DiversificationScore: diversification,
		AssetDistribution:    assetDist,
		RiskLevel:            risk,
		LargestPosition:      largestTicker,
		LargestPositionPct:   largestPct,
	}
}

// CalculateRebalancing produces trades that move the portfolio toward
// the target per-ticker allocation. Drifts of 2% or less are ignored.
func (c *Calculator) CalculateRebalancing(holdings []Holding, target map[string]float64) RebalancePlan {
	metrics := c.CalculateMetrics(holdings)

	current := make(map[string]float64, len(metrics.Allocation))
	for _, p := range metrics.Allocation {
		current[p.Ticker] = p.AllocationPct
	}

	tickers := make([]string, 0, len(target))
	for ticker := range target {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var trades []Trade
	maxDrift := 0.0

	for _, ticker := range tickers {
		drift := target[ticker] - current[ticker]
		absDrift := drift
		if absDrift < 0 {
			absDrift = -absDrift
		}
		if absDrift > maxDrift {
			maxDrift = absDrift
		}
		if absDrift <= 2 {
			continue
		}

		action := "buy"
		if drift < 0 {
			action = "sell"
		}
		amount := metrics.TotalValue.Mul(decimal.NewFromFloat(absDrift)).Div(decimal.NewFromInt(100))

		trades = append(trades, Trade{
			Ticker:   ticker,
			Action:   action,
			Amount:   amount,
			DriftPct: absDrift,
		})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].DriftPct > trades[j].DriftPct
	})

	urgency := "low"
	switch {
	case maxDrift > 10:
		urgency = "high"
	case maxDrift > 5:
		urgency = "medium"
	}

	return RebalancePlan{
		CurrentAllocation: current,
		TargetAllocation:  target,
		Trades:            trades,
		Urgency:           urgency,
		MaxDriftPct:       maxDrift,
	}
}

// diversificationScore maps the Herfindahl concentration index onto
// 0-100, where equal weighting across holdings scores 100 and a single
// position scores 0
func diversificationScore(allocation []Position) float64 {
	if len(allocation) <= 1 {
		return 0
	}

	herfindahl := 0.0
	for _, p := range allocation {
		frac := p.AllocationPct / 100
		herfindahl += frac * frac
	}

	minH := 1.0 / float64(len(allocation))
	score := (1 - herfindahl) / (1 - minH) * 100

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (c *Calculator) assetDistribution(holdings []Holding, totalValue decimal.Decimal) map[string]float64 {
	distribution := map[string]float64{
		"large_cap": 0, "small_cap": 0, "bonds": 0,
		"international": 0, "commodities": 0, "other": 0,
	}

	if !totalValue.IsPositive() {
		return distribution
	}

	for _, h := range holdings {
		class, ok := assetClasses[h.Ticker]
		if !ok {
			class = "other"
		}
		pct, _ := h.Value().Div(totalValue).Mul(decimal.NewFromInt(100)).Float64()
		distribution[class] += pct
	}

	return distribution
}

func riskLevel(assetDist map[string]float64, diversification float64) string {
	equityPct := assetDist["large_cap"] + assetDist["small_cap"] + assetDist["international"]

	switch {
	case diversification < 30:
		return RiskHigh
	case equityPct > 80:
		return RiskHigh
	case equityPct < 30:
		return RiskLow
	default:
		return RiskModerate
	}
}
