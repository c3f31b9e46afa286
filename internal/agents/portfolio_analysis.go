package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"fincoach/internal/guardrails"
	"fincoach/internal/marketdata"
	"fincoach/internal/portfolio"
	"fincoach/pkg/logger"
)

// PortfolioAnalysis reads holdings out of the message, prices them and
// reports allocation, diversification and risk
type PortfolioAnalysis struct {
	quotes     marketdata.Provider
	calculator *portfolio.Calculator
	validator  *guardrails.FinancialValidator
	log        *logger.Logger
}

// NewPortfolioAnalysis creates the portfolio analysis agent
func NewPortfolioAnalysis(quotes marketdata.Provider, calculator *portfolio.Calculator, validator *guardrails.FinancialValidator) *PortfolioAnalysis {
	return &PortfolioAnalysis{
		quotes:     quotes,
		calculator: calculator,
		validator:  validator,
		log:        logger.Get().With("agent", string(AgentPortfolioAnalysis)),
	}
}

func (a *PortfolioAnalysis) ID() AgentID { return AgentPortfolioAnalysis }

func (a *PortfolioAnalysis) Execute(ctx context.Context, message, convContext string) (*Output, error) {
	stated := messageHoldings(message)
	if len(stated) == 0 {
		return &Output{
			AnswerText: "I couldn't find portfolio holdings in your message. " +
				"Please tell me what you hold and how much, for example: " +
				"\"I have $50,000 in AAPL and $30,000 in BND\".",
			Confidence: 0.3,
			StructuredData: map[string]interface{}{
				"error": "missing_holdings",
			},
		}, nil
	}

	// A single stated holding is trivially 100% concentrated, full
	// portfolio validation only makes sense with two or more.
	var check guardrails.ValidationResult
	if len(stated) > 1 {
		decimals := make(map[string]decimal.Decimal, len(stated))
		for ticker, amount := range stated {
			decimals[ticker] = decimal.NewFromFloat(amount)
		}

		check = a.validator.ValidatePortfolio(decimals)
		if !check.Valid {
			return &Output{
				AnswerText: "I can't analyze that portfolio as stated:\n- " +
					strings.Join(check.Errors, "\n- "),
				Confidence: 0.3,
				StructuredData: map[string]interface{}{
					"error":  "invalid_portfolio",
					"issues": check.Errors,
				},
			}, nil
		}
	}

	holdings, priced := a.priceHoldings(ctx, stated)

	metrics := a.calculator.CalculateMetrics(holdings)

	text := a.renderAnalysis(metrics)
	if len(check.Warnings) > 0 {
		text += "\n\n### Validation Warnings\n- " + strings.Join(check.Warnings, "\n- ")
	}

	return &Output{
		AnswerText: text,
		Confidence: 0.9,
		StructuredData: map[string]interface{}{
			"total_value":      metricFloat(metrics.TotalValue),
			"holdings_count":   metrics.HoldingsCount,
			"diversification":  metrics.DiversificationScore,
			"risk_level":       metrics.RiskLevel,
			"largest_position": metrics.LargestPosition,
			"largest_position_pct": metrics.LargestPositionPct,
			"priced_with_quotes":   priced,
		},
	}, nil
}

// priceHoldings converts stated dollar amounts into share positions
// using live quotes. Tickers without a quote are kept as one "share"
// worth the stated amount so totals stay correct.
func (a *PortfolioAnalysis) priceHoldings(ctx context.Context, stated map[string]float64) ([]portfolio.Holding, int) {
	tickers := make([]string, 0, len(stated))
	for ticker := range stated {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	holdings := make([]portfolio.Holding, 0, len(tickers))
	priced := 0

	for _, ticker := range tickers {
		amount := decimal.NewFromFloat(stated[ticker])

		quote, err := a.quotes.GetQuote(ctx, ticker)
		if err != nil || !quote.Price.IsPositive() {
			a.log.Debugw("No quote, using stated value", "ticker", ticker)
			holdings = append(holdings, portfolio.Holding{
				Ticker:       ticker,
				Quantity:     decimal.NewFromInt(1),
				CurrentPrice: amount,
			})
			continue
		}

		priced++
		holdings = append(holdings, portfolio.Holding{
			Ticker:       ticker,
			Quantity:     amount.Div(quote.Price),
			CurrentPrice: quote.Price,
		})
	}

	return holdings, priced
}

func (a *PortfolioAnalysis) renderAnalysis(m portfolio.Metrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Portfolio Analysis Report\n\n")
	fmt.Fprintf(&b, "### Portfolio Overview\n")
	fmt.Fprintf(&b, "- **Total Value:** $%s\n", humanize.CommafWithDigits(metricFloat(m.TotalValue), 2))
	fmt.Fprintf(&b, "- **Holdings:** %d positions\n", m.HoldingsCount)
	fmt.Fprintf(&b, "- **Risk Level:** %s\n", strings.ToUpper(m.RiskLevel))

	b.WriteString("\n### Asset Allocation\n")
	for _, p := range m.Allocation {
		fmt.Fprintf(&b, "- **%s**: %.1f%% ($%s)\n",
			p.Ticker, p.AllocationPct, humanize.CommafWithDigits(metricFloat(p.Value), 2))
	}

	fmt.Fprintf(&b, "\n### Diversification Analysis\n")
	fmt.Fprintf(&b, "- **Diversification Score:** %.1f/100\n", m.DiversificationScore)
	fmt.Fprintf(&b, "- **Largest Position:** %s (%.1f%%)\n", m.LargestPosition, m.LargestPositionPct)

	switch {
	case m.DiversificationScore >= 70:
		b.WriteString("\nStatus: Well diversified across multiple positions.\n")
	case m.DiversificationScore >= 50:
		b.WriteString("\nStatus: Reasonable diversification, but could improve.\n")
	default:
		b.WriteString("\nStatus: Concentrated in few positions, elevated risk.\n")
	}

	b.WriteString("\n### Risk Assessment\n")
	switch m.RiskLevel {
	case portfolio.RiskHigh:
		b.WriteString("**HIGH RISK:** Portfolio is heavily weighted toward equities. " +
			"Consider diversifying into bonds or stable assets if risk-averse.\n")
	case portfolio.RiskModerate:
		b.WriteString("**MODERATE RISK:** Balanced portfolio suitable for medium-term investors.\n")
	case portfolio.RiskLow:
		b.WriteString("**LOW RISK:** Conservative portfolio with significant bond allocation.\n")
	}

	b.WriteString("\n### Recommendations\n")
	n := 1
	if m.LargestPositionPct > 50 {
		fmt.Fprintf(&b, "%d. **Reduce Concentration:** %s represents %.1f%% of the portfolio. "+
			"You should consider reducing it below 30%% for better diversification.\n",
			n, m.LargestPosition, m.LargestPositionPct)
		n++
	}
	if m.DiversificationScore < 50 {
		fmt.Fprintf(&b, "%d. **Increase Diversification:** You should add positions in different "+
			"asset classes or sectors to reduce risk.\n", n)
		n++
	}
	if n == 1 {
		b.WriteString("1. **Maintain Course:** Allocation looks reasonable. Review quarterly.\n")
	}

	return strings.TrimSpace(b.String())
}

func metricFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
