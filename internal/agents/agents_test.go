package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincoach/internal/adapters/ai"
	"fincoach/internal/adapters/config"
	"fincoach/internal/guardrails"
	"fincoach/internal/marketdata"
	"fincoach/internal/portfolio"
	"fincoach/internal/rag"
)

func testFinancialValidator() *guardrails.FinancialValidator {
	return guardrails.NewFinancialValidator(guardrails.NewInputValidator(config.GuardrailsConfig{
		MinQueryLength: 3,
		MaxQueryLength: 5000,
	}))
}

func newPortfolioAgent() *PortfolioAnalysis {
	return NewPortfolioAnalysis(marketdata.NewStaticProvider(), portfolio.NewCalculator(), testFinancialValidator())
}

type stubLLM struct {
	text    string
	err     error
	lastReq ai.CompletionRequest
}

func (s *stubLLM) Complete(_ context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &ai.CompletionResponse{Text: s.text, TokensUsed: 42, Model: "stub"}, nil
}

func (s *stubLLM) Model() string { return "stub" }

type stubRetriever struct {
	chunks       []*rag.Chunk
	err          error
	lastQuery    string
	lastCategory string
}

func (s *stubRetriever) Retrieve(_ context.Context, query, category string) ([]*rag.Chunk, error) {
	s.lastQuery = query
	s.lastCategory = category
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

type stubQuotes struct {
	quotes map[string]*marketdata.Quote
}

func (s *stubQuotes) GetQuote(_ context.Context, ticker string) (*marketdata.Quote, error) {
	q, ok := s.quotes[strings.ToUpper(ticker)]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", ticker)
	}
	return q, nil
}

func (s *stubQuotes) Name() string { return "stub" }

func testChunk(title, category, url string) *rag.Chunk {
	return &rag.Chunk{
		ID:           uuid.New(),
		ArticleTitle: title,
		Category:     category,
		Content:      "Diversification spreads risk across asset classes.",
		SourceURL:    url,
		Similarity:   0.82,
	}
}

func testQuote(ticker string, price, change float64) *marketdata.Quote {
	return &marketdata.Quote{
		Ticker:    ticker,
		Price:     decimal.NewFromFloat(price),
		Currency:  "USD",
		Change:    decimal.NewFromFloat(change),
		ChangePct: change / (price - change) * 100,
		Timestamp: time.Now(),
	}
}

func TestFinanceQAWithKnowledgeBase(t *testing.T) {
	retriever := &stubRetriever{chunks: []*rag.Chunk{
		testChunk("What is Diversification", "basics", "https://example.com/diversification"),
	}}
	llm := &stubLLM{text: "Diversification means spreading investments."}
	agent := NewFinanceQA(retriever, llm)

	out, err := agent.Execute(context.Background(), "What is diversification?", "")

	require.NoError(t, err)
	assert.Equal(t, "Diversification means spreading investments.", out.AnswerText)
	assert.InDelta(t, 0.85, out.Confidence, 0.001)
	require.Len(t, out.Citations, 1)
	assert.Equal(t, "https://example.com/diversification", out.Citations[0].SourceURL)
	assert.Equal(t, 42, out.TokensUsed)
	assert.Equal(t, 1, out.StructuredData["chunks_retrieved"])

	assert.Contains(t, llm.lastReq.System, "KNOWLEDGE BASE")
	assert.Contains(t, llm.lastReq.System, "What is Diversification")
	assert.Equal(t, "What is diversification?", llm.lastReq.Prompt)
}

func TestFinanceQADegradesWithoutRetrieval(t *testing.T) {
	retriever := &stubRetriever{err: fmt.Errorf("vector store down")}
	llm := &stubLLM{text: "An ETF is a pooled investment fund."}
	agent := NewFinanceQA(retriever, llm)

	out, err := agent.Execute(context.Background(), "What is an ETF?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.7, out.Confidence, 0.001)
	assert.Empty(t, out.Citations)
	assert.NotContains(t, llm.lastReq.System, "KNOWLEDGE BASE")
}

func TestFinanceQAAppendsConversationContext(t *testing.T) {
	retriever := &stubRetriever{}
	llm := &stubLLM{text: "ok"}
	agent := NewFinanceQA(retriever, llm)

	_, err := agent.Execute(context.Background(), "And bonds?", "User asked about stocks earlier.")

	require.NoError(t, err)
	assert.Contains(t, llm.lastReq.Prompt, "Previous conversation context:")
	assert.Contains(t, llm.lastReq.Prompt, "User asked about stocks earlier.")
}

func TestFinanceQAPropagatesModelError(t *testing.T) {
	agent := NewFinanceQA(&stubRetriever{}, &stubLLM{err: fmt.Errorf("model unavailable")})

	out, err := agent.Execute(context.Background(), "What is compounding?", "")

	require.Error(t, err)
	assert.Nil(t, out)
}

func TestTaxEducationUsesTaxCategory(t *testing.T) {
	retriever := &stubRetriever{chunks: []*rag.Chunk{
		testChunk("Capital Gains Basics", "tax", "https://example.com/capital-gains"),
	}}
	llm := &stubLLM{text: "Long-term gains get preferential rates."}
	agent := NewTaxEducation(retriever, llm)

	out, err := agent.Execute(context.Background(), "How are capital gains taxed?", "")

	require.NoError(t, err)
	assert.Equal(t, "tax", retriever.lastCategory)
	assert.InDelta(t, 0.85, out.Confidence, 0.001)
	assert.Equal(t, "tax", out.StructuredData["category"])
	assert.Equal(t, 1, out.StructuredData["citations_count"])
	assert.Contains(t, llm.lastReq.Prompt, "Educational Materials")
	assert.Contains(t, llm.lastReq.Prompt, "Capital Gains Basics")
}

func TestPortfolioAnalysisFromStatedHoldings(t *testing.T) {
	agent := newPortfolioAgent()

	out, err := agent.Execute(context.Background(),
		"I have $50,000 in AAPL and $30,000 in BND. How does my portfolio look?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.9, out.Confidence, 0.001)
	assert.Contains(t, out.AnswerText, "Portfolio Analysis Report")
	assert.Contains(t, out.AnswerText, "AAPL")
	assert.Contains(t, out.AnswerText, "BND")

	assert.InDelta(t, 80000.0, out.StructuredData["total_value"].(float64), 1.0)
	assert.Equal(t, 2, out.StructuredData["holdings_count"])
	assert.Equal(t, "AAPL", out.StructuredData["largest_position"])
	assert.InDelta(t, 62.5, out.StructuredData["largest_position_pct"].(float64), 0.1)
	assert.Equal(t, 2, out.StructuredData["priced_with_quotes"])
}

func TestPortfolioAnalysisUnknownTickerKeepsStatedValue(t *testing.T) {
	agent := newPortfolioAgent()

	out, err := agent.Execute(context.Background(), "I hold $10,000 in ZZZZZ", "")

	require.NoError(t, err)
	assert.InDelta(t, 10000.0, out.StructuredData["total_value"].(float64), 1.0)
	assert.Equal(t, 0, out.StructuredData["priced_with_quotes"])
}

func TestPortfolioAnalysisMissingHoldings(t *testing.T) {
	agent := newPortfolioAgent()

	out, err := agent.Execute(context.Background(), "Is my portfolio any good?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 0.001)
	assert.Equal(t, "missing_holdings", out.StructuredData["error"])
	assert.Contains(t, out.AnswerText, "holdings")
}

func TestMarketAnalysisSingleQuote(t *testing.T) {
	agent := NewMarketAnalysis(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "What is the price of AAPL?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.9, out.Confidence, 0.001)
	assert.Contains(t, out.AnswerText, "Market Quote - AAPL")
	assert.Contains(t, out.AnswerText, "UP")
	assert.Equal(t, 1, out.StructuredData["quotes_retrieved"])
}

func TestMarketAnalysisComparison(t *testing.T) {
	agent := NewMarketAnalysis(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "Compare AAPL and MSFT", "")

	require.NoError(t, err)
	assert.Contains(t, out.AnswerText, "Market Comparison")
	assert.Contains(t, out.AnswerText, "2/2")
	assert.Equal(t, 2, out.StructuredData["quotes_retrieved"])
}

func TestMarketAnalysisPartialFailure(t *testing.T) {
	agent := NewMarketAnalysis(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "Compare AAPL and ZZZZZ", "")

	require.NoError(t, err)
	assert.Contains(t, out.AnswerText, "Failed Retrievals")
	assert.Equal(t, 1, out.StructuredData["quotes_retrieved"])
}

func TestMarketAnalysisNoQuotes(t *testing.T) {
	agent := NewMarketAnalysis(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "Any thoughts on ZZZZZ?", "")

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "ZZZZZ")
}

func TestMarketAnalysisNoTickers(t *testing.T) {
	agent := NewMarketAnalysis(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "how is the market doing today?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 0.001)
	assert.Equal(t, "no_tickers", out.StructuredData["error"])
}

func TestGoalPlanningSolvesContribution(t *testing.T) {
	agent := NewGoalPlanning(testFinancialValidator())

	out, err := agent.Execute(context.Background(),
		"I have $50,000 and want to reach $100,000 in 5 years", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.85, out.Confidence, 0.001)
	assert.Contains(t, out.AnswerText, "Financial Goal Projection")
	assert.Contains(t, out.AnswerText, "$100,000.00")

	assert.InDelta(t, 100000.0, out.StructuredData["goal_amount"].(float64), 0.001)
	assert.InDelta(t, 50000.0, out.StructuredData["current_value"].(float64), 0.001)
	monthly := out.StructuredData["monthly_contribution"].(float64)
	assert.Greater(t, monthly, 0.0)
	assert.Less(t, monthly, 100000.0/60)
}

func TestGoalPlanningSingleAmountIsTarget(t *testing.T) {
	agent := NewGoalPlanning(testFinancialValidator())

	out, err := agent.Execute(context.Background(), "I want $200k in 10 years", "")

	require.NoError(t, err)
	assert.InDelta(t, 200000.0, out.StructuredData["goal_amount"].(float64), 0.001)
	assert.Zero(t, out.StructuredData["current_value"].(float64))
	assert.Contains(t, out.AnswerText, "Stocks: 85%")
}

func TestGoalPlanningDefaults(t *testing.T) {
	agent := NewGoalPlanning(testFinancialValidator())

	out, err := agent.Execute(context.Background(), "help me plan for retirement", "")

	require.NoError(t, err)
	assert.InDelta(t, 100000.0, out.StructuredData["goal_amount"].(float64), 0.001)
	assert.Contains(t, out.AnswerText, "5.0 years")
}

func TestNewsSynthesizerBullishDigest(t *testing.T) {
	agent := NewNewsSynthesizer(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "latest news about AAPL and MSFT", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.7, out.Confidence, 0.001)
	assert.Contains(t, out.AnswerText, "Market News Digest")
	assert.Contains(t, out.AnswerText, "BULLISH")
	assert.Equal(t, SentimentBullish, out.StructuredData["overall_sentiment"])
	assert.Equal(t, 2, out.StructuredData["items_count"])
}

func TestNewsSynthesizerBearishDigest(t *testing.T) {
	quotes := &stubQuotes{quotes: map[string]*marketdata.Quote{
		"AAPL": testQuote("AAPL", 220.00, -4.50),
		"MSFT": testQuote("MSFT", 410.00, -6.10),
	}}
	agent := NewNewsSynthesizer(quotes)

	out, err := agent.Execute(context.Background(), "what happened to AAPL and MSFT", "")

	require.NoError(t, err)
	assert.Equal(t, SentimentBearish, out.StructuredData["overall_sentiment"])
	assert.Contains(t, out.AnswerText, "trading lower")
}

func TestNewsSynthesizerMixedIsNeutral(t *testing.T) {
	quotes := &stubQuotes{quotes: map[string]*marketdata.Quote{
		"AAPL": testQuote("AAPL", 220.00, 2.50),
		"MSFT": testQuote("MSFT", 410.00, -6.10),
	}}
	agent := NewNewsSynthesizer(quotes)

	out, err := agent.Execute(context.Background(), "update on AAPL and MSFT", "")

	require.NoError(t, err)
	assert.Equal(t, SentimentNeutral, out.StructuredData["overall_sentiment"])
	assert.Contains(t, out.AnswerText, "Mixed signals")
}

func TestNewsSynthesizerNoTickers(t *testing.T) {
	agent := NewNewsSynthesizer(marketdata.NewStaticProvider())

	out, err := agent.Execute(context.Background(), "any interesting financial stories lately?", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 0.001)
	assert.Equal(t, "no_tickers", out.StructuredData["error"])
}

func TestNewsSynthesizerAllQuotesFailed(t *testing.T) {
	agent := NewNewsSynthesizer(&stubQuotes{})

	out, err := agent.Execute(context.Background(), "news on AAPL", "")

	require.Error(t, err)
	assert.Nil(t, out)
}

func TestPortfolioAnalysisRejectsExtremeConcentration(t *testing.T) {
	agent := newPortfolioAgent()

	out, err := agent.Execute(context.Background(),
		"I have $99,000 in AAPL and $1,000 in BND", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 0.001)
	assert.Equal(t, "invalid_portfolio", out.StructuredData["error"])
	assert.Contains(t, out.AnswerText, "concentration")
}

func TestGoalPlanningRejectsExcessiveTimeframe(t *testing.T) {
	agent := NewGoalPlanning(testFinancialValidator())

	out, err := agent.Execute(context.Background(), "I want $100,000 in 60 years", "")

	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Confidence, 0.001)
	assert.Equal(t, "invalid_goal", out.StructuredData["error"])
}

func TestGoalPlanningWarnsAmbitiousGrowth(t *testing.T) {
	agent := NewGoalPlanning(testFinancialValidator())

	out, err := agent.Execute(context.Background(),
		"I have $1,000 and want $100,000 in 2 years", "")

	require.NoError(t, err)
	assert.Contains(t, out.AnswerText, "Validation Warnings")
	assert.Contains(t, out.AnswerText, "annual growth")
}
