package conversation

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincoach/internal/adapters/config"
)

func testManager() *Manager {
	return NewManager(config.ConversationConfig{
		MaxHistory:       20,
		SummaryThreshold: 10,
		SummaryLength:    500,
	})
}

func TestShouldSummarize(t *testing.T) {
	m := testManager()

	assert.False(t, m.ShouldSummarize(9))
	assert.False(t, m.ShouldSummarize(10))
	assert.True(t, m.ShouldSummarize(11))
	assert.True(t, m.ShouldSummarize(25))
}

// ShouldSummarize and TrimHistory agree at the threshold boundary: a
// history TrimHistory would not summarize is never reported as needing one
func TestShouldSummarize_MatchesTrimHistory(t *testing.T) {
	m := testManager()

	for _, n := range []int{10, 11} {
		messages := make([]Message, n)
		for i := range messages {
			messages[i] = NewUserMessage(fmt.Sprintf("message %d", i))
		}

		_, summary := m.TrimHistory(messages)
		assert.Equal(t, summary != nil, m.ShouldSummarize(n), "history length %d", n)
	}
}

func TestCreateSummary_Empty(t *testing.T) {
	m := testManager()

	s := m.CreateSummary(nil)
	assert.Equal(t, "No conversation history", s.Text)
	assert.Zero(t, s.MessagesIncluded)
}

func TestCreateSummary_TopicsAndLastQuestion(t *testing.T) {
	m := testManager()

	messages := []Message{
		NewUserMessage("How should I think about diversification in my portfolio?"),
		NewAssistantMessage("Diversification spreads risk across assets."),
		NewUserMessage("What about tax implications of rebalancing?"),
	}

	s := m.CreateSummary(messages)

	assert.Equal(t, 3, s.MessagesIncluded)
	assert.Contains(t, s.KeyTopics, "Diversification")
	assert.Contains(t, s.KeyTopics, "Tax Planning")
	assert.Contains(t, s.Text, "Last question: What about tax implications")
	assert.Contains(t, s.Text, "Conversation with 3 messages.")
}

func TestCreateSummary_CapsTopicsAndDecisions(t *testing.T) {
	m := testManager()

	messages := []Message{
		NewUserMessage("Tell me about my portfolio, stocks, bonds, etf options, and dividend yield"),
		NewUserMessage("What about retirement goals and tax and risk and market allocation?"),
		NewUserMessage("Another long question about rebalancing my whole position set"),
		NewUserMessage("And one more long question about diversification strategies here"),
	}

	s := m.CreateSummary(messages)

	assert.LessOrEqual(t, len(s.KeyTopics), 5)
	assert.LessOrEqual(t, len(s.KeyDecisions), 3)
}

func TestCreateSummary_TruncatesToLength(t *testing.T) {
	m := NewManager(config.ConversationConfig{
		MaxHistory:       20,
		SummaryThreshold: 10,
		SummaryLength:    50,
	})

	messages := []Message{
		NewUserMessage(strings.Repeat("portfolio diversification retirement ", 10)),
	}

	s := m.CreateSummary(messages)
	require.LessOrEqual(t, len(s.Text), 53) // 50 + "..."
	require.True(t, strings.HasSuffix(s.Text, "..."))

	// Truncation lands on a word boundary: the cut text plus a space
	// must be a prefix of the untruncated summary
	full := NewManager(config.ConversationConfig{
		MaxHistory:       20,
		SummaryThreshold: 10,
		SummaryLength:    100000,
	}).CreateSummary(messages)
	cut := strings.TrimSuffix(s.Text, "...")
	assert.True(t, strings.HasPrefix(full.Text, cut+" "))
}

func TestTruncate_KeepsValidUTF8(t *testing.T) {
	s := strings.Repeat("é", 10)

	for n := 0; n <= len(s); n++ {
		cut := truncate(s, n)
		assert.True(t, utf8.ValidString(cut), "cut at byte %d", n)
		assert.True(t, strings.HasPrefix(s, cut))
	}
}

func TestTruncateAtWord_KeepsValidUTF8(t *testing.T) {
	s := "sparplan für die Altersvorsorge"

	// Byte 11 lands inside the two-byte ü
	cut := truncateAtWord(s, 11)
	assert.Equal(t, "sparplan", cut)
	assert.True(t, utf8.ValidString(cut))
}

func TestTrimHistory_UnderThreshold(t *testing.T) {
	m := testManager()

	messages := make([]Message, 10)
	for i := range messages {
		messages[i] = NewUserMessage(fmt.Sprintf("message %d", i))
	}

	trimmed, summary := m.TrimHistory(messages)
	assert.Len(t, trimmed, 10)
	assert.Nil(t, summary)
}

func TestTrimHistory_OverThresholdWithinCap(t *testing.T) {
	m := testManager()

	messages := make([]Message, 15)
	for i := range messages {
		messages[i] = NewUserMessage(fmt.Sprintf("question number %d about my portfolio", i))
	}

	// History fits under the cap so nothing is dropped, but a summary
	// of the oldest messages already exists
	trimmed, summary := m.TrimHistory(messages)
	assert.Len(t, trimmed, 15)
	require.NotNil(t, summary)
	assert.Equal(t, 5, summary.MessagesIncluded)
}

func TestTrimHistory_OverCap(t *testing.T) {
	m := testManager()

	messages := make([]Message, 30)
	for i := range messages {
		messages[i] = NewUserMessage(fmt.Sprintf("question number %d about my portfolio", i))
	}

	trimmed, summary := m.TrimHistory(messages)

	require.Len(t, trimmed, 20)
	require.NotNil(t, summary)
	assert.Equal(t, 20, summary.MessagesIncluded)

	// Oldest messages were dropped, newest kept
	assert.Contains(t, trimmed[0].Content, "number 10")
	assert.Contains(t, trimmed[19].Content, "number 29")
}

func TestFormatForPrompt(t *testing.T) {
	m := testManager()

	messages := []Message{
		NewUserMessage("What is an ETF?"),
		NewAssistantMessage("An ETF is an exchange-traded fund."),
	}
	summary := &Summary{
		Text:      "Conversation with 12 messages.",
		KeyTopics: []string{"ETFs"},
	}

	out := m.FormatForPrompt(messages, summary)

	assert.Contains(t, out, "Previous conversation summary:")
	assert.Contains(t, out, "Topics discussed: ETFs")
	assert.Contains(t, out, "Recent conversation:")
	assert.Contains(t, out, "User: What is an ETF?")
	assert.Contains(t, out, "Assistant: An ETF is an exchange-traded fund.")
}

func TestFormatForPrompt_LastFiveOnly(t *testing.T) {
	m := testManager()

	messages := make([]Message, 8)
	for i := range messages {
		messages[i] = NewUserMessage(fmt.Sprintf("msg %d", i))
	}

	out := m.FormatForPrompt(messages, nil)

	assert.NotContains(t, out, "msg 2")
	assert.Contains(t, out, "msg 3")
	assert.Contains(t, out, "msg 7")
}

func TestGetStats(t *testing.T) {
	m := testManager()

	messages := []Message{
		NewUserMessage("1234567890"),
		NewAssistantMessage("12345"),
	}

	stats := m.GetStats(messages)

	assert.Equal(t, 2, stats.TotalMessages)
	assert.Equal(t, 1, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)
	assert.Equal(t, 15, stats.TotalCharacters)
	assert.Equal(t, 7, stats.AvgMessageLength)
	assert.False(t, stats.NeedsSummary)
}
