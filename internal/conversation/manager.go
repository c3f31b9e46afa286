package conversation

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"fincoach/internal/adapters/config"
	"fincoach/pkg/logger"
)

// Topics recognized when summarizing older history
var financialTopics = map[string]string{
	"portfolio":       "Portfolio Analysis",
	"stock":           "Stock Market",
	"bond":            "Bonds",
	"etf":             "ETFs",
	"diversification": "Diversification",
	"rebalance":       "Rebalancing",
	"goal":            "Financial Goals",
	"retirement":      "Retirement Planning",
	"tax":             "Tax Planning",
	"risk":            "Risk Management",
	"allocation":      "Asset Allocation",
	"dividend":        "Dividends",
	"yield":           "Yield Analysis",
	"market":          "Market Analysis",
}

// Summary condenses messages that fell off the history window
type Summary struct {
	Text             string    `json:"text"`
	MessagesIncluded int       `json:"messages_included"`
	KeyTopics        []string  `json:"key_topics"`
	KeyDecisions     []string  `json:"key_decisions"`
	CreatedAt        time.Time `json:"created_at"`
}

// Manager keeps conversation history within bounds and produces rolling
// summaries of what gets trimmed away
type Manager struct {
	maxHistory       int
	summaryThreshold int
	summaryLength    int
	log              *logger.Logger
}

// NewManager creates a manager with limits from config
func NewManager(cfg config.ConversationConfig) *Manager {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 20
	}
	threshold := cfg.SummaryThreshold
	if threshold <= 0 {
		threshold = 10
	}
	length := cfg.SummaryLength
	if length <= 0 {
		length = 500
	}
	return &Manager{
		maxHistory:       maxHistory,
		summaryThreshold: threshold,
		summaryLength:    length,
		log:              logger.Get().With("component", "conversation"),
	}
}

// ShouldSummarize reports whether the history is long enough for
// TrimHistory to produce a summary
func (m *Manager) ShouldSummarize(numMessages int) bool {
	return numMessages > m.summaryThreshold
}

// CreateSummary builds a compact narrative of the given messages:
// detected topics, recent user questions, capped at the configured length
func (m *Manager) CreateSummary(messages []Message) Summary {
	if len(messages) == 0 {
		return Summary{
			Text:      "No conversation history",
			CreatedAt: time.Now().UTC(),
		}
	}

	topicSet := make(map[string]struct{})
	var decisions []string

	for _, msg := range messages {
		content := strings.ToLower(msg.Content)
		for keyword, topic := range financialTopics {
			if strings.Contains(content, keyword) {
				topicSet[topic] = struct{}{}
			}
		}
		if msg.Role == RoleUser && len(msg.Content) > 20 {
			decisions = append(decisions, truncate(msg.Content, 100))
		}
	}

	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	if len(topics) > 5 {
		topics = topics[:5]
	}

	parts := []string{humanizeCount(len(messages))}
	if len(topics) > 0 {
		parts = append(parts, "Main topics: "+strings.Join(topics, ", ")+".")
	}

	// Most recent user question anchors the summary
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			parts = append(parts, "Last question: "+truncate(messages[i].Content, 150))
			break
		}
	}

	text := strings.Join(parts, " ")
	if len(text) > m.summaryLength {
		text = truncateAtWord(text, m.summaryLength) + "..."
	}

	if len(decisions) > 3 {
		decisions = decisions[:3]
	}

	return Summary{
		Text:             text,
		MessagesIncluded: len(messages),
		KeyTopics:        topics,
		KeyDecisions:     decisions,
		CreatedAt:        time.Now().UTC(),
	}
}

// TrimHistory caps active history at maxHistory and summarizes older
// messages once the threshold is crossed. Messages beyond the most
// recent summaryThreshold are summarized even while still retained, so
// the summary is already in place when they eventually fall off.
func (m *Manager) TrimHistory(messages []Message) ([]Message, *Summary) {
	if len(messages) <= m.summaryThreshold {
		return messages, nil
	}

	summary := m.CreateSummary(messages[:len(messages)-m.summaryThreshold])

	trimmed := messages
	if len(messages) > m.maxHistory {
		trimmed = messages[len(messages)-m.maxHistory:]
	}

	m.log.Infow("Trimmed conversation history",
		"original_count", len(messages),
		"trimmed_count", len(trimmed),
		"topics", summary.KeyTopics)

	return trimmed, &summary
}

// FormatForPrompt renders the summary plus the last five messages as the
// context block injected into agent prompts
func (m *Manager) FormatForPrompt(messages []Message, summary *Summary) string {
	var parts []string

	if summary != nil {
		parts = append(parts, "Previous conversation summary:\n"+summary.Text+"\n")
		if len(summary.KeyTopics) > 0 {
			parts = append(parts, "Topics discussed: "+strings.Join(summary.KeyTopics, ", ")+"\n")
		}
	}

	if len(messages) > 0 {
		parts = append(parts, "Recent conversation:")
		start := 0
		if len(messages) > 5 {
			start = len(messages) - 5
		}
		for _, msg := range messages[start:] {
			parts = append(parts, capitalize(msg.Role)+": "+truncate(msg.Content, 200))
		}
	}

	return strings.Join(parts, "\n")
}

// Stats describes the current history shape
type Stats struct {
	TotalMessages     int  `json:"total_messages"`
	UserMessages      int  `json:"user_messages"`
	AssistantMessages int  `json:"assistant_messages"`
	TotalCharacters   int  `json:"total_characters"`
	AvgMessageLength  int  `json:"avg_message_length"`
	NeedsSummary      bool `json:"needs_summary"`
}

// GetStats computes history statistics
func (m *Manager) GetStats(messages []Message) Stats {
	var stats Stats
	stats.TotalMessages = len(messages)

	for _, msg := range messages {
		stats.TotalCharacters += len(msg.Content)
		switch msg.Role {
		case RoleUser:
			stats.UserMessages++
		case RoleAssistant:
			stats.AssistantMessages++
		}
	}

	if len(messages) > 0 {
		stats.AvgMessageLength = stats.TotalCharacters / len(messages)
	}
	stats.NeedsSummary = m.ShouldSummarize(len(messages))

	return stats
}

func humanizeCount(n int) string {
	if n == 1 {
		return "Conversation with 1 message."
	}
	return fmt.Sprintf("Conversation with %d messages.", n)
}

// truncate cuts at n bytes, backing up to a rune boundary so the
// result is always valid UTF-8
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// truncateAtWord cuts at the last space before n so words stay whole
func truncateAtWord(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := truncate(s, n)
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
