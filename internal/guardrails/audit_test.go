package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincoach/pkg/errors"
)

func TestHashQuery(t *testing.T) {
	h1 := HashQuery("what is a roth ira")
	h2 := HashQuery("what is a roth ira")
	h3 := HashQuery("something else")

	assert.Len(t, h1, 16)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestAuditLogger_Record(t *testing.T) {
	a := NewAuditLogger()

	entry := a.Record("sess-1", "user-1", "what is a roth ira", []string{"finance_qa"}, 420, 1234.5, nil)

	assert.Equal(t, "sess-1", entry.SessionID)
	assert.Equal(t, "success", entry.Status)
	assert.Equal(t, []string{"finance_qa"}, entry.AgentsUsed)
	assert.Equal(t, 420, entry.ResponseLength)
	assert.Empty(t, entry.ErrorMessage)

	// The raw query never appears in the entry
	assert.NotContains(t, entry.QueryHash, "roth")
	assert.Len(t, entry.QueryHash, 16)
}

func TestAuditLogger_RecordError(t *testing.T) {
	a := NewAuditLogger()

	entry := a.Record("sess-1", "user-1", "query", nil, 0, 50, errors.ErrAllAgentsFailed)

	require.Equal(t, "error", entry.Status)
	assert.Equal(t, "unknown_error", entry.ErrorCode)
	assert.NotEmpty(t, entry.ErrorMessage)
}
