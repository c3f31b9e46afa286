package guardrails

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"fincoach/pkg/logger"
)

// AuditEntry records one workflow execution for compliance review.
// The query itself is never stored, only its hash.
type AuditEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Action          string    `json:"action"`
	Status          string    `json:"status"`
	AgentsUsed      []string  `json:"agents_used"`
	QueryHash       string    `json:"query_hash"`
	ResponseLength  int       `json:"response_length"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	ErrorCode       string    `json:"error_code,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// AuditLogger writes workflow executions to the audit log channel
type AuditLogger struct {
	log *logger.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{
		log: logger.Audit(),
	}
}

// HashQuery returns the first 16 hex chars of the query's sha256
func HashQuery(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])[:16]
}

// Record builds an entry and emits it on the audit channel
func (a *AuditLogger) Record(sessionID, userID, query string, agentsUsed []string, responseLength int, executionTimeMs float64, execErr error) AuditEntry {
	entry := AuditEntry{
		Timestamp:       time.Now().UTC(),
		SessionID:       sessionID,
		UserID:          userID,
		Action:          "orchestration_execution",
		Status:          "success",
		AgentsUsed:      agentsUsed,
		QueryHash:       HashQuery(query),
		ResponseLength:  responseLength,
		ExecutionTimeMs: executionTimeMs,
	}

	if execErr != nil {
		entry.Status = "error"
		entry.ErrorCode = "unknown_error"
		entry.ErrorMessage = execErr.Error()
	}

	a.log.Infow("orchestration_execution",
		"session_id", entry.SessionID,
		"user_id", entry.UserID,
		"status", entry.Status,
		"agents_used", entry.AgentsUsed,
		"query_hash", entry.QueryHash,
		"response_length", entry.ResponseLength,
		"execution_time_ms", entry.ExecutionTimeMs,
		"error_message", entry.ErrorMessage)

	return entry
}
