package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIDetector_Detect(t *testing.T) {
	d := NewPIIDetector()

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"ssn", "my ssn is 123-45-6789", []string{"ssn"}},
		{"email", "contact me at someone@example.com please", []string{"email"}},
		{"phone", "call 555-123-4567 anytime", []string{"phone"}},
		{"credit card", "card 4111 1111 1111 1111 expires soon", []string{"credit_card"}},
		{"bank account", "account number 12345678901", []string{"bank_account"}},
		{"clean", "should I invest 10000 dollars in AAPL", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			found, types := d.Detect(tc.text)
			assert.Equal(t, len(tc.want) > 0, found)
			assert.Equal(t, tc.want, types)
		})
	}
}

func TestPIIDetector_DetectMultiple(t *testing.T) {
	d := NewPIIDetector()

	found, types := d.Detect("ssn 123-45-6789 email a@b.com")
	require.True(t, found)
	assert.Contains(t, types, "ssn")
	assert.Contains(t, types, "email")
}

func TestPIIDetector_Warning(t *testing.T) {
	d := NewPIIDetector()

	msg := d.Warning([]string{"ssn", "email"})
	assert.Contains(t, msg, "Social Security Number")
	assert.Contains(t, msg, "email address")
	assert.Contains(t, msg, "not needed for financial analysis")
}

func TestPIIDetector_Redact(t *testing.T) {
	d := NewPIIDetector()

	out := d.Redact("my ssn is 123-45-6789 and email is a@b.com")
	assert.NotContains(t, out, "123-45-6789")
	assert.NotContains(t, out, "a@b.com")
	assert.Contains(t, out, "[REDACTED]")
}
