package guardrails

import (
	"regexp"
	"strings"

	"fincoach/pkg/logger"
)

// piiPattern pairs a PII category with its detection regex.
// Order is fixed so detection results are deterministic.
type piiPattern struct {
	kind string
	re   *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"ssn", regexp.MustCompile(`\d{3}-\d{2}-\d{4}`)},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{"phone", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)},
	{"bank_account", regexp.MustCompile(`\b\d{10,12}\b`)},
	{"ssn_alt", regexp.MustCompile(`\b\d{9}\b`)},
}

var piiTypeNames = map[string]string{
	"ssn":          "Social Security Number",
	"email":        "email address",
	"phone":        "phone number",
	"credit_card":  "credit card number",
	"bank_account": "bank account number",
}

// PIIDetector finds personally identifiable information in text.
// It is applied to user input before processing and to the synthesized
// response before it is returned.
type PIIDetector struct {
	log *logger.Logger
}

// NewPIIDetector creates a new detector
func NewPIIDetector() *PIIDetector {
	return &PIIDetector{
		log: logger.Get().With("component", "pii_detector"),
	}
}

// Detect returns whether text contains PII and which categories matched
func (d *PIIDetector) Detect(text string) (bool, []string) {
	var detected []string
	for _, p := range piiPatterns {
		if p.re.MatchString(text) {
			detected = append(detected, p.kind)
		}
	}

	if len(detected) > 0 {
		d.log.Warnw("PII detected", "types", detected)
	}

	return len(detected) > 0, detected
}

// Warning builds the user-facing message for detected PII categories
func (d *PIIDetector) Warning(detectedTypes []string) string {
	readable := make([]string, 0, len(detectedTypes))
	for _, t := range detectedTypes {
		if name, ok := piiTypeNames[t]; ok {
			readable = append(readable, name)
		} else {
			readable = append(readable, t)
		}
	}

	return "Please don't include sensitive information like " + strings.Join(readable, ", ") +
		". This information is not needed for financial analysis."
}

// Redact replaces every PII match with a placeholder so the text can be
// logged or returned safely.
func (d *PIIDetector) Redact(text string) string {
	for _, p := range piiPatterns {
		text = p.re.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
