// Package anonymizer masks obvious PII in extracted text before it is
// embedded or stored.
package anonymizer

import "regexp"

// Anonymizer rewrites text so that personally identifying strings are
// masked. Implementations must be pure: same input, same output.
type Anonymizer interface {
	Anonymize(text string) string
}

// Passthrough performs no anonymization.
type Passthrough struct{}

func (Passthrough) Anonymize(text string) string { return text }

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	ssnPattern     = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	accountPattern = regexp.MustCompile(`\b(?:IBAN|iban)\s+[A-Z]{2}\d{2}[A-Z0-9]{10,30}\b`)
)

// Masker replaces emails, SSN-like identifiers and IBANs with fixed
// placeholders. Monetary amounts and plain figures are left untouched
// so financial content stays searchable.
type Masker struct{}

func NewMasker() *Masker {
	return &Masker{}
}

func (m *Masker) Anonymize(text string) string {
	out := emailPattern.ReplaceAllString(text, "[EMAIL]")
	out = ssnPattern.ReplaceAllString(out, "[SSN]")
	out = accountPattern.ReplaceAllString(out, "[ACCOUNT]")
	return out
}
