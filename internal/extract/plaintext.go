package extract

import (
	"context"
	"io"
	"strings"

	"github.com/finsight-labs/finrag/internal/domain"
)

// PlainText extracts text documents as-is, normalizing line endings.
type PlainText struct{}

func (e *PlainText) Extract(_ context.Context, r io.Reader, _ Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read document", err)
	}

	text := normalizeNewlines(string(raw))
	if strings.TrimSpace(text) == "" {
		return &Document{}, nil
	}

	return &Document{
		FullText: text,
		Pages:    []Page{{Number: 1, Text: text}},
	}, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// joinNonEmpty joins parts with blank lines, skipping empty entries.
func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimRight(p, " \t"))
		}
	}
	return strings.Join(kept, "\n\n")
}

// formatRow renders tabular cells as a pipe-separated line.
func formatRow(cells []string) string {
	return strings.Join(cells, " | ")
}
