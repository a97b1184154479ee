package extract

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/finsight-labs/finrag/internal/domain"
)

// CSV extracts tabular data, rendering each row as a pipe-separated
// line tagged as table content.
type CSV struct{}

func (e *CSV) Extract(_ context.Context, r io.Reader, _ Options) (*Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var lines []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to parse CSV", err)
		}
		line := formatRow(record)
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return &Document{}, nil
	}

	text := strings.Join(lines, "\n")
	return &Document{
		FullText: text,
		Pages:    []Page{{Number: 1, Text: text}},
	}, nil
}
