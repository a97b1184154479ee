package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/finsight-labs/finrag/internal/domain"
)

// JSON flattens a JSON document into "path: value" lines so that
// figures keep their field context when chunked.
type JSON struct{}

func (e *JSON) Extract(_ context.Context, r io.Reader, _ Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to read document", err)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExtraction, "failed to parse JSON", err)
	}

	var lines []string
	flattenJSON("", value, &lines)
	if len(lines) == 0 {
		return &Document{}, nil
	}

	text := strings.Join(lines, "\n")
	return &Document{
		FullText: text,
		Pages:    []Page{{Number: 1, Text: text}},
	}, nil
}

func flattenJSON(prefix string, value any, lines *[]string) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenJSON(joinPath(prefix, k), v[k], lines)
		}
	case []any:
		for i, item := range v {
			flattenJSON(fmt.Sprintf("%s[%d]", prefix, i), item, lines)
		}
	case nil:
		// skip nulls
	default:
		*lines = append(*lines, fmt.Sprintf("%s: %v", prefix, v))
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
