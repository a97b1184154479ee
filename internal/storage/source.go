package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ObjectFetcher is the read side of a blob store
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// Source resolves report source paths to document bytes. Paths of the
// form s3://bucket/key are read from object storage; everything else is
// treated as a local filesystem path.
type Source struct {
	s3 ObjectFetcher
}

// NewSource creates a Source. The fetcher may be nil when object storage
// is not configured; s3:// paths then fail with an error.
func NewSource(s3Client ObjectFetcher) *Source {
	return &Source{s3: s3Client}
}

// Fetch implements the document source used by the ingestion pipeline
func (s *Source) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if key, ok := objectKey(path); ok {
		if s.s3 == nil {
			return nil, fmt.Errorf("object storage not configured, cannot fetch %s", path)
		}
		return s.s3.Fetch(ctx, key)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

// objectKey strips the s3://bucket/ prefix from a source path
func objectKey(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return "", false
	}
	if _, key, found := strings.Cut(rest, "/"); found {
		return key, true
	}
	return "", true
}
