package domain

import (
	"fmt"
	"time"
)

// Chunk represents an embedded segment of a report used for search.
// ChunkIndex is zero-based and unique within a report.
type Chunk struct {
	ID             string
	ReportID       string
	Text           string
	ChunkIndex     int
	PageNumber     *int
	SectionType    string
	Embedding      []float32
	EmbeddingModel string
	CreatedAt      time.Time
}

// SearchResult is an ephemeral per-query ranking of a stored chunk.
// It is recomputed on every search and never persisted.
type SearchResult struct {
	ChunkID        string
	ReportID       string
	ReportFilename string
	Text           string
	ChunkIndex     int
	PageNumber     *int
	SectionType    string
	Similarity     float64
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ReportID == "" {
		return fmt.Errorf("chunk ReportID is required")
	}

	if c.Text == "" {
		return fmt.Errorf("chunk Text is required")
	}

	if c.ChunkIndex < 0 {
		return fmt.Errorf("chunk ChunkIndex cannot be negative")
	}

	if c.PageNumber != nil && *c.PageNumber < 1 {
		return fmt.Errorf("chunk PageNumber must be positive")
	}

	return nil
}
