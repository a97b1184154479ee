package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/finsight-labs/finrag/internal/domain"
)

const (
	// DefaultTopK is the result cutoff applied when the caller passes zero.
	DefaultTopK = 5
	// DefaultThreshold is the minimum similarity applied when the caller
	// passes zero.
	DefaultThreshold = 0.7
)

// Candidate is a stored chunk paired with its report filename, as
// loaded for one search pass.
type Candidate struct {
	Chunk          domain.Chunk
	ReportFilename string
}

// Source loads search candidates, optionally restricted to a report
// set. The returned order is the storage order and is used for
// tie-breaking, so implementations must keep it stable.
type Source interface {
	Candidates(ctx context.Context, reportIDs []string) ([]Candidate, error)
}

// Options tunes one search call. Zero values fall back to the
// package defaults.
type Options struct {
	TopK int
	// Threshold is the minimum similarity to admit. Zero falls back to
	// DefaultThreshold; a negative value disables the cutoff (similarity
	// ranges over [-1, 1]).
	Threshold float64
	ReportIDs []string
	// SectionTypes is honored by HybridSearch only.
	SectionTypes []string
}

// Engine ranks candidates by cosine similarity against a query
// embedding. It scans every candidate per query; fine for moderate
// corpora.
type Engine struct {
	source Source
}

// NewEngine creates a search engine over the given candidate source.
func NewEngine(source Source) *Engine {
	return &Engine{source: source}
}

// Search returns at most TopK results with similarity at or above the
// threshold, sorted by similarity descending. Ties keep storage order.
// An empty result set means no relevant context, not an error.
func (e *Engine) Search(ctx context.Context, query []float32, opts Options) ([]domain.SearchResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	candidates, err := e.source.Candidates(ctx, opts.ReportIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load search candidates: %w", err)
	}

	results := rank(candidates, query, threshold)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// HybridSearch runs a semantic search with a widened internal cutoff,
// applies exact-match filters on report and section membership, then
// truncates to the caller's TopK. Filtering never admits a result that
// failed the similarity threshold.
func (e *Engine) HybridSearch(ctx context.Context, query []float32, opts Options) ([]domain.SearchResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	wide := opts
	wide.TopK = topK * 2
	wide.SectionTypes = nil

	results, err := e.Search(ctx, query, wide)
	if err != nil {
		return nil, err
	}

	reportSet := toSet(opts.ReportIDs)
	sectionSet := toSet(opts.SectionTypes)

	filtered := results[:0]
	for _, r := range results {
		if len(reportSet) > 0 {
			if _, ok := reportSet[r.ReportID]; !ok {
				continue
			}
		}
		if len(sectionSet) > 0 {
			if _, ok := sectionSet[r.SectionType]; !ok {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

func rank(candidates []Candidate, query []float32, threshold float64) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		sim := Cosine(query, c.Chunk.Embedding)
		if sim < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:        c.Chunk.ID,
			ReportID:       c.Chunk.ReportID,
			ReportFilename: c.ReportFilename,
			Text:           c.Chunk.Text,
			ChunkIndex:     c.Chunk.ChunkIndex,
			PageNumber:     c.Chunk.PageNumber,
			SectionType:    c.Chunk.SectionType,
			Similarity:     sim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
