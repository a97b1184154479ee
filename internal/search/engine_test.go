package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finrag/internal/domain"
)

type staticSource struct {
	candidates []Candidate
	err        error
	gotReports []string
}

func (s *staticSource) Candidates(_ context.Context, reportIDs []string) ([]Candidate, error) {
	s.gotReports = reportIDs
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func makeCandidates(embeddings [][]float32) []Candidate {
	reportID := uuid.NewString()
	out := make([]Candidate, 0, len(embeddings))
	for i, emb := range embeddings {
		out = append(out, Candidate{
			Chunk: domain.Chunk{
				ID:         uuid.NewString(),
				ReportID:   reportID,
				Text:       "chunk text",
				ChunkIndex: i,
				Embedding:  emb,
			},
			ReportFilename: "q3-report.pdf",
		})
	}
	return out
}

func TestCosine(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		v := []float32{0.3, 0.4, 0.5}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float32{1, 2}, []float32{-1, -2}), 1e-9)
	})

	t.Run("zero vector scores 0 not NaN", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
		assert.Equal(t, 0.0, Cosine([]float32{1, 1}, []float32{0, 0}))
	})

	t.Run("mismatched lengths score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 0}))
	})
}

func TestEngine_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks above threshold and truncates to top k", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{
			{1, 0},
			{0, 1},
			{0.9, 0.1},
		})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{1, 0}, Options{TopK: 2, Threshold: 0.5})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, 0, results[0].ChunkIndex)
		assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
		assert.Equal(t, 2, results[1].ChunkIndex)
		assert.InDelta(t, 0.9938, results[1].Similarity, 1e-3)
	})

	t.Run("empty result when nothing clears threshold", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{{0, 1}})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{1, 0}, Options{TopK: 5, Threshold: 0.5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("zero query vector matches nothing", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{{1, 0}, {0, 1}})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{0, 0}, Options{TopK: 5, Threshold: 0.5})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ties keep storage order", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{
			{0.5, 0},
			{2, 0},
			{1, 0},
		})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{1, 0}, Options{TopK: 3, Threshold: 0.5})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, []int{0, 1, 2}, []int{results[0].ChunkIndex, results[1].ChunkIndex, results[2].ChunkIndex})
	})

	t.Run("zero threshold takes the default", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{{1, 0}, {0, 1}})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{1, 0}, Options{TopK: 5})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 0, results[0].ChunkIndex)
	})

	t.Run("negative threshold disables the cutoff", func(t *testing.T) {
		src := &staticSource{candidates: makeCandidates([][]float32{
			{1, 0},
			{0, 1},
			{-1, 0},
		})}
		engine := NewEngine(src)

		results, err := engine.Search(ctx, []float32{1, 0}, Options{TopK: 5, Threshold: -1})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.InDelta(t, -1.0, results[2].Similarity, 1e-9)
	})

	t.Run("passes report filter to source", func(t *testing.T) {
		src := &staticSource{}
		engine := NewEngine(src)

		ids := []string{uuid.NewString()}
		_, err := engine.Search(ctx, []float32{1, 0}, Options{ReportIDs: ids})
		require.NoError(t, err)
		assert.Equal(t, ids, src.gotReports)
	})

	t.Run("source failure surfaces", func(t *testing.T) {
		src := &staticSource{err: errors.New("connection reset")}
		engine := NewEngine(src)

		_, err := engine.Search(ctx, []float32{1, 0}, Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestEngine_HybridSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("section filter is a strict post-filter", func(t *testing.T) {
		candidates := makeCandidates([][]float32{
			{1, 0},
			{0.95, 0.05},
			{0.9, 0.1},
		})
		candidates[0].Chunk.SectionType = "page_1"
		candidates[1].Chunk.SectionType = "page_2"
		candidates[2].Chunk.SectionType = "page_1"

		engine := NewEngine(&staticSource{candidates: candidates})

		results, err := engine.HybridSearch(ctx, []float32{1, 0}, Options{
			TopK:         2,
			Threshold:    0.5,
			SectionTypes: []string{"page_1"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "page_1", results[0].SectionType)
		assert.Equal(t, "page_1", results[1].SectionType)
		assert.Equal(t, 0, results[0].ChunkIndex)
		assert.Equal(t, 2, results[1].ChunkIndex)
	})

	t.Run("filter never admits below-threshold results", func(t *testing.T) {
		candidates := makeCandidates([][]float32{{0, 1}})
		candidates[0].Chunk.SectionType = "page_1"

		engine := NewEngine(&staticSource{candidates: candidates})

		results, err := engine.HybridSearch(ctx, []float32{1, 0}, Options{
			TopK:         5,
			Threshold:    0.5,
			SectionTypes: []string{"page_1"},
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("report filter drops foreign reports", func(t *testing.T) {
		candidates := makeCandidates([][]float32{{1, 0}, {0.9, 0.1}})
		other := makeCandidates([][]float32{{0.99, 0.01}})
		all := append(candidates, other...)

		engine := NewEngine(&staticSource{candidates: all})

		results, err := engine.HybridSearch(ctx, []float32{1, 0}, Options{
			TopK:      5,
			Threshold: 0.5,
			ReportIDs: []string{candidates[0].Chunk.ReportID},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, candidates[0].Chunk.ReportID, r.ReportID)
		}
	})
}
