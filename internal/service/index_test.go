package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finrag/internal/chunker"
	"github.com/finsight-labs/finrag/internal/domain"
)

type fixedUUIDGenerator struct {
	ids []string
	n   int
}

func (g *fixedUUIDGenerator) NewString() string {
	id := g.ids[g.n%len(g.ids)]
	g.n++
	return id
}

func testPieces() []chunker.Piece {
	page := 1
	return []chunker.Piece{
		{Text: "Revenue grew 12%.", ChunkIndex: 0, PageNumber: &page, SectionType: "page_1"},
		{Text: "Operating expenses fell.", ChunkIndex: 1, PageNumber: &page, SectionType: ""},
	}
}

func TestIndexService_Store(t *testing.T) {
	ctx := context.Background()
	reportRepo := new(MockReportRepository)
	chunkRepo := new(MockChunkRepository)
	runner := &stubTxRunner{reports: reportRepo, chunks: chunkRepo}

	svc := NewIndexServiceWithUUIDGen(runner, chunkRepo, &fixedUUIDGenerator{ids: []string{"id-1", "id-2"}})

	var inserted []domain.Chunk
	chunkRepo.On("InsertBatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]domain.Chunk)
	}).Return(nil)
	reportRepo.On("MarkIndexed", ctx, "report-1", 2, "openai", "text-embedding-3-small").Return(nil)

	count, err := svc.Store(ctx, "report-1", testPieces(), [][]float32{{1, 0}, {0, 1}}, "openai", "text-embedding-3-small")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, inserted, 2)
	assert.Equal(t, "id-1", inserted[0].ID)
	assert.Equal(t, "report-1", inserted[0].ReportID)
	assert.Equal(t, "Revenue grew 12%.", inserted[0].Text)
	assert.Equal(t, "page_1", inserted[0].SectionType)
	assert.Equal(t, "text", inserted[1].SectionType, "empty section type defaults")
	assert.Equal(t, []float32{0, 1}, inserted[1].Embedding)

	reportRepo.AssertExpectations(t)
	chunkRepo.AssertExpectations(t)
}

func TestIndexService_Store_LengthMismatch(t *testing.T) {
	svc := NewIndexService(&stubTxRunner{}, new(MockChunkRepository))

	_, err := svc.Store(context.Background(), "report-1", testPieces(), [][]float32{{1, 0}}, "openai", "m")
	assert.ErrorIs(t, err, domain.ErrChunkEmbeddingLength)
}

func TestIndexService_Store_RollsUpTxFailure(t *testing.T) {
	ctx := context.Background()
	chunkRepo := new(MockChunkRepository)
	runner := &stubTxRunner{reports: new(MockReportRepository), chunks: chunkRepo}

	chunkRepo.On("InsertBatch", ctx, mock.Anything).Return(errors.New("insert failed"))

	svc := NewIndexService(runner, chunkRepo)

	_, err := svc.Store(ctx, "report-1", testPieces(), [][]float32{{1, 0}, {0, 1}}, "openai", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageWriteFailed)
}

func TestIndexService_Delete_Idempotent(t *testing.T) {
	ctx := context.Background()
	chunkRepo := new(MockChunkRepository)
	chunkRepo.On("DeleteByReport", ctx, "report-1").Return(int64(0), nil)

	svc := NewIndexService(&stubTxRunner{}, chunkRepo)

	deleted, err := svc.Delete(ctx, "report-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)
}

func TestIndexService_Reindex(t *testing.T) {
	ctx := context.Background()
	reportRepo := new(MockReportRepository)
	chunkRepo := new(MockChunkRepository)
	runner := &stubTxRunner{reports: reportRepo, chunks: chunkRepo}

	var calls []string
	chunkRepo.On("DeleteByReport", ctx, "report-1").Run(func(mock.Arguments) {
		calls = append(calls, "delete")
	}).Return(int64(2), nil)
	chunkRepo.On("InsertBatch", ctx, mock.Anything).Run(func(mock.Arguments) {
		calls = append(calls, "insert")
	}).Return(nil)
	reportRepo.On("MarkIndexed", ctx, "report-1", 2, "gemini", "text-embedding-004").Return(nil)

	svc := NewIndexService(runner, chunkRepo)

	count, err := svc.Reindex(ctx, "report-1", testPieces(), [][]float32{{1, 0}, {0, 1}}, "gemini", "text-embedding-004")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"delete", "insert"}, calls, "old chunks go before new ones arrive")
}
