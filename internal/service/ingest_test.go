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

const financialText = `Annual Report FY2024

Revenue for the fiscal year was $4,200,000, up from the prior period. Operating expenses
declined while gross profit improved across all segments.

The balance sheet shows total assets of $12,000,000 against liabilities of $5,000,000,
leaving shareholders' equity of $7,000,000. Cash flow from operations remained positive.

Depreciation and amortization followed GAAP schedules. See the income statement for
segment detail and per-share figures for the fiscal year.

Management expects continued margin expansion next year, driven by pricing and volume.`

func newIngestFixture(source *stubSource, embedder *MockEmbedder) (*IngestService, *MockReportRepository, *MockChunkRepository) {
	reportRepo := new(MockReportRepository)
	chunkRepo := new(MockChunkRepository)
	runner := &stubTxRunner{reports: reportRepo, chunks: chunkRepo}
	index := NewIndexService(runner, chunkRepo)

	svc := NewIngestService(reportRepo, source, nil, embedder, index, chunker.Options{ChunkSize: 200, Overlap: 20}, 4)
	return svc, reportRepo, chunkRepo
}

func processingReport(id string) *domain.Report {
	return &domain.Report{
		ID:               id,
		Filename:         "report.txt",
		SourcePath:       "/data/report.txt",
		FileType:         domain.FileTypeTXT,
		ProcessingStatus: domain.ReportStatusProcessing,
	}
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()
	embedder := new(MockEmbedder)
	embedder.On("Embed", ctx, mock.Anything).Return([]float32{1, 0, 0, 0}, nil)

	svc, reportRepo, chunkRepo := newIngestFixture(&stubSource{content: financialText}, embedder)

	reportRepo.On("GetByID", ctx, "report-1").Return(processingReport("report-1"), nil)

	var inserted []domain.Chunk
	chunkRepo.On("InsertBatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]domain.Chunk)
	}).Return(nil)
	reportRepo.On("MarkIndexed", ctx, "report-1", mock.Anything, "openai", "text-embedding-3-small").Return(nil)

	require.NoError(t, svc.Ingest(ctx, "report-1", ""))

	require.NotEmpty(t, inserted)
	for i, c := range inserted {
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.Text)
		assert.Equal(t, []float32{1, 0, 0, 0}, c.Embedding)
	}
	reportRepo.AssertExpectations(t)
}

func TestIngestService_Ingest_EmbeddingFailureDegradesToZeroVector(t *testing.T) {
	ctx := context.Background()
	embedder := new(MockEmbedder)
	embedder.On("Embed", ctx, mock.Anything).Return(nil, errors.New("rate limited"))

	svc, reportRepo, chunkRepo := newIngestFixture(&stubSource{content: financialText}, embedder)

	reportRepo.On("GetByID", ctx, "report-1").Return(processingReport("report-1"), nil)

	var inserted []domain.Chunk
	chunkRepo.On("InsertBatch", ctx, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]domain.Chunk)
	}).Return(nil)
	reportRepo.On("MarkIndexed", ctx, "report-1", mock.Anything, "openai", "text-embedding-3-small").Return(nil)

	require.NoError(t, svc.Ingest(ctx, "report-1", ""))

	require.NotEmpty(t, inserted)
	for _, c := range inserted {
		assert.Equal(t, []float32{0, 0, 0, 0}, c.Embedding, "failed embeddings become zero vectors")
	}
}

func TestIngestService_Ingest_NonFinancialDocumentFails(t *testing.T) {
	ctx := context.Background()
	embedder := new(MockEmbedder)

	svc, reportRepo, _ := newIngestFixture(&stubSource{content: "A short note about gardening.\n\nTulips bloom in spring."}, embedder)

	reportRepo.On("GetByID", ctx, "report-1").Return(processingReport("report-1"), nil)
	reportRepo.On("UpdateStatus", ctx, "report-1", domain.ReportStatusFailed, mock.Anything).Return(nil)

	err := svc.Ingest(ctx, "report-1", "")
	require.Error(t, err)
	reportRepo.AssertCalled(t, "UpdateStatus", ctx, "report-1", domain.ReportStatusFailed, mock.Anything)
}

func TestIngestService_Ingest_FetchFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	embedder := new(MockEmbedder)

	svc, reportRepo, _ := newIngestFixture(&stubSource{err: errors.New("object not found")}, embedder)

	reportRepo.On("GetByID", ctx, "report-1").Return(processingReport("report-1"), nil)
	reportRepo.On("UpdateStatus", ctx, "report-1", domain.ReportStatusFailed, mock.Anything).Return(nil)

	err := svc.Ingest(ctx, "report-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")
}

func TestIngestService_CreateReport(t *testing.T) {
	ctx := context.Background()
	reportRepo := new(MockReportRepository)
	svc := NewIngestService(reportRepo, &stubSource{}, nil, new(MockEmbedder), nil, chunker.Options{}, 4)

	var created *domain.Report
	reportRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Report)
	}).Return(nil)

	rep, err := svc.CreateReport(ctx, "q3.pdf", "s3://reports/q3.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypePDF, rep.FileType)
	assert.Equal(t, domain.ReportStatusProcessing, rep.ProcessingStatus)
	assert.NotEmpty(t, rep.ID)
	assert.Same(t, rep, created)
}

func TestIngestService_CreateReport_EnqueuesJob(t *testing.T) {
	ctx := context.Background()
	reportRepo := new(MockReportRepository)
	jobRepo := new(MockIngestJobRepository)
	svc := NewIngestServiceWithQueue(reportRepo, &stubSource{}, nil, new(MockEmbedder), nil, jobRepo, chunker.Options{}, 4)

	reportRepo.On("Create", ctx, mock.Anything).Return(nil)

	var job *domain.IngestJob
	jobRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		job = args.Get(1).(*domain.IngestJob)
	}).Return(nil)

	rep, err := svc.CreateReport(ctx, "balance.csv", "/tmp/balance.csv")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, rep.ID, job.ReportID)
	assert.Equal(t, domain.IngestJobStatusPending, job.Status)
	assert.NotEqual(t, rep.ID, job.ID)
}

func TestIngestService_CreateReport_EnqueueFailure(t *testing.T) {
	ctx := context.Background()
	reportRepo := new(MockReportRepository)
	jobRepo := new(MockIngestJobRepository)
	svc := NewIngestServiceWithQueue(reportRepo, &stubSource{}, nil, new(MockEmbedder), nil, jobRepo, chunker.Options{}, 4)

	reportRepo.On("Create", ctx, mock.Anything).Return(nil)
	jobRepo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

	_, err := svc.CreateReport(ctx, "balance.csv", "/tmp/balance.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enqueue ingest job")
}

func TestIngestService_CreateReport_UnsupportedExtension(t *testing.T) {
	svc := NewIngestService(new(MockReportRepository), &stubSource{}, nil, new(MockEmbedder), nil, chunker.Options{}, 4)

	_, err := svc.CreateReport(context.Background(), "slides.pptx", "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileTypeFromName(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.FileType
	}{
		{"report.PDF", domain.FileTypePDF},
		{"notes.txt", domain.FileTypeTXT},
		{"data.csv", domain.FileTypeCSV},
		{"metrics.json", domain.FileTypeJSON},
		{"filing.html", domain.FileTypeHTML},
		{"index.htm", domain.FileTypeHTML},
	}
	for _, tc := range tests {
		got, err := FileTypeFromName(tc.filename)
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.want, got)
	}
}
