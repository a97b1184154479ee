package service

import (
	"context"
	"io"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/finsight-labs/finrag/internal/agents"
	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/pagination"
	"github.com/finsight-labs/finrag/internal/search"
)

// MockReportRepository is a mock implementation of ReportRepositoryInterface
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, r *domain.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Report), args.Error(1)
}

func (m *MockReportRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ReportPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReportPageResult), args.Error(1)
}

func (m *MockReportRepository) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *MockReportRepository) MarkIndexed(ctx context.Context, id string, chunksCreated int, provider, model string) error {
	args := m.Called(ctx, id, chunksCreated, provider, model)
	return args.Error(0)
}

func (m *MockReportRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteByReport(ctx context.Context, reportID string) (int64, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChunkRepository) ListByReport(ctx context.Context, reportID string) ([]domain.Chunk, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) CountByReport(ctx context.Context, reportID string) (int, error) {
	args := m.Called(ctx, reportID)
	return args.Int(0), args.Error(1)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepositoryInterface
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

// MockIngestJobRepository is a mock implementation of IngestJobRepositoryInterface
type MockIngestJobRepository struct {
	mock.Mock
}

func (m *MockIngestJobRepository) Create(ctx context.Context, job *domain.IngestJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockEmbedder is a mock implementation of Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Name() domain.Provider {
	return domain.ProviderOpenAI
}

func (m *MockEmbedder) EmbeddingModel() string {
	return "text-embedding-3-small"
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockSearchEngine is a mock implementation of SearchEngineInterface
type MockSearchEngine struct {
	mock.Mock
}

func (m *MockSearchEngine) Search(ctx context.Context, query []float32, opts search.Options) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func (m *MockSearchEngine) HybridSearch(ctx context.Context, query []float32, opts search.Options) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

// stubTxRunner hands the test's repositories straight to the callback,
// standing in for a real transaction.
type stubTxRunner struct {
	reports ReportRepositoryInterface
	chunks  ChunkRepositoryInterface
	err     error
}

func (r *stubTxRunner) WithTx(_ context.Context, fn func(repos TxRepositories) error) error {
	if r.err != nil {
		return r.err
	}
	return fn(r)
}

func (r *stubTxRunner) Reports() ReportRepositoryInterface { return r.reports }
func (r *stubTxRunner) Chunks() ChunkRepositoryInterface   { return r.chunks }

// stubSource serves document bytes from memory.
type stubSource struct {
	content string
	err     error
}

func (s *stubSource) Fetch(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}

// stubOrchestrator is a canned OrchestratorInterface.
type stubOrchestrator struct {
	result      agents.Result
	multiResult agents.MultiResult
	lastContext string
	lastQuery   string
	resets      int
}

func (s *stubOrchestrator) Execute(_ context.Context, query, contextText string, _ bool) agents.Result {
	s.lastQuery = query
	s.lastContext = contextText
	return s.result
}

func (s *stubOrchestrator) ExecuteMulti(_ context.Context, query, contextText string, _ []string) agents.MultiResult {
	s.lastQuery = query
	s.lastContext = contextText
	return s.multiResult
}

func (s *stubOrchestrator) Reset()                              { s.resets++ }
func (s *stubOrchestrator) History() []domain.ConversationEntry { return nil }
func (s *stubOrchestrator) AgentInfo() map[string]string        { return nil }
