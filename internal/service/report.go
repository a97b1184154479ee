package service

import (
	"context"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/pagination"
)

// ReportService serves report metadata and lifecycle operations.
type ReportService struct {
	reportRepo ReportRepositoryInterface
	chunkRepo  ChunkRepositoryInterface
}

func NewReportService(reportRepo ReportRepositoryInterface, chunkRepo ChunkRepositoryInterface) *ReportService {
	return &ReportService{reportRepo: reportRepo, chunkRepo: chunkRepo}
}

func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *ReportService) List(ctx context.Context, cursor string, limit int) (*ReportPageResult, error) {
	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return s.reportRepo.ListWithCursor(ctx, decoded, limit)
}

// Chunks returns a report's stored chunks in index order.
func (s *ReportService) Chunks(ctx context.Context, reportID string) ([]domain.Chunk, error) {
	if _, err := s.reportRepo.GetByID(ctx, reportID); err != nil {
		return nil, err
	}
	return s.chunkRepo.ListByReport(ctx, reportID)
}

// Delete removes the report row; its chunks go with it via the
// foreign key cascade.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	return s.reportRepo.Delete(ctx, id)
}
