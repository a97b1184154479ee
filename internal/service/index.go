package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/finsight-labs/finrag/internal/chunker"
	"github.com/finsight-labs/finrag/internal/domain"
)

// IndexService owns the embedded chunk set of each report. Store,
// Delete, and Reindex are the only writers; each runs in a single
// transaction so a concurrent reader sees either the old complete
// chunk set or the new one, never a mix.
type IndexService struct {
	txRunner  TxRunner
	chunkRepo ChunkRepositoryInterface
	uuidGen   UUIDGenerator
}

func NewIndexService(txRunner TxRunner, chunkRepo ChunkRepositoryInterface) *IndexService {
	return &IndexService{
		txRunner:  txRunner,
		chunkRepo: chunkRepo,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

func NewIndexServiceWithUUIDGen(txRunner TxRunner, chunkRepo ChunkRepositoryInterface, uuidGen UUIDGenerator) *IndexService {
	return &IndexService{txRunner: txRunner, chunkRepo: chunkRepo, uuidGen: uuidGen}
}

// Store persists each chunk/embedding pair and marks the report
// indexed, all in one transaction. It requires one embedding per
// chunk and returns how many rows were written.
func (s *IndexService) Store(ctx context.Context, reportID string, pieces []chunker.Piece, embeddings [][]float32, provider, model string) (int, error) {
	if len(pieces) != len(embeddings) {
		return 0, domain.ErrChunkEmbeddingLength
	}

	rows := s.buildChunks(reportID, pieces, embeddings, model)

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Chunks().InsertBatch(ctx, rows); err != nil {
			return err
		}
		return repos.Reports().MarkIndexed(ctx, reportID, len(rows), provider, model)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}

	log.Printf("stored %d embeddings for report %s", len(rows), reportID)
	return len(rows), nil
}

// Delete removes every chunk of a report. Deleting a report with no
// chunks returns 0, not an error.
func (s *IndexService) Delete(ctx context.Context, reportID string) (int64, error) {
	deleted, err := s.chunkRepo.DeleteByReport(ctx, reportID)
	if err != nil {
		return 0, err
	}
	log.Printf("deleted %d embeddings for report %s", deleted, reportID)
	return deleted, nil
}

// Reindex replaces a report's chunk set, for example after switching
// embedding providers. Old and new chunks never coexist: the delete
// and insert share one transaction.
func (s *IndexService) Reindex(ctx context.Context, reportID string, pieces []chunker.Piece, embeddings [][]float32, provider, model string) (int, error) {
	if len(pieces) != len(embeddings) {
		return 0, domain.ErrChunkEmbeddingLength
	}

	rows := s.buildChunks(reportID, pieces, embeddings, model)

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if _, err := repos.Chunks().DeleteByReport(ctx, reportID); err != nil {
			return err
		}
		if err := repos.Chunks().InsertBatch(ctx, rows); err != nil {
			return err
		}
		return repos.Reports().MarkIndexed(ctx, reportID, len(rows), provider, model)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}

	log.Printf("re-indexed report %s with %d embeddings", reportID, len(rows))
	return len(rows), nil
}

func (s *IndexService) buildChunks(reportID string, pieces []chunker.Piece, embeddings [][]float32, model string) []domain.Chunk {
	now := time.Now().UTC()
	rows := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		sectionType := p.SectionType
		if sectionType == "" {
			sectionType = "text"
		}
		rows = append(rows, domain.Chunk{
			ID:             s.uuidGen.NewString(),
			ReportID:       reportID,
			Text:           p.Text,
			ChunkIndex:     p.ChunkIndex,
			PageNumber:     p.PageNumber,
			SectionType:    sectionType,
			Embedding:      embeddings[i],
			EmbeddingModel: model,
			CreatedAt:      now,
		})
	}
	return rows
}
