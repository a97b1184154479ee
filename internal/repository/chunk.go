package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/search"
)

// ChunkRepository handles persistence of embedded report chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// InsertBatch inserts all chunks. Callers that need all-or-nothing
// semantics run it inside a transaction via the tx runner.
func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO report_chunks
				(id, report_id, content, chunk_index, page_number, section_type, embedding, embedding_model, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.ReportID, c.Text, c.ChunkIndex, c.PageNumber,
			nullableString(c.SectionType), pgvector.NewVector(c.Embedding),
			nullableString(c.EmbeddingModel), createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByReport removes every chunk of a report and returns how many
// were removed.
func (r *ChunkRepository) DeleteByReport(ctx context.Context, reportID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM report_chunks WHERE report_id = $1`, reportID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ChunkRepository) ListByReport(ctx context.Context, reportID string) ([]domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, report_id, content, chunk_index, page_number, section_type, embedding, embedding_model, created_at
		 FROM report_chunks WHERE report_id = $1 ORDER BY chunk_index ASC`,
		reportID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func (r *ChunkRepository) CountByReport(ctx context.Context, reportID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM report_chunks WHERE report_id = $1`, reportID).Scan(&n)
	return n, err
}

// Candidates loads chunks with their report filenames for one search
// pass. Rows come back in storage order (insertion time, then chunk
// index) so the ranking tie-break stays stable across calls.
func (r *ChunkRepository) Candidates(ctx context.Context, reportIDs []string) ([]search.Candidate, error) {
	query := `
		SELECT c.id, c.report_id, c.content, c.chunk_index, c.page_number,
		       c.section_type, c.embedding, c.embedding_model, c.created_at,
		       r.filename
		FROM report_chunks c
		JOIN reports r ON r.id = c.report_id`
	args := []any{}

	if len(reportIDs) > 0 {
		query += ` WHERE c.report_id = ANY($1)`
		args = append(args, reportIDs)
	}

	query += ` ORDER BY c.created_at ASC, c.report_id ASC, c.chunk_index ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []search.Candidate
	for rows.Next() {
		var cand search.Candidate
		if err := scanChunk(rows, &cand.Chunk, &cand.ReportFilename); err != nil {
			return nil, err
		}
		results = append(results, cand)
	}
	return results, rows.Err()
}

func scanChunk(rows pgx.Rows, c *domain.Chunk, filename *string) error {
	var sectionType, model *string
	var vec pgvector.Vector

	dest := []any{
		&c.ID, &c.ReportID, &c.Text, &c.ChunkIndex, &c.PageNumber,
		&sectionType, &vec, &model, &c.CreatedAt,
	}
	if filename != nil {
		dest = append(dest, filename)
	}

	if err := rows.Scan(dest...); err != nil {
		return err
	}
	if sectionType != nil {
		c.SectionType = *sectionType
	}
	if model != nil {
		c.EmbeddingModel = *model
	}
	c.Embedding = vec.Slice()
	return nil
}

func scanChunkRows(rows pgx.Rows) ([]domain.Chunk, error) {
	var results []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := scanChunk(rows, &c, nil); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
