package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/pagination"
	"github.com/finsight-labs/finrag/internal/service"
)

type ReportRepository struct {
	db dbtx
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: pool}
}

func NewReportRepositoryWithTx(tx pgx.Tx) *ReportRepository {
	return &ReportRepository{db: tx}
}

const reportColumns = `id, filename, source_path, file_type, upload_date, processing_status,
	error_message, embedding_provider, embedding_model, chunks_created, created_at, updated_at`

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reports
			(id, filename, source_path, file_type, upload_date, processing_status,
			 error_message, embedding_provider, embedding_model, chunks_created, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rep.ID, rep.Filename, nullableString(rep.SourcePath), rep.FileType, rep.UploadDate,
		rep.ProcessingStatus, nullableString(rep.ErrorMessage),
		nullableString(rep.EmbeddingProvider), nullableString(rep.EmbeddingModel),
		rep.ChunksCreated, rep.CreatedAt, rep.UpdatedAt,
	)
	return err
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)

	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *ReportRepository) List(ctx context.Context) ([]*domain.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY upload_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReportRows(rows)
}

func (r *ReportRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.ReportPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+reportColumns+`
			 FROM reports
			 WHERE (upload_date, id) < ($1, $2)
			 ORDER BY upload_date DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+reportColumns+`
			 FROM reports
			 ORDER BY upload_date DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanReportRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.UploadDate)
	}

	return &service.ReportPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// UpdateStatus moves a report between processing states and records
// the failure message, if any.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status domain.ReportStatus, errorMessage string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reports SET processing_status = $2, error_message = $3, updated_at = $4 WHERE id = $1`,
		id, status, nullableString(errorMessage), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// MarkIndexed records a successful indexing pass: chunk count, the
// provider/model that embedded it, and the indexed status.
func (r *ReportRepository) MarkIndexed(ctx context.Context, id string, chunksCreated int, provider, model string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reports
		 SET processing_status = $2, chunks_created = $3, embedding_provider = $4,
		     embedding_model = $5, error_message = NULL, updated_at = $6
		 WHERE id = $1`,
		id, domain.ReportStatusIndexed, chunksCreated, provider, model, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rep domain.Report
	var sourcePath, errorMessage, provider, model *string
	err := row.Scan(
		&rep.ID, &rep.Filename, &sourcePath, &rep.FileType, &rep.UploadDate,
		&rep.ProcessingStatus, &errorMessage, &provider, &model,
		&rep.ChunksCreated, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sourcePath != nil {
		rep.SourcePath = *sourcePath
	}
	if errorMessage != nil {
		rep.ErrorMessage = *errorMessage
	}
	if provider != nil {
		rep.EmbeddingProvider = *provider
	}
	if model != nil {
		rep.EmbeddingModel = *model
	}
	return &rep, nil
}

func scanReportRows(rows pgx.Rows) ([]*domain.Report, error) {
	var results []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rep)
	}
	return results, rows.Err()
}
