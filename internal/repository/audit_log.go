package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-labs/finrag/internal/domain"
)

// AuditLogRepository stores query audit records for usage review.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) (string, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO audit_logs
			(query_text, query_type, provider_name, provider_model, report_id,
			 chunks_used, response_length, processing_time_ms, success, error_message, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		entry.QueryText, entry.QueryType,
		nullableString(entry.ProviderName), nullableString(entry.ProviderModel),
		nullableString(entry.ReportID), entry.ChunksUsed, entry.ResponseLength,
		entry.ProcessingTimeMS, entry.Success, nullableString(entry.ErrorMessage),
		nullableString(entry.SessionID), createdAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, query_text, query_type, provider_name, provider_model, report_id,
		        chunks_used, response_length, processing_time_ms, success, error_message, session_id, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var providerName, providerModel, reportID, errorMessage, sessionID *string
		err := rows.Scan(
			&a.ID, &a.QueryText, &a.QueryType, &providerName, &providerModel, &reportID,
			&a.ChunksUsed, &a.ResponseLength, &a.ProcessingTimeMS, &a.Success,
			&errorMessage, &sessionID, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if providerName != nil {
			a.ProviderName = *providerName
		}
		if providerModel != nil {
			a.ProviderModel = *providerModel
		}
		if reportID != nil {
			a.ReportID = *reportID
		}
		if errorMessage != nil {
			a.ErrorMessage = *errorMessage
		}
		if sessionID != nil {
			a.SessionID = *sessionID
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}
