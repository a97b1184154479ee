// Package repository persists reports, chunks, and audit logs in
// Postgres via pgx.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx, so
// every repository works both pooled and transaction-bound.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
