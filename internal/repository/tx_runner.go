package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-labs/finrag/internal/service"
)

// TxRunner provides transaction-bound repositories over a pgx pool.
// The store/delete/reindex paths use it so a reader only ever sees a
// complete old or complete new chunk set.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	repos := &txRepos{tx: tx}
	if err := fn(repos); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

type txRepos struct {
	tx pgx.Tx
}

func (r *txRepos) Reports() service.ReportRepositoryInterface {
	return NewReportRepositoryWithTx(r.tx)
}

func (r *txRepos) Chunks() service.ChunkRepositoryInterface {
	return NewChunkRepositoryWithTx(r.tx)
}
