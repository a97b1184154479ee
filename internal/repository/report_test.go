//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finrag/internal/domain"
	"github.com/finsight-labs/finrag/internal/pagination"
	"github.com/finsight-labs/finrag/internal/testutil"
)

func newTestReport() *domain.Report {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.NewReport(uuid.NewString(), "q3-earnings.pdf", "/data/q3-earnings.pdf", domain.FileTypePDF, now)
}

func TestReportRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	rep := newTestReport()
	require.NoError(t, repo.Create(ctx, rep))

	got, err := repo.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.Filename, got.Filename)
	assert.Equal(t, rep.SourcePath, got.SourcePath)
	assert.Equal(t, domain.FileTypePDF, got.FileType)
	assert.Equal(t, domain.ReportStatusProcessing, got.ProcessingStatus)
	assert.Equal(t, 0, got.ChunksCreated)
}

func TestReportRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportRepository_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	rep := newTestReport()
	require.NoError(t, repo.Create(ctx, rep))

	require.NoError(t, repo.MarkIndexed(ctx, rep.ID, 12, "openai", "text-embedding-3-small"))

	got, err := repo.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusIndexed, got.ProcessingStatus)
	assert.Equal(t, 12, got.ChunksCreated)
	assert.Equal(t, "openai", got.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-small", got.EmbeddingModel)

	require.NoError(t, repo.UpdateStatus(ctx, rep.ID, domain.ReportStatusFailed, "extraction failed"))

	got, err = repo.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusFailed, got.ProcessingStatus)
	assert.Equal(t, "extraction failed", got.ErrorMessage)
}

func TestReportRepository_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	err := repo.UpdateStatus(ctx, uuid.NewString(), domain.ReportStatusFailed, "boom")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportRepository_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		rep := domain.NewReport(uuid.NewString(), "report.pdf", "", domain.FileTypePDF, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Create(ctx, rep))
	}

	page1, err := repo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	require.NotEmpty(t, page1.NextCursor)

	// newest first
	assert.True(t, page1.Items[0].UploadDate.After(page1.Items[1].UploadDate))

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	assert.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
}

func TestReportRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewReportRepository(pool)

	rep := newTestReport()
	require.NoError(t, repo.Create(ctx, rep))
	require.NoError(t, repo.Delete(ctx, rep.ID))

	_, err := repo.GetByID(ctx, rep.ID)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, rep.ID), domain.ErrReportNotFound)
}
