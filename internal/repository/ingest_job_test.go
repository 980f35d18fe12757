//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob(ticker string) *domain.IngestJob {
	return &domain.IngestJob{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Depth:     3,
		Status:    domain.IngestJobStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestIngestJobRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newTestJob("AAPL")
	require.NoError(t, repo.Create(ctx, job))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Ticker, retrieved.Ticker)
	assert.Equal(t, job.Depth, retrieved.Depth)
	assert.Equal(t, domain.IngestJobStatusPending, retrieved.Status)
	assert.Nil(t, retrieved.ProcessedAt)
}

func TestIngestJobRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestIngestJobRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	older := newTestJob("AAPL")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, older))

	newer := newTestJob("NVDA")
	require.NoError(t, repo.Create(ctx, newer))

	claimed, err := repo.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, older.ID, claimed[0].ID)
	assert.Equal(t, domain.IngestJobStatusProcessing, claimed[0].Status)

	// The claimed job is no longer pending, so a second claim picks the other.
	claimed, err = repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, newer.ID, claimed[0].ID)
}

func TestIngestJobRepository_ClaimPending_Empty(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	claimed, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestIngestJobRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newTestJob("AAPL")
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, "ticker not found"))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusFailed, retrieved.Status)
	assert.Equal(t, "ticker not found", retrieved.Error)
	require.NotNil(t, retrieved.ProcessedAt)

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""))

	retrieved, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusCompleted, retrieved.Status)
	assert.Empty(t, retrieved.Error)
}

func TestIngestJobRepository_IncrementRetries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewIngestJobRepository(pool)

	job := newTestJob("AAPL")
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.IncrementRetries(ctx, job.ID))
	require.NoError(t, repo.IncrementRetries(ctx, job.ID))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), retrieved.Retries)
}
