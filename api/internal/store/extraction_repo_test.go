package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *ExtractionRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ocr_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := Open(ctx, fmt.Sprintf("postgres://test:test@%s:%s/ocr_test?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewExtractionRepo(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	// second call must be a no-op
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestExtractionRepoRoundTrip(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()
	hash := "3f2a"

	older := ExtractionRecord{
		CreatedAt:    time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
		ImageSHA256:  hash,
		ImageBytes:   2048,
		Engine:       "vision",
		Outcome:      "error",
		ProcessingMS: 120,
		Error:        "Vision API error: quota exceeded",
	}
	newer := ExtractionRecord{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		ImageSHA256:  hash,
		ImageBytes:   2048,
		Engine:       "vision",
		Outcome:      "text",
		ProcessingMS: 87,
		TextLength:   11,
	}
	require.NoError(t, repo.Record(ctx, older))
	require.NoError(t, repo.Record(ctx, newer))
	require.NoError(t, repo.Record(ctx, ExtractionRecord{ImageSHA256: "other", Engine: "gemini", Outcome: "empty"}))

	got, err := repo.ByImageHash(ctx, hash, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, "text", got[0].Outcome)
	assert.Equal(t, 11, got[0].TextLength)
	assert.Empty(t, got[0].Error)
	assert.True(t, newer.CreatedAt.Equal(got[0].CreatedAt))

	assert.NotEqual(t, uuid.Nil, got[1].ID)
	assert.Equal(t, "error", got[1].Outcome)
	assert.Equal(t, "Vision API error: quota exceeded", got[1].Error)
	assert.Equal(t, int64(120), got[1].ProcessingMS)
}

func TestExtractionRepoRecordSurvivesCanceledContext(t *testing.T) {
	repo := setupPostgres(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, repo.Record(ctx, ExtractionRecord{ImageSHA256: "abc", Engine: "vision", Outcome: "empty"}))

	got, err := repo.ByImageHash(context.Background(), "abc", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "boom", nullIfEmpty("boom"))
}
