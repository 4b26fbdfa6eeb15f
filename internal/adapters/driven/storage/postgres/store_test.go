package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
// The test is skipped under -short or when no container runtime is reachable.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tlscope"),
		tcpostgres.WithUsername("tlscope"),
		tcpostgres.WithPassword("tlscope"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestNewLayerStore_EmptyDSN(t *testing.T) {
	_, err := NewLayerStore(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLayerStore_Postgres(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	store, err := NewLayerStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	t.Run("empty", func(t *testing.T) {
		ids, err := store.IDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("add and list", func(t *testing.T) {
		require.NoError(t, store.Add(ctx, domain.RawLayer{
			LayerID: 160, ReleaseYear: 2023, ReleaseMonth: time.July, Text: "b",
		}))
		require.NoError(t, store.Add(ctx, domain.RawLayer{
			LayerID: 158, ReleaseYear: 2023, ReleaseMonth: time.May, Text: "a",
		}))

		layers, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, layers, 2)
		assert.Equal(t, domain.RawLayer{LayerID: 158, ReleaseYear: 2023, ReleaseMonth: time.May, Text: "a"}, layers[0])
		assert.Equal(t, 160, layers[1].LayerID)

		ids, err := store.IDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{158, 160}, ids)
	})

	t.Run("duplicate", func(t *testing.T) {
		err := store.Add(ctx, domain.RawLayer{LayerID: 158, ReleaseYear: 2024, ReleaseMonth: time.January, Text: "x"})
		assert.ErrorIs(t, err, domain.ErrLayerExists)
	})

	t.Run("invalid", func(t *testing.T) {
		err := store.Add(ctx, domain.RawLayer{LayerID: 1, ReleaseYear: 2024})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		again, err := NewLayerStore(ctx, dsn)
		require.NoError(t, err)
		defer again.Close()

		ids, err := again.IDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{158, 160}, ids)
	})
}
