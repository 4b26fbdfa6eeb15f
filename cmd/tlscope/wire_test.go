package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

const testLayer = `///////// Main application API
---types---
user#1 id:int = User;
---functions---
users.getUsers#11 id:Vector<int> = Vector<User>;
`

func memorySettings(t *testing.T) *domain.Settings {
	t.Helper()
	s := domain.DefaultSettings()
	s.Store.Driver = domain.StoreDriverMemory
	s.Source = domain.SourceSettings{Kind: domain.SourceKindDir, Dir: t.TempDir()}
	return &s
}

func TestBuildServices_MemoryStoreWithDirSource(t *testing.T) {
	ctx := context.Background()
	settings := memorySettings(t)
	require.NoError(t, os.WriteFile(filepath.Join(settings.Source.Dir, "1.tl"), []byte(testLayer), 0o600))

	svc, err := buildServices(ctx, settings)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	assert.NotNil(t, svc.Catalogue)
	assert.NotNil(t, svc.Search)
	assert.NotNil(t, svc.Scheduler)
	assert.NotNil(t, svc.Watch, "dir source should be watchable")
	assert.Equal(t, domain.DefaultQueryLimit, svc.DefaultLimit)

	report, err := svc.Ingest.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, report.Added)

	latest, ok := svc.Catalogue.LatestLayerID()
	require.True(t, ok)
	assert.Equal(t, 1, latest)
}

func TestBuildServices_NoSource(t *testing.T) {
	settings := memorySettings(t)
	settings.Source = domain.SourceSettings{Kind: domain.SourceKindNone}
	settings.Ingest.Enabled = false

	svc, err := buildServices(context.Background(), settings)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	assert.Nil(t, svc.Scheduler)
	assert.Nil(t, svc.Watch)

	_, err = svc.Ingest.Ingest(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestBuildServices_UnsupportedDriver(t *testing.T) {
	settings := memorySettings(t)
	settings.Store.Driver = "oracle"

	_, err := buildServices(context.Background(), settings)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestBuildServices_UnsupportedSourceKind(t *testing.T) {
	settings := memorySettings(t)
	settings.Source.Kind = "ftp"

	_, err := buildServices(context.Background(), settings)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestBuildServices_SQLite(t *testing.T) {
	settings := memorySettings(t)
	settings.Store = domain.StoreSettings{Driver: domain.StoreDriverSQLite, DataDir: t.TempDir()}

	svc, err := buildServices(context.Background(), settings)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}
