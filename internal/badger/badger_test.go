package badger

import (
	"context"
	"testing"

	"github.com/rpggio/rerx/internal/repository"
	"github.com/stretchr/testify/require"
)

func openInMemory(t *testing.T) *BlobStore {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBlobStore_LoadMissing(t *testing.T) {
	s := openInMemory(t)

	_, err := s.Load(context.Background(), "absent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBlobStore_SaveOverwrites(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "projects", []byte("one")))
	require.NoError(t, s.Save(ctx, "projects", []byte("two")))

	data, err := s.Load(ctx, "projects")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), data)
}

func TestBlobStore_PersistsAcrossReopen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.GCInterval = 0
	ctx := context.Background()

	s, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "projects", []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load(ctx, "projects")
	require.NoError(t, err)
	require.Equal(t, []byte(`[]`), data)
}

func TestBlobStore_GCRunnerStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir()

	s, err := Open(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.stopGC)
	require.NoError(t, s.Close())
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(DefaultConfig())
	require.Error(t, err)
}

func TestBlobStore_CanceledContext(t *testing.T) {
	s := openInMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Save(ctx, "k", []byte("v")), context.Canceled)
	_, err := s.Load(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBlobStore_SaveAfterClose(t *testing.T) {
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Save(context.Background(), "k", []byte("v"))
	require.Error(t, err)
}

func TestBlobStore_EmptyKey(t *testing.T) {
	s := openInMemory(t)
	require.ErrorIs(t, s.Save(context.Background(), "", []byte("v")), repository.ErrInvalidInput)
}
