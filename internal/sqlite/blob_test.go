package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/rerx/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestBlobRepository_LoadMissing(t *testing.T) {
	repo := NewBlobRepository(NewTestDB(t))

	_, err := repo.Load(context.Background(), "absent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBlobRepository_SaveOverwrites(t *testing.T) {
	repo := NewBlobRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "projects", []byte(`[{"id":"a"}]`)))
	require.NoError(t, repo.Save(ctx, "projects", []byte(`[{"id":"b"}]`)))

	data, err := repo.Load(ctx, "projects")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"b"}]`, string(data))

	var rows int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM kv_blobs`).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestBlobRepository_KeysAreIndependent(t *testing.T) {
	repo := NewBlobRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "a", []byte("1")))
	require.NoError(t, repo.Save(ctx, "b", []byte("2")))

	a, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("1"), a)
}

func TestBlobRepository_CanceledContext(t *testing.T) {
	repo := NewBlobRepository(NewTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, repo.Save(ctx, "k", []byte("v")))
}

func TestBlobRepository_EmptyKey(t *testing.T) {
	repo := NewBlobRepository(NewTestDB(t))
	require.ErrorIs(t, repo.Save(context.Background(), "", []byte("v")), repository.ErrInvalidInput)
}
