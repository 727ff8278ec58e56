package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronotrakr/internal/errors"
	"chronotrakr/internal/repository"
)

var _ repository.Repository = (*SQLiteRepository)(nil)

func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func countRows(t *testing.T, repo *SQLiteRepository) int {
	t.Helper()
	var n int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	return n
}

func TestSQLiteRepository_GetMissingKey(t *testing.T) {
	repo := setupTestDB(t)

	value, ok, err := repo.Get(context.Background(), repository.KeyProjects)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestSQLiteRepository_PutAndGet(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t)

	blob := []byte(`[{"id":"p1","name":"Acme"}]`)
	require.NoError(t, repo.Put(ctx, repository.KeyProjects, blob))

	value, ok, err := repo.Get(ctx, repository.KeyProjects)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, string(blob), string(value))
}

func TestSQLiteRepository_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t)

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return first }
	require.NoError(t, repo.Put(ctx, repository.KeyTasks, []byte(`[]`)))

	second := first.Add(time.Hour)
	repo.now = func() time.Time { return second }
	require.NoError(t, repo.Put(ctx, repository.KeyTasks, []byte(`[{"id":"t1"}]`)))

	record, ok, err := repo.getRecord(ctx, repository.KeyTasks)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"t1"}]`, string(record.Value))
	assert.True(t, second.Equal(record.UpdatedAt))
	assert.Equal(t, 1, countRows(t, repo))
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t)

	require.NoError(t, repo.Put(ctx, repository.KeyProjects, []byte(`[]`)))
	require.NoError(t, repo.Put(ctx, repository.KeyTasks, []byte(`[]`)))
	require.NoError(t, repo.Delete(ctx, repository.KeyProjects))
	require.NoError(t, repo.Delete(ctx, repository.KeyProjects))

	_, ok, err := repo.Get(ctx, repository.KeyProjects)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = repo.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, countRows(t, repo))
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "ct.db")

	repo, err := NewWithOptions(dbPath, Options{
		QueryTimeout:   time.Second,
		WriteTimeout:   time.Second,
		DirPermissions: 0o700,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Put(ctx, repository.KeyTasks, []byte(`[{"id":"t1"}]`)))
	require.NoError(t, repo.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, repository.KeyTasks)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"t1"}]`, string(value))
}

func TestSQLiteRepository_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Put(ctx, repository.KeyTasks, []byte(`[]`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))
}

func TestSQLiteRepository_ClosedDatabase(t *testing.T) {
	repo, err := New(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, _, err = repo.Get(context.Background(), repository.KeyTasks)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeDatabase))
}
