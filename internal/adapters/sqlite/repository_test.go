package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/ports"
)

func createTestRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestInsertListNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := createTestRepo(t)

	a, err := r.Insert(ctx, domain.Document{"yeshivaName": "A", "campaignGoal": "100"})
	require.NoError(t, err)
	b, err := r.Insert(ctx, domain.Document{"yeshivaName": "B", "nested": map[string]any{"k": []any{1, "x"}}})
	require.NoError(t, err)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
	assert.Equal(t, "B", list[0].String("yeshivaName"))
	assert.Equal(t, map[string]any{"k": []any{json.Number("1"), "x"}}, list[0].Body["nested"])
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestListTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := createTestRepo(t)
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return frozen }

	var ids []string
	for _, n := range []string{"first", "second", "third"} {
		d, err := r.Insert(ctx, domain.Document{"n": n})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.True(t, list[0].CreatedAt.Equal(frozen))
}

func TestListEmpty(t *testing.T) {
	list, err := createTestRepo(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := createTestRepo(t)
	d, err := r.Insert(ctx, domain.Document{"x": true})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, d.ID))
	assert.ErrorIs(t, r.Delete(ctx, d.ID), ports.ErrNotFound)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReopenKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")
	r, err := New(path)
	require.NoError(t, err)
	_, err = r.Insert(ctx, domain.Document{"x": "y"})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = New(path)
	require.NoError(t, err)
	defer r.Close()
	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, r.Ping(ctx))
}

func TestNewKeepsCallerQuery(t *testing.T) {
	assert.Equal(t, "a.db?x=1", withParams("a.db", "x=1"))
	assert.Equal(t, "file:a.db?mode=rwc&x=1", withParams("file:a.db?mode=rwc", "x=1"))

	r, err := New("file:" + filepath.Join(t.TempDir(), "q.db") + "?mode=rwc")
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Insert(context.Background(), domain.Document{"x": "y"})
	require.NoError(t, err)
}

func TestClosedStoreFails(t *testing.T) {
	r := createTestRepo(t)
	require.NoError(t, r.Close())
	_, err := r.Insert(context.Background(), domain.Document{"x": 1})
	assert.Error(t, err)
	_, err = r.List(context.Background())
	assert.Error(t, err)
}
