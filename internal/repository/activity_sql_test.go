package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"inventory-rest-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActivityRepo(t *testing.T) *SQLActivityRepository {
	t.Helper()
	repo, err := NewSQLiteActivityRepository(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLActivity_InsertAndList(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	for i, action := range []string{model.ActionRegister, model.ActionUpdate, model.ActionDelete} {
		a := &model.Activity{ItemID: int64(i + 1), Action: action, RequestID: "req"}
		require.NoError(t, repo.Insert(ctx, a))
		assert.NotZero(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	}

	got, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 2)
	assert.Equal(t, model.ActionDelete, got[0].Action)
	assert.Equal(t, model.ActionUpdate, got[1].Action)
	assert.Equal(t, "req", got[0].RequestID)

	got, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.ActionRegister, got[0].Action)
	assert.Equal(t, int64(1), got[0].ItemID)
}

func TestSQLActivity_ListEmpty(t *testing.T) {
	repo := newTestActivityRepo(t)

	got, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLActivity_DeleteOlderThan(t *testing.T) {
	repo := newTestActivityRepo(t)
	ctx := context.Background()

	old := &model.Activity{ItemID: 1, Action: model.ActionRegister, CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &model.Activity{ItemID: 2, Action: model.ActionRegister}
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	got, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(2), got[0].ItemID)
}

func TestRebind(t *testing.T) {
	pg := &SQLActivityRepository{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &SQLActivityRepository{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
