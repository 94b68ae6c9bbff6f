package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inventory-rest-api/internal/lock"
	"inventory-rest-api/internal/middleware"
	"inventory-rest-api/internal/model"
	"inventory-rest-api/internal/repository"
	"inventory-rest-api/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *InventoryService
	repo     *repository.FileInventoryRepository
	activity *repository.SQLActivityRepository
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := repository.NewFileInventoryRepository(dir, lock.NewMemoryLocker())
	require.NoError(t, err)

	activity, err := repository.NewSQLiteActivityRepository(filepath.Join(dir, "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = activity.Close() })

	return &fixture{
		svc:      NewInventoryService(repo, activity),
		repo:     repo,
		activity: activity,
		dir:      dir,
	}
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil))
	return buf.Bytes()
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok, "expected *apierror.Error, got %T: %v", err, err)
	return apiErr.StatusCode
}

func TestNewInventoryService_RequiresRepo(t *testing.T) {
	assert.Nil(t, NewInventoryService(nil, nil))
}

func TestIncludePhoto(t *testing.T) {
	for _, flag := range []string{"1", "on", "true"} {
		assert.True(t, IncludePhoto(flag), flag)
	}
	for _, flag := range []string{"", "0", "off", "false", "TRUE", "yes"} {
		assert.False(t, IncludePhoto(flag), flag)
	}
}

func TestRegister_WithoutPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Register(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "/inventory/1/photo", item.PhotoReference)

	exists, err := f.repo.PhotoExists(item.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegister_WithPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.svc.Register(ctx, "Drill", "", bytes.NewReader(jpegBytes(t)))
	require.NoError(t, err)

	exists, err := f.repo.PhotoExists(item.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	activity, total, err := f.svc.ListActivity(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, model.ActionPhotoUpdate, activity[0].Action)
	assert.Equal(t, model.ActionRegister, activity[1].Action)
}

func TestRegister_MissingName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), "", "desc", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRegister_InvalidPhotoCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), "Drill", "", strings.NewReader("not a jpeg"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	items, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Drill", "", nil)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = f.svc.Get(ctx, 404)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, model.ItemPatch{Description: "18V cordless"})
	require.NoError(t, err)
	assert.Equal(t, "Drill", updated.InventoryName)
	assert.Equal(t, "18V cordless", updated.Description)

	_, err = f.svc.Update(ctx, 99, model.ItemPatch{InventoryName: "x"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdateAndDelete_RecordOnlyRealChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, model.ItemPatch{Description: "Cordless"})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, model.ItemPatch{InventoryName: "   "})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, 404))

	_, total, err := f.svc.ListActivity(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = f.svc.Update(ctx, created.ID, model.ItemPatch{Description: "18V"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, created.ID))
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	activity, total, err := f.svc.ListActivity(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, model.ActionDelete, activity[0].Action)
	assert.Equal(t, model.ActionUpdate, activity[1].Action)
}

func TestReplacePhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Drill", "", nil)
	require.NoError(t, err)

	err = f.svc.ReplacePhoto(ctx, created.ID, nil)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	err = f.svc.ReplacePhoto(ctx, 77, bytes.NewReader(jpegBytes(t)))
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	require.NoError(t, f.svc.ReplacePhoto(ctx, created.ID, bytes.NewReader(jpegBytes(t))))

	file, err := f.svc.OpenPhoto(ctx, created.ID)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes(t), data)
}

func TestOpenPhoto_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.OpenPhoto(context.Background(), 3)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestDelete_IdempotentAndKeepsPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Drill", "", bytes.NewReader(jpegBytes(t)))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	require.NoError(t, f.svc.Delete(ctx, created.ID))
	require.NoError(t, f.svc.Delete(ctx, 12345))

	_, err = f.svc.Get(ctx, created.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	exists, err := f.repo.PhotoExists(created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)
	saw, err := f.svc.Register(ctx, "Saw", "", nil)
	require.NoError(t, err)

	got, err := f.svc.Search(ctx, saw.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.ItemSummary{ID: 2, InventoryName: "Saw", Description: ""}, got)

	got, err = f.svc.Search(ctx, saw.ID, true)
	require.NoError(t, err)
	assert.Equal(t, saw, got)

	_, err = f.svc.Search(ctx, 9, true)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestCorruptStorageIsInternalError(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "inventory.json"), []byte("[{"), 0o644))

	_, err := f.svc.List(context.Background())
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestActivityCarriesRequestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

	_, err := f.svc.Register(ctx, "Drill", "", nil)
	require.NoError(t, err)

	activity, _, err := f.svc.ListActivity(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, "req-42", activity[0].RequestID)
	assert.Equal(t, "Drill", activity[0].Detail)
}

func TestListActivity_NotConfigured(t *testing.T) {
	repo, err := repository.NewFileInventoryRepository(t.TempDir(), nil)
	require.NoError(t, err)
	svc := NewInventoryService(repo, nil)

	_, err = svc.Register(context.Background(), "Drill", "", nil)
	require.NoError(t, err)

	_, _, err = svc.ListActivity(context.Background(), 10, 0)
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
}

func TestScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	drill, err := f.svc.Register(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), drill.ID)

	saw, err := f.svc.Register(ctx, "Saw", "", nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), saw.ID)
	require.Equal(t, "", saw.Description)

	updated, err := f.svc.Update(ctx, 1, model.ItemPatch{Description: "18V cordless"})
	require.NoError(t, err)
	require.Equal(t, "18V cordless", updated.Description)

	require.NoError(t, f.svc.Delete(ctx, 1))

	items, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)

	found, err := f.svc.Search(ctx, 2, IncludePhoto("0"))
	require.NoError(t, err)
	assert.Equal(t, model.ItemSummary{ID: 2, InventoryName: "Saw", Description: ""}, found)
}
