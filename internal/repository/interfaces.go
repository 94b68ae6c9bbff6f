package repository

import (
	"context"
	"io"
	"os"
	"time"

	"inventory-rest-api/internal/model"
)

// InventoryRepository defines inventory record and photo access methods.
type InventoryRepository interface {
	// Load returns every item in insertion order, re-read from disk.
	Load(ctx context.Context) ([]model.Item, error)

	// Save replaces the whole collection.
	Save(ctx context.Context, items []model.Item) error

	// Create validates and appends a new item with the next id.
	Create(ctx context.Context, name, description string) (*model.Item, error)

	// FindByID returns nil, nil when no item has the id.
	FindByID(ctx context.Context, id int64) (*model.Item, error)

	// Update applies the non-blank fields of patch and reports whether the
	// stored item changed. Returns nil, false, nil when absent.
	Update(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, bool, error)

	// Delete removes the item and reports whether it existed.
	// Missing ids are not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// LastAssignedID returns the highest id ever handed out, or 0.
	LastAssignedID() int64

	// PhotoPath returns where the photo for id lives, whether or not it exists.
	PhotoPath(id int64) string

	// PhotoExists probes the photo location.
	PhotoExists(id int64) (bool, error)

	// WritePhoto stores src as the photo of id, replacing any previous one.
	WritePhoto(ctx context.Context, id int64, src io.Reader) error

	// OpenPhoto opens the photo of id. Returns ErrNotFound when absent.
	OpenPhoto(id int64) (*os.File, error)

	// RemovePhoto deletes the photo of id. A missing photo is not an error.
	RemovePhoto(id int64) error

	// PhotoIDs lists the ids that have a photo on disk.
	PhotoIDs() ([]int64, error)

	// GetStats returns statistics about the store.
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// ActivityRepository defines the audit trail of inventory mutations.
type ActivityRepository interface {
	// Insert appends an activity row. CreatedAt defaults to now.
	Insert(ctx context.Context, a *model.Activity) error

	// List returns activity newest first along with the total row count.
	List(ctx context.Context, limit, offset int) ([]model.Activity, int64, error)

	// DeleteOlderThan removes rows older than age and reports how many.
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// Close closes the repository connection.
	Close() error
}
