package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"inventory-rest-api/internal/lock"
	"inventory-rest-api/internal/model"
)

const (
	inventoryFileName = "inventory.json"
	sequenceFileName  = "inventory.seq"
	photoDirName      = "photos"
	photoExt          = ".jpg"
)

// FileInventoryRepository implements InventoryRepository on a flat JSON file
// plus a directory of JPEG blobs named by item id.
//
// Every Create/Update/Delete runs its load-mutate-save cycle inside one
// locker scope. Reads take no lock; Save replaces the file by rename, so a
// reader sees either the previous or the next collection, never a mix.
type FileInventoryRepository struct {
	root     string
	dataPath string
	seqPath  string
	photoDir string
	locker   lock.Locker
}

// NewFileInventoryRepository creates the cache layout under root if needed.
// Calling it again on an existing root leaves the data untouched.
func NewFileInventoryRepository(root string, locker lock.Locker) (*FileInventoryRepository, error) {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}

	r := &FileInventoryRepository{
		root:     root,
		dataPath: filepath.Join(root, inventoryFileName),
		seqPath:  filepath.Join(root, sequenceFileName),
		photoDir: filepath.Join(root, photoDirName),
		locker:   locker,
	}

	if err := os.MkdirAll(r.photoDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo dir: %w", err)
	}

	_, err := os.Stat(r.dataPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := writeFileAtomic(r.dataPath, []byte("[]")); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", inventoryFileName, err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat %s: %w", inventoryFileName, err)
	}

	log.Printf("[FileInventoryRepository] Initialized with cache dir: %s", root)
	return r, nil
}

// Root returns the cache directory.
func (r *FileInventoryRepository) Root() string {
	return r.root
}

// Load returns every item in insertion order. Nothing is cached.
func (r *FileInventoryRepository) Load(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", inventoryFileName, err)
	}

	return decodeItems(data)
}

// decodeItems parses inventory.json and recomputes the derived photo reference.
func decodeItems(data []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	if items == nil {
		items = []model.Item{}
	}
	for i := range items {
		items[i].PhotoReference = model.PhotoReferenceFor(items[i].ID)
	}
	return items, nil
}

// Save replaces the persisted collection with items.
func (r *FileInventoryRepository) Save(ctx context.Context, items []model.Item) error {
	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return r.save(items)
}

// save writes items without taking the lock; callers hold it.
func (r *FileInventoryRepository) save(items []model.Item) error {
	out := make([]model.Item, len(items))
	for i, item := range items {
		item.PhotoReference = model.PhotoReferenceFor(item.ID)
		out[i] = item
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if err := writeFileAtomic(r.dataPath, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// NextID returns 1 for an empty collection, otherwise the largest id plus one.
func NextID(items []model.Item) int64 {
	var max int64
	for _, item := range items {
		if item.ID > max {
			max = item.ID
		}
	}
	return max + 1
}

// Create validates name, assigns the next id and appends the item.
// Ids are never handed out twice: the highest id ever assigned is kept in
// inventory.seq, so deleting the newest item does not free its id.
func (r *FileInventoryRepository) Create(ctx context.Context, name, description string) (*model.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: inventory_name is required", ErrValidation)
	}

	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	id := NextID(items)
	if last := r.readSequence(); last >= id {
		id = last + 1
	}

	item := model.Item{
		ID:             id,
		InventoryName:  name,
		Description:    description,
		PhotoReference: model.PhotoReferenceFor(id),
	}

	if err := r.save(append(items, item)); err != nil {
		return nil, err
	}

	// The item is already committed; a stale sequence only matters if the
	// newest item is deleted before the next successful create.
	if err := r.writeSequence(id); err != nil {
		log.Printf("[FileInventoryRepository] Warning: failed to persist id sequence %d: %v", id, err)
	}

	return &item, nil
}

// FindByID returns the first item with the given id, or nil, nil.
func (r *FileInventoryRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == id {
			item := items[i]
			return &item, nil
		}
	}
	return nil, nil
}

// Update applies the non-blank fields of patch to the item with the given id.
// The file is rewritten only when something changed.
func (r *FileInventoryRepository) Update(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, bool, error) {
	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	items, err := r.Load(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}

		changed := patch.Apply(&items[i])
		if changed {
			if err := r.save(items); err != nil {
				return nil, false, err
			}
		}

		item := items[i]
		return &item, changed, nil
	}
	return nil, false, nil
}

// Delete removes every item with the given id. Deleting an unknown id is a
// no-op and reports false.
func (r *FileInventoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	items, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	if len(kept) == len(items) {
		return false, nil
	}
	if err := r.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// LastAssignedID returns the id high-water mark kept in inventory.seq.
func (r *FileInventoryRepository) LastAssignedID() int64 {
	return r.readSequence()
}

// GetStats returns statistics about the store.
func (r *FileInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	items, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]interface{})
	stats["total_items"] = len(items)
	stats["next_id"] = NextID(items)
	stats["last_assigned_id"] = r.LastAssignedID()
	stats["cache_dir"] = r.root

	if fi, err := os.Stat(r.dataPath); err == nil {
		stats["inventory_file_bytes"] = fi.Size()
	}

	if ids, err := r.PhotoIDs(); err == nil {
		stats["photo_count"] = len(ids)
	}

	return stats, nil
}

// readSequence returns the highest id recorded in inventory.seq, or 0.
func (r *FileInventoryRepository) readSequence() int64 {
	data, err := os.ReadFile(r.seqPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[FileInventoryRepository] Warning: failed to read id sequence: %v", err)
		}
		return 0
	}

	last, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		log.Printf("[FileInventoryRepository] Warning: ignoring malformed id sequence %q", data)
		return 0
	}
	return last
}

func (r *FileInventoryRepository) writeSequence(id int64) error {
	return writeFileAtomic(r.seqPath, []byte(strconv.FormatInt(id, 10)+"\n"))
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Ensure FileInventoryRepository implements InventoryRepository
var _ InventoryRepository = (*FileInventoryRepository)(nil)
