package repository

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ValidatePhoto checks that rs starts with a decodable JPEG header and
// rewinds it.
func ValidatePhoto(rs io.ReadSeeker) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if _, err := jpeg.DecodeConfig(rs); err != nil {
		return fmt.Errorf("%w: photo is not a valid JPEG: %v", ErrValidation, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// PhotoPath returns the blob location for id. It does not check existence.
func (r *FileInventoryRepository) PhotoPath(id int64) string {
	return filepath.Join(r.photoDir, strconv.FormatInt(id, 10)+photoExt)
}

// PhotoExists reports whether a photo blob is stored for id.
func (r *FileInventoryRepository) PhotoExists(id int64) (bool, error) {
	fi, err := os.Stat(r.PhotoPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

// WritePhoto stages src in the photo dir, checks it decodes as JPEG and
// renames it over any previous photo for id. Concurrent writers for the
// same id race on the rename; the last one wins.
func (r *FileInventoryRepository) WritePhoto(ctx context.Context, id int64, src io.Reader) (err error) {
	tmp, err := os.CreateTemp(r.photoDir, ".upload-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: photo is empty", ErrValidation)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if err = ValidatePhoto(tmp); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err = os.Rename(tmpPath, r.PhotoPath(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// OpenPhoto opens the photo blob for id.
func (r *FileInventoryRepository) OpenPhoto(id int64) (*os.File, error) {
	f, err := os.Open(r.PhotoPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no photo for item %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open photo %d: %w", id, err)
	}
	return f, nil
}

// RemovePhoto deletes the photo for id. It is not an error if there is none.
func (r *FileInventoryRepository) RemovePhoto(id int64) error {
	err := os.Remove(r.PhotoPath(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// PhotoIDs lists ids with a stored photo in ascending order. Staged uploads
// and foreign files are skipped.
func (r *FileInventoryRepository) PhotoIDs() ([]int64, error) {
	entries, err := os.ReadDir(r.photoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo dir: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), photoExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), photoExt), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
