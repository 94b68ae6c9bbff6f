package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"inventory-rest-api/internal/lock"
	"inventory-rest-api/internal/middleware"
	"inventory-rest-api/internal/model"
	"inventory-rest-api/internal/repository"
	"inventory-rest-api/pkg/apierror"
)

// InventoryService handles inventory business logic.
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	activityRepo  repository.ActivityRepository
}

// NewInventoryService creates a new inventory service.
// Returns nil if inventoryRepo is nil (required dependency).
// activityRepo is optional; without it mutations are not audited.
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	activityRepo repository.ActivityRepository,
) *InventoryService {
	if inventoryRepo == nil {
		return nil
	}
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		activityRepo:  activityRepo,
	}
}

// IncludePhoto reports whether a search has_photo flag asks for the full item.
func IncludePhoto(flag string) bool {
	switch flag {
	case "1", "on", "true":
		return true
	}
	return false
}

// Register creates an item and, if photo is non-nil, stores it as the item's
// photo. The photo is checked before the item is created; the item is
// committed before the photo is written.
func (s *InventoryService) Register(ctx context.Context, name, description string, photo io.ReadSeeker) (*model.Item, error) {
	if photo != nil {
		if err := repository.ValidatePhoto(photo); err != nil {
			return nil, mapError(err)
		}
	}

	item, err := s.inventoryRepo.Create(ctx, name, description)
	if err != nil {
		return nil, mapError(err)
	}
	s.record(ctx, item.ID, model.ActionRegister, item.InventoryName)

	if photo != nil {
		if err := s.inventoryRepo.WritePhoto(ctx, item.ID, photo); err != nil {
			log.Printf("[InventoryService] Item %d registered without photo: %v", item.ID, err)
			return nil, mapError(err)
		}
		s.record(ctx, item.ID, model.ActionPhotoUpdate, "")
	}

	return item, nil
}

// List returns every item in insertion order.
func (s *InventoryService) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.inventoryRepo.Load(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// Get returns the item with the given id.
func (s *InventoryService) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if item == nil {
		return nil, itemNotFound(id)
	}
	return item, nil
}

// Update applies the non-blank fields of patch. Activity is recorded only
// when the item actually changed.
func (s *InventoryService) Update(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	item, changed, err := s.inventoryRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapError(err)
	}
	if item == nil {
		return nil, itemNotFound(id)
	}
	if changed {
		s.record(ctx, id, model.ActionUpdate, fmt.Sprintf("inventory_name=%q description=%q", patch.InventoryName, patch.Description))
	}
	return item, nil
}

// ReplacePhoto stores photo as the photo of an existing item.
func (s *InventoryService) ReplacePhoto(ctx context.Context, id int64, photo io.Reader) error {
	if photo == nil {
		return apierror.BadRequest("photo is required")
	}

	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if item == nil {
		return itemNotFound(id)
	}

	if err := s.inventoryRepo.WritePhoto(ctx, id, photo); err != nil {
		return mapError(err)
	}
	s.record(ctx, id, model.ActionPhotoUpdate, "")
	return nil
}

// OpenPhoto opens the stored photo of id. The caller closes the file.
func (s *InventoryService) OpenPhoto(ctx context.Context, id int64) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.inventoryRepo.OpenPhoto(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound(fmt.Sprintf("photo for item %d not found", id))
		}
		return nil, mapError(err)
	}
	return f, nil
}

// Delete removes the item. It succeeds whether or not the item existed.
// The photo blob, if any, is left in place.
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	existed, err := s.inventoryRepo.Delete(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if existed {
		s.record(ctx, id, model.ActionDelete, "")
	}
	return nil
}

// Search looks an item up by id. With includePhoto it returns the full item,
// otherwise the photo-less summary.
func (s *InventoryService) Search(ctx context.Context, id int64, includePhoto bool) (interface{}, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if includePhoto {
		return item, nil
	}
	return item.Summary(), nil
}

// ListActivity returns the audit trail newest first.
func (s *InventoryService) ListActivity(ctx context.Context, limit, offset int) ([]model.Activity, int64, error) {
	if s.activityRepo == nil {
		return nil, 0, apierror.ServiceUnavailable("activity log is not configured")
	}
	activity, total, err := s.activityRepo.List(ctx, limit, offset)
	if err != nil {
		log.Printf("[InventoryService] Error listing activity: %v", err)
		return nil, 0, apierror.InternalError("failed to fetch activity")
	}
	return activity, total, nil
}

// Stats returns store statistics.
func (s *InventoryService) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := s.inventoryRepo.GetStats(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return stats, nil
}

// record appends to the activity log. Failures are logged, never returned.
func (s *InventoryService) record(ctx context.Context, itemID int64, action, detail string) {
	if s.activityRepo == nil {
		return
	}
	a := &model.Activity{
		ItemID:    itemID,
		Action:    action,
		Detail:    detail,
		RequestID: middleware.GetRequestID(ctx),
	}
	if err := s.activityRepo.Insert(context.WithoutCancel(ctx), a); err != nil {
		log.Printf("[InventoryService] Warning: failed to record %s for item %d: %v", action, itemID, err)
	}
}

func itemNotFound(id int64) error {
	return apierror.NotFound(fmt.Sprintf("item %d not found", id))
}

// mapError translates store errors into API errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrValidation):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, repository.ErrStorageCorrupt):
		log.Printf("[InventoryService] ERROR: %v", err)
		return apierror.InternalError("inventory storage is corrupt")
	case errors.Is(err, repository.ErrStorageWrite):
		log.Printf("[InventoryService] ERROR: %v", err)
		return apierror.InternalError("failed to persist inventory")
	case errors.Is(err, lock.ErrLockTimeout):
		return apierror.ServiceUnavailable("inventory is busy, try again")
	default:
		log.Printf("[InventoryService] ERROR: %v", err)
		return err
	}
}
