package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"inventory-rest-api/internal/model"
	"inventory-rest-api/internal/repository"
)

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	// Interval is how often the cleanup runs. Zero disables the scheduler.
	Interval time.Duration

	// ActivityRetention is how long activity rows are kept. Zero keeps them forever.
	ActivityRetention time.Duration

	// SweepPhotos removes photo blobs whose item no longer exists.
	SweepPhotos bool

	// InitialDelay is the wait before the first run after Start.
	InitialDelay time.Duration
}

// DefaultCleanupConfig returns default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Interval:          1 * time.Hour,
		ActivityRetention: 30 * 24 * time.Hour,
		SweepPhotos:       false,
		InitialDelay:      1 * time.Minute,
	}
}

// CleanupResult reports what one cleanup run removed.
type CleanupResult struct {
	ActivityPruned int64   `json:"activity_pruned"`
	PhotosRemoved  []int64 `json:"photos_removed"`
}

// CleanupScheduler runs periodic maintenance of the cache directory.
type CleanupScheduler struct {
	inventoryRepo repository.InventoryRepository
	activityRepo  repository.ActivityRepository
	config        CleanupConfig
	ticker        *time.Ticker
	stopCh        chan struct{}
	stopOnce      sync.Once
	isRunning     bool
	mu            sync.Mutex
}

// NewCleanupScheduler creates a new cleanup scheduler. activityRepo may be nil.
func NewCleanupScheduler(
	inventoryRepo repository.InventoryRepository,
	activityRepo repository.ActivityRepository,
	config CleanupConfig,
) *CleanupScheduler {
	return &CleanupScheduler{
		inventoryRepo: inventoryRepo,
		activityRepo:  activityRepo,
		config:        config,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the cleanup scheduler. It does nothing when Interval is zero.
func (s *CleanupScheduler) Start() {
	if s.config.Interval <= 0 {
		log.Printf("[CleanupScheduler] Disabled")
		return
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[CleanupScheduler] Started - Interval: %v, Activity retention: %v, Photo sweep: %v",
		s.config.Interval, s.config.ActivityRetention, s.config.SweepPhotos)

	go s.run()
}

// run is the main cleanup loop.
func (s *CleanupScheduler) run() {
	initial := time.NewTimer(s.config.InitialDelay)
	defer initial.Stop()

	for {
		select {
		case <-initial.C:
			s.runCleanup()
		case <-s.ticker.C:
			s.runCleanup()
		case <-s.stopCh:
			log.Printf("[CleanupScheduler] Stopped")
			return
		}
	}
}

// runCleanup performs one scheduled run and logs the outcome.
func (s *CleanupScheduler) runCleanup() {
	result, err := s.RunNow()
	if err != nil {
		log.Printf("[CleanupScheduler] Error during cleanup: %v", err)
		return
	}

	if result.ActivityPruned > 0 || len(result.PhotosRemoved) > 0 {
		log.Printf("[CleanupScheduler] Pruned %d activity rows, removed %d orphaned photos",
			result.ActivityPruned, len(result.PhotosRemoved))
	} else {
		log.Printf("[CleanupScheduler] Nothing to clean up")
	}
}

// Stop stops the cleanup scheduler.
func (s *CleanupScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}

// RunNow triggers an immediate cleanup run.
func (s *CleanupScheduler) RunNow() (*CleanupResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := &CleanupResult{PhotosRemoved: []int64{}}

	if s.activityRepo != nil && s.config.ActivityRetention > 0 {
		pruned, err := s.activityRepo.DeleteOlderThan(ctx, s.config.ActivityRetention)
		if err != nil {
			return nil, err
		}
		result.ActivityPruned = pruned
	}

	if s.config.SweepPhotos {
		removed, err := s.sweepOrphanPhotos(ctx)
		if err != nil {
			return nil, err
		}
		result.PhotosRemoved = removed
	}

	return result, nil
}

// sweepOrphanPhotos removes photos whose id has no item.
func (s *CleanupScheduler) sweepOrphanPhotos(ctx context.Context) ([]int64, error) {
	// Read the high-water mark before the snapshot: any item committed after
	// the snapshot gets an id above it.
	cutoff := s.inventoryRepo.LastAssignedID() + 1

	items, err := s.inventoryRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	live := make(map[int64]struct{}, len(items))
	for _, item := range items {
		live[item.ID] = struct{}{}
	}

	ids, err := s.inventoryRepo.PhotoIDs()
	if err != nil {
		return nil, err
	}

	// Ids at or above the cutoff may belong to items created after the
	// snapshot was loaded.
	if next := repository.NextID(items); next > cutoff {
		cutoff = next
	}

	removed := []int64{}
	for _, id := range ids {
		if _, ok := live[id]; ok || id >= cutoff {
			continue
		}
		if err := s.inventoryRepo.RemovePhoto(id); err != nil {
			return removed, fmt.Errorf("failed to remove orphaned photo %d: %w", id, err)
		}
		removed = append(removed, id)

		if s.activityRepo != nil {
			a := &model.Activity{ItemID: id, Action: model.ActionPhotoSweep}
			if err := s.activityRepo.Insert(ctx, a); err != nil {
				log.Printf("[CleanupScheduler] Warning: failed to record sweep of %d: %v", id, err)
			}
		}
	}
	return removed, nil
}
