package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"inventory-rest-api/internal/config"
	"inventory-rest-api/internal/handler"
	"inventory-rest-api/internal/lock"
	"inventory-rest-api/internal/repository"
	"inventory-rest-api/internal/router"
	"inventory-rest-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Inventory API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)
	log.Printf("Cache directory: %s", cfg.Storage.CacheDir)

	// Initialize the store lock
	locker, closeLocker, err := lock.New(lock.Config{
		Type: cfg.Lock.Type,
		Dir:  cfg.Storage.CacheDir,
		Redis: lock.RedisLockerConfig{
			Addr:     cfg.Lock.RedisAddress(),
			Password: cfg.Lock.RedisPassword,
			DB:       cfg.Lock.RedisDB,
			Key:      cfg.Lock.RedisKey,
			TTL:      cfg.Lock.TTL,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize lock: %v", err)
	}
	defer closeLocker()
	log.Printf("Store lock initialized (%s)", cfg.Lock.Type)

	// Initialize inventory repository
	inventoryRepo, err := repository.NewFileInventoryRepository(cfg.Storage.CacheDir, locker)
	if err != nil {
		log.Fatalf("Failed to initialize inventory store: %v", err)
	}
	log.Println("Inventory store initialized")

	// Initialize activity repository based on config
	var activityRepo repository.ActivityRepository
	switch cfg.Activity.Type {
	case "none", "":
		log.Println("Activity log disabled")
	case "mysql":
		mysqlRepo, err := repository.NewMySQLActivityRepository(cfg.Activity.MySQLDSN())
		if err != nil {
			log.Printf("Warning: MySQL activity log unavailable: %v", err)
		} else {
			activityRepo = mysqlRepo
			log.Println("MySQL activity repository initialized")
		}
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresActivityRepository(cfg.Activity.PostgresDSN())
		if err != nil {
			log.Printf("Warning: PostgreSQL activity log unavailable: %v", err)
		} else {
			activityRepo = pgRepo
			log.Println("PostgreSQL activity repository initialized")
		}
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteActivityRepository(cfg.Activity.SQLitePath(cfg.Storage.CacheDir))
		if err != nil {
			log.Printf("Warning: SQLite activity log unavailable: %v", err)
		} else {
			activityRepo = sqliteRepo
			log.Println("SQLite activity repository initialized")
		}
	default:
		log.Fatalf("Unknown ACTIVITY_DB_TYPE %q", cfg.Activity.Type)
	}
	if activityRepo != nil {
		defer activityRepo.Close()
	}

	// Initialize services
	inventoryService := service.NewInventoryService(inventoryRepo, activityRepo)

	cleanupScheduler := service.NewCleanupScheduler(inventoryRepo, activityRepo, service.CleanupConfig{
		Interval:          cfg.Cleanup.Interval,
		ActivityRetention: cfg.Activity.Retention,
		SweepPhotos:       cfg.Cleanup.SweepPhotos,
		InitialDelay:      service.DefaultCleanupConfig().InitialDelay,
	})
	cleanupScheduler.Start()

	// Initialize handlers
	checks := []handler.ReadyCheck{
		{Name: "inventory", Check: func(ctx context.Context) error {
			_, err := inventoryRepo.Load(ctx)
			return err
		}},
	}
	if activityRepo != nil {
		checks = append(checks, handler.ReadyCheck{Name: "activity", Check: func(ctx context.Context) error {
			_, _, err := activityRepo.List(ctx, 1, 0)
			return err
		}})
	}

	activityType := cfg.Activity.Type
	if activityRepo == nil {
		activityType = "none"
	}

	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, checks...)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, cfg.Storage.UploadMaxBytes)
	adminHandler := handler.NewAdminHandler(inventoryService, cfg.Lock.Type, activityType)
	activityHandler := handler.NewActivityHandler(inventoryService)
	docsHandler := handler.NewDocsHandler()

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		InventoryHandler: inventoryHandler,
		AdminHandler:     adminHandler,
		ActivityHandler:  activityHandler,
		DocsHandler:      docsHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on http://%s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Stop background jobs after in-flight requests finish
	cleanupScheduler.Stop()

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
