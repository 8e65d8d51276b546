package app

import (
	"context"
	"fmt"

	"github.com/inetops/fleetwatch/internal/adapter/inventory"
	"github.com/inetops/fleetwatch/internal/adapter/notify"
	"github.com/inetops/fleetwatch/internal/adapter/snapshot"
	"github.com/inetops/fleetwatch/internal/adapter/storage"
	"github.com/inetops/fleetwatch/internal/config"
	"github.com/inetops/fleetwatch/internal/domain"
	"github.com/inetops/fleetwatch/internal/infrastructure/logger"
	"github.com/inetops/fleetwatch/internal/infrastructure/scheduler"
	"github.com/inetops/fleetwatch/internal/usecase"
)

type App struct {
	config        *config.Config
	logger        *logger.Logger
	scheduler     *scheduler.Scheduler
	snapshots     domain.SnapshotStore
	inventorySync *usecase.InventorySync
	backupSync    *usecase.BackupSync
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	snapshots, err := initializeSnapshotStore(cfg, log)
	if err != nil {
		return nil, err
	}

	objectStore, err := storage.NewS3(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	log.Infof("✓ Object store ready (bucket: %s, root: %s)", cfg.Storage.Bucket, cfg.Storage.RootDir)

	source := initializeInventorySource(cfg, log)
	notifier := initializeNotifier(cfg, log)

	inventorySync := usecase.NewInventorySync(
		source,
		snapshots,
		notifier,
		log.Named("inventory-sync"),
		cfg.Sync.FetchTimeout,
	)

	backupLog := log.Named("backup-sync")
	backupSync := usecase.NewBackupSync(
		objectStore,
		snapshots,
		notifier,
		usecase.NewAggregator(backupLog),
		backupLog,
		cfg.Storage.RootDir,
		cfg.Sync.FetchTimeout,
	)

	return &App{
		config:        cfg,
		logger:        log,
		scheduler:     scheduler.New(log),
		snapshots:     snapshots,
		inventorySync: inventorySync,
		backupSync:    backupSync,
	}, nil
}

func initializeSnapshotStore(cfg *config.Config, log *logger.Logger) (domain.SnapshotStore, error) {
	switch cfg.Snapshot.Backend {
	case "redis":
		store, err := snapshot.NewRedis(context.Background(), cfg.Snapshot.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot store: %w", err)
		}
		log.Infof("✓ Connected to redis snapshot store")
		return store, nil
	case "memory":
		log.Warnf("Using in-memory snapshot store, published snapshots are not shared")
		return snapshot.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend: %s", cfg.Snapshot.Backend)
	}
}

func initializeInventorySource(cfg *config.Config, log *logger.Logger) domain.InventorySource {
	if cfg.Inventory.Source == "file" {
		log.Infof("✓ Inventory source: local file %s", cfg.Inventory.File)
		return inventory.NewFileSource(cfg.Inventory.File)
	}

	log.Infof("✓ Inventory source: %s", cfg.Inventory.BaseURL)
	return inventory.NewClient(&cfg.Inventory)
}

func initializeNotifier(cfg *config.Config, log *logger.Logger) domain.Notifier {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}

	notifier, err := notify.NewTelegram(&cfg.Notify.Telegram)
	if err != nil {
		log.Errorf("Failed to initialize telegram notifier: %v", err)
		return nil
	}

	log.Infof("✓ Telegram notifications enabled")
	return notifier
}

func (a *App) Run(ctx context.Context) error {
	// First pass right away, so consumers get snapshots without waiting
	// out a full interval. Failures here are ordinary iteration failures.
	if err := a.inventorySync.Execute(ctx); err != nil {
		a.logger.Errorf("Initial inventory sync failed: %v", err)
	}
	if err := a.backupSync.Execute(ctx); err != nil {
		a.logger.Errorf("Initial backup sync failed: %v", err)
	}

	inventorySpec := fmt.Sprintf("@every %s", a.config.Sync.InventoryInterval)
	if err := a.scheduler.AddJob(inventorySpec, a.inventorySync.Execute); err != nil {
		return fmt.Errorf("failed to schedule inventory sync: %w", err)
	}

	backupSpec := fmt.Sprintf("@every %s", a.config.Sync.BackupInterval)
	if err := a.scheduler.AddJob(backupSpec, a.backupSync.Execute); err != nil {
		return fmt.Errorf("failed to schedule backup sync: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started: inventory sync %s, backup sync %s",
		inventorySpec, backupSpec)

	<-ctx.Done()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.scheduler.Stop()
	if err := a.snapshots.Close(); err != nil {
		a.logger.Errorf("Failed to close snapshot store: %v", err)
	}
	a.logger.Close()
}
