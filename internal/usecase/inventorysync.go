package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inetops/fleetwatch/internal/domain"
)

// InventorySync replaces the inventory snapshot wholesale on every pass.
// A failed fetch leaves the previously published snapshot untouched; the
// next scheduled interval is the retry mechanism.
type InventorySync struct {
	source    domain.InventorySource
	snapshots domain.SnapshotStore
	notifier  domain.Notifier
	logger    Logger
	timeout   time.Duration
}

func NewInventorySync(
	source domain.InventorySource,
	snapshots domain.SnapshotStore,
	notifier domain.Notifier,
	logger Logger,
	timeout time.Duration,
) *InventorySync {
	return &InventorySync{
		source:    source,
		snapshots: snapshots,
		notifier:  notifier,
		logger:    logger,
		timeout:   timeout,
	}
}

func (uc *InventorySync) Execute(ctx context.Context) error {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	devices, err := uc.source.FetchDevices(fetchCtx)
	if err != nil {
		uc.logger.Errorf("Inventory fetch failed, keeping previous snapshot: %v", err)
		uc.notify(ctx, fmt.Sprintf("inventory sync failed: %v", err))
		return fmt.Errorf("fetch devices: %w", err)
	}

	inventory := make(map[string]domain.Device, len(devices))
	for _, device := range devices {
		if device.Hostname == "" {
			uc.logger.Warnf("Skipping inventory record without hostname")
			continue
		}
		if _, dup := inventory[device.Hostname]; dup {
			uc.logger.Warnf("Duplicate hostname %s in inventory feed, keeping last record", device.Hostname)
		}
		inventory[device.Hostname] = device
	}

	payload, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("marshal inventory snapshot: %w", err)
	}

	if err := uc.snapshots.Set(ctx, domain.SnapshotKeyInventory, payload); err != nil {
		uc.logger.Errorf("Failed to publish inventory snapshot: %v", err)
		uc.notify(ctx, fmt.Sprintf("inventory snapshot publish failed: %v", err))
		return fmt.Errorf("publish inventory snapshot: %w", err)
	}

	uc.logger.Infof("Published inventory snapshot: %d device(s) in %s",
		len(inventory), time.Since(start).Round(time.Millisecond))

	return nil
}

func (uc *InventorySync) notify(ctx context.Context, message string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, message); err != nil {
		uc.logger.Warnf("Failed to send notification: %v", err)
	}
}
