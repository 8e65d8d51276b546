package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inetops/fleetwatch/internal/domain"
)

// sourceUnavailable distinguishes a dead pass (the iteration context timed
// out or was cancelled, so every further fetch is doomed) from a fault in
// one object. The former aborts the iteration; the latter is isolated to
// the record.
func sourceUnavailable(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// BackupSync rebuilds the backup-status and compliance snapshots by walking
// the object-storage namespace once per pass: templates first, then one
// aggregation per device. Record-level problems (malformed documents, bad
// timestamps, rejected schemas) are absorbed into the records themselves;
// a failed listing or an expired iteration context aborts the pass and
// leaves the previous snapshots in place.
type BackupSync struct {
	store      domain.ObjectStore
	snapshots  domain.SnapshotStore
	notifier   domain.Notifier
	aggregator *Aggregator
	logger     Logger
	root       string
	timeout    time.Duration
}

func NewBackupSync(
	store domain.ObjectStore,
	snapshots domain.SnapshotStore,
	notifier domain.Notifier,
	aggregator *Aggregator,
	logger Logger,
	root string,
	timeout time.Duration,
) *BackupSync {
	return &BackupSync{
		store:      store,
		snapshots:  snapshots,
		notifier:   notifier,
		aggregator: aggregator,
		logger:     logger,
		root:       strings.TrimRight(root, "/"),
		timeout:    timeout,
	}
}

func (uc *BackupSync) Execute(ctx context.Context) error {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	objects, err := uc.store.ListObjects(fetchCtx, uc.root+"/")
	if err != nil {
		return uc.abort(ctx, fmt.Errorf("list objects: %w", err))
	}

	registry, err := BuildSchemaRegistry(fetchCtx, uc.store, uc.root, objects, uc.logger)
	if err != nil {
		return uc.abort(ctx, fmt.Errorf("build schema registry: %w", err))
	}
	uc.logger.Infof("Schema registry built: %d template(s)", registry.Len())

	statuses := make(map[string]domain.BackupStatusRecord)
	compliance := make(map[string]domain.ComplianceRecord)

	for _, obj := range objects {
		parsed, err := ParseKey(uc.root, obj.Key)
		if err != nil {
			// Payload files and folder markers land here; they are not
			// part of the evaluated namespace.
			continue
		}

		switch parsed.Kind {
		case KindBackup:
			record, err := uc.evaluateBackup(fetchCtx, registry, parsed, obj.Key)
			if err != nil {
				return uc.abort(ctx, err)
			}
			statuses[parsed.Hostname] = record
		case KindValidation, KindOperationalStatus:
			if err := uc.collectCompliance(fetchCtx, compliance, parsed, obj.Key); err != nil {
				return uc.abort(ctx, err)
			}
		}
	}

	uc.fillMissingDevices(ctx, statuses)

	if err := uc.publish(ctx, domain.SnapshotKeyBackups, statuses); err != nil {
		uc.notify(ctx, fmt.Sprintf("backup snapshot publish failed: %v", err))
		return err
	}
	if err := uc.publish(ctx, domain.SnapshotKeyCompliance, compliance); err != nil {
		uc.notify(ctx, fmt.Sprintf("compliance snapshot publish failed: %v", err))
		return err
	}

	uc.logger.Infof("Published backup snapshot: %d device(s), compliance: %d device(s), pass took %s",
		len(statuses), len(compliance), time.Since(start).Round(time.Millisecond))
	if newest := newestObject(objects); !newest.IsZero() {
		uc.logger.Infof("Bucket contents current through %s", newest.UTC().Format(time.RFC3339))
	}

	return nil
}

// newestObject reports the latest last-modified timestamp in the listing.
func newestObject(objects []domain.ObjectInfo) time.Time {
	var newest time.Time
	for _, obj := range objects {
		if obj.LastModified.After(newest) {
			newest = obj.LastModified
		}
	}
	return newest
}

// abort ends the pass without touching the published snapshots.
func (uc *BackupSync) abort(ctx context.Context, err error) error {
	uc.logger.Errorf("Backup pass aborted, keeping previous snapshots: %v", err)
	uc.notify(ctx, fmt.Sprintf("backup sync failed: %v", err))
	return err
}

func (uc *BackupSync) evaluateBackup(
	ctx context.Context,
	registry *SchemaRegistry,
	parsed ParsedKey,
	key string,
) (domain.BackupStatusRecord, error) {
	tmpl := registry.Resolve(parsed.DeviceClass, parsed.Vendor)

	raw, err := uc.store.GetObject(ctx, key)
	if err != nil {
		if sourceUnavailable(ctx, err) {
			return domain.BackupStatusRecord{}, fmt.Errorf("fetch %s: %w", key, err)
		}
		uc.logger.Errorf("[%s] Failed to fetch %s: %v", parsed.Hostname, key, err)
		return uc.aggregator.Aggregate(parsed.Hostname, parsed.DeviceClass, parsed.Vendor, nil, nil, tmpl), nil
	}

	var doc *domain.BackupDocument
	var decoded domain.BackupDocument
	if err := json.Unmarshal(raw, &decoded); err != nil {
		uc.logger.Warnf("[%s] Malformed backup document %s: %v", parsed.Hostname, key, err)
	} else {
		doc = &decoded
	}

	return uc.aggregator.Aggregate(parsed.Hostname, parsed.DeviceClass, parsed.Vendor, raw, doc, tmpl), nil
}

func (uc *BackupSync) collectCompliance(
	ctx context.Context,
	compliance map[string]domain.ComplianceRecord,
	parsed ParsedKey,
	key string,
) error {
	raw, err := uc.store.GetObject(ctx, key)
	if err != nil {
		if sourceUnavailable(ctx, err) {
			return fmt.Errorf("fetch %s: %w", key, err)
		}
		uc.logger.Errorf("[%s] Failed to fetch %s: %v", parsed.Hostname, key, err)
		return nil
	}
	if !json.Valid(raw) {
		uc.logger.Warnf("[%s] Malformed compliance document %s", parsed.Hostname, key)
		return nil
	}

	record := compliance[parsed.Hostname]
	record.DeviceClass = parsed.DeviceClass
	record.Vendor = parsed.Vendor

	switch parsed.Kind {
	case KindValidation:
		record.ValidationData = raw
	case KindOperationalStatus:
		record.OperationalStatusData = raw
	}

	compliance[parsed.Hostname] = record
	return nil
}

// fillMissingDevices adds the no-backup sentinel for every inventoried
// device that had no backup document in the bucket, so the backup snapshot
// covers the whole fleet. Without an inventory snapshot the backup snapshot
// simply covers the hostnames found in storage.
func (uc *BackupSync) fillMissingDevices(ctx context.Context, statuses map[string]domain.BackupStatusRecord) {
	raw, err := uc.snapshots.Get(ctx, domain.SnapshotKeyInventory)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			uc.logger.Warnf("Failed to read inventory snapshot: %v", err)
		}
		return
	}

	var inventory map[string]domain.Device
	if err := json.Unmarshal(raw, &inventory); err != nil {
		uc.logger.Warnf("Malformed inventory snapshot: %v", err)
		return
	}

	for hostname, device := range inventory {
		if _, ok := statuses[hostname]; ok {
			continue
		}
		statuses[hostname] = uc.aggregator.Aggregate(hostname, device.DeviceClass, device.Vendor, nil, nil, nil)
	}
}

func (uc *BackupSync) publish(ctx context.Context, key string, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", key, err)
	}
	if err := uc.snapshots.Set(ctx, key, payload); err != nil {
		uc.logger.Errorf("Failed to publish %s snapshot: %v", key, err)
		return fmt.Errorf("publish %s snapshot: %w", key, err)
	}
	return nil
}

func (uc *BackupSync) notify(ctx context.Context, message string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, message); err != nil {
		uc.logger.Warnf("Failed to send notification: %v", err)
	}
}
