package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inetops/fleetwatch/internal/domain"
)

// SnapshotReader is the consumer-facing read side of the snapshot store.
// Each read deserializes one whole published snapshot, so callers see
// either the entirely-previous or entirely-current version.
type SnapshotReader struct {
	snapshots domain.SnapshotStore
}

func NewSnapshotReader(snapshots domain.SnapshotStore) *SnapshotReader {
	return &SnapshotReader{snapshots: snapshots}
}

func (r *SnapshotReader) Inventory(ctx context.Context) (map[string]domain.Device, error) {
	raw, err := r.snapshots.Get(ctx, domain.SnapshotKeyInventory)
	if err != nil {
		return nil, err
	}

	var inventory map[string]domain.Device
	if err := json.Unmarshal(raw, &inventory); err != nil {
		return nil, fmt.Errorf("decode inventory snapshot: %w", err)
	}
	return inventory, nil
}

func (r *SnapshotReader) BackupStatus(ctx context.Context) (map[string]domain.BackupStatusRecord, error) {
	raw, err := r.snapshots.Get(ctx, domain.SnapshotKeyBackups)
	if err != nil {
		return nil, err
	}

	var statuses map[string]domain.BackupStatusRecord
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, fmt.Errorf("decode backup snapshot: %w", err)
	}
	return statuses, nil
}

func (r *SnapshotReader) Compliance(ctx context.Context) (map[string]domain.ComplianceRecord, error) {
	raw, err := r.snapshots.Get(ctx, domain.SnapshotKeyCompliance)
	if err != nil {
		return nil, err
	}

	var compliance map[string]domain.ComplianceRecord
	if err := json.Unmarshal(raw, &compliance); err != nil {
		return nil, fmt.Errorf("decode compliance snapshot: %w", err)
	}
	return compliance, nil
}
