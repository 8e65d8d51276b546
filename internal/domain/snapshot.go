package domain

import (
	"context"
	"errors"
)

// Snapshot keys. Each holds one serialized JSON document representing the
// whole map, so readers observe entirely-old or entirely-new state, never
// a torn mix.
const (
	SnapshotKeyInventory  = "inventory"
	SnapshotKeyBackups    = "s3_backups"
	SnapshotKeyCompliance = "s3_compliance"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore is the shared key-value store holding published snapshots.
// Writers replace a key's value wholesale; there is at most one writer per
// key (one scheduled job instance), so last-writer-wins is sufficient.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
