package domain

import (
	"context"
	"time"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// ObjectStore is the read side of the backup bucket. Implementations
// handle pagination internally; ListObjects returns the full listing
// under the prefix.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}
