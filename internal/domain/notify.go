package domain

import "context"

// Notifier delivers out-of-band alerts about failed sync passes.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
