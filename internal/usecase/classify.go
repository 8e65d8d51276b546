package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/inetops/fleetwatch/internal/domain"
)

var (
	ErrInvalidTimestamp = errors.New("invalid backup timestamp")
	ErrInvalidMaxAge    = errors.New("invalid max age")
)

// backupTimeLayouts covers RFC 3339 plus the four-digit-offset variant
// some devices emit (2025-01-02T03:04:05+0200).
var backupTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

// ParseBackupTime parses an artifact's production timestamp.
func ParseBackupTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range backupTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// ClassifyAge maps an artifact's age against its declared max age to a
// status tier. The tiers are closed on the lower bound: an age factor of
// exactly 1.0 is already WARNING, 5.0 and beyond is FAILURE. An age in the
// future (device clock ahead of ours) classifies as OK.
func ClassifyAge(age time.Duration, maxAge int64) (domain.Status, error) {
	if maxAge <= 0 {
		return domain.StatusFailure, fmt.Errorf("%w: %d", ErrInvalidMaxAge, maxAge)
	}

	factor := age.Seconds() / float64(maxAge)
	switch {
	case factor < 1:
		return domain.StatusOK, nil
	case factor < 2:
		return domain.StatusWarning, nil
	case factor < 3:
		return domain.StatusAttention, nil
	case factor < 4:
		return domain.StatusSevere, nil
	case factor < 5:
		return domain.StatusCritical, nil
	default:
		return domain.StatusFailure, nil
	}
}
