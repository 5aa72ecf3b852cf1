package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrInvalidRange     = errors.New("invalid_range")
)

// Repository is the reading store contract consumed by the analytics core.
// Range arguments are reading keys (see TimeLayout); results come back
// ordered ascending by timestamp. Empty ranges are not errors.
type Repository interface {
	// Upsert writes a reading, overwriting fields when the timestamp exists.
	Upsert(ctx context.Context, reading *Reading) error
	// Exists reports whether a reading with this timestamp is stored.
	Exists(ctx context.Context, timestamp string) (bool, error)
	// Latest returns the most recent reading, or nil when the store is empty.
	Latest(ctx context.Context) (*Reading, error)
	// All returns the full series ordered ascending.
	All(ctx context.Context) ([]Reading, error)
	QueryRange(ctx context.Context, start, end string) ([]Reading, error)
	FirstInRange(ctx context.Context, start, end string) (*Reading, error)
	LastInRange(ctx context.Context, start, end string) (*Reading, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, timestamp string) (int64, error)
	// MaxPapp returns MAX(papp) over the range, 0 when no rows match.
	MaxPapp(ctx context.Context, start, end string) (int, error)
	// AvgPapp returns AVG(papp) over the range, 0 when no rows match.
	AvgPapp(ctx context.Context, start, end string) (float64, error)
	// ListExceeding returns readings at or after since with papp above the
	// threshold, newest first.
	ListExceeding(ctx context.Context, since string, threshold int) ([]Reading, error)
	// ListPaginated returns a page of readings newest first plus the total count.
	ListPaginated(ctx context.Context, page, limit int) ([]Reading, int64, error)
}
