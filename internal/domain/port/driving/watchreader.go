package driving

import (
	"context"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// WatchReader exposes read-only poll loop state to the status surfaces.
type WatchReader interface {
	// Snapshot blocks until the poll loop is between ticks.
	Snapshot(ctx context.Context) (model.WatchSnapshot, error)
	Interval() time.Duration
}
