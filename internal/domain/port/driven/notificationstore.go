package driven

import (
	"context"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// NotificationStore defines the driven port for the append-only
// notification history.
type NotificationStore interface {
	Record(ctx context.Context, rec model.NotificationRecord) (int64, error)
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.NotificationRecord, error)
	// ListByIndex returns up to limit records for a single index, newest first.
	ListByIndex(ctx context.Context, index string, limit int) ([]model.NotificationRecord, error)
}
