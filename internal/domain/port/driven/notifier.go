package driven

import (
	"context"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// Notifier delivers a chat message to a single external channel.
type Notifier interface {
	// Name identifies the channel in logs ("discord", "telegram").
	Name() string
	Notify(ctx context.Context, msg model.Message) error
}
