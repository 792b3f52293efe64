package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
	"github.com/ericfisherdev/snipecord/internal/domain/port/driven"
)

// NotificationDispatcher formats messages and fans them out to every
// configured channel. Delivery failures are logged and swallowed: callers
// never see an error and never need to roll back state because of one.
type NotificationDispatcher struct {
	notifiers []driven.Notifier
	store     driven.NotificationStore // nil disables history.
	publisher driven.EventPublisher    // nil disables events.
	query     model.Query
	mention   string
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotificationDispatcher creates a dispatcher. store and publisher are optional.
func NewNotificationDispatcher(
	notifiers []driven.Notifier,
	store driven.NotificationStore,
	publisher driven.EventPublisher,
	query model.Query,
	mention string,
	logger *slog.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifiers: notifiers,
		store:     store,
		publisher: publisher,
		query:     query,
		mention:   mention,
		logger:    logger,
		now:       time.Now,
	}
}

// SendReady announces that the watcher has started.
func (d *NotificationDispatcher) SendReady(ctx context.Context, indexes []string) {
	if err := d.deliver(ctx, newMessage(ReadyContent)); err != nil {
		d.logger.Error("ready message not delivered", "error", err)
	}
	d.publish(ctx, TopicWatcherReady, WatcherReady{Indexes: indexes, At: d.now()})
}

// SendOpen announces that alert's section is open. The outcome is recorded
// in the notification history when one is configured.
func (d *NotificationDispatcher) SendOpen(ctx context.Context, alert model.Alert) {
	content := OpenContent(d.mention, d.query, alert)
	firedAt := d.now()

	d.logger.Info("section open",
		"index", alert.Index,
		"label", alert.Label,
		"register", RegistrationURL(d.query, alert.Index),
	)

	deliverErr := d.deliver(ctx, newMessage(content))
	if deliverErr != nil {
		d.logger.Error("open alert not delivered", "index", alert.Index, "error", deliverErr)
	}

	if d.store != nil {
		rec := model.NotificationRecord{
			Index:     alert.Index,
			Label:     alert.Label,
			Content:   content,
			Delivered: deliverErr == nil,
			SentAt:    firedAt,
		}
		if deliverErr != nil {
			rec.Error = deliverErr.Error()
		}
		if _, err := d.store.Record(ctx, rec); err != nil {
			d.logger.Error("record notification failed", "index", alert.Index, "error", err)
		}
	}

	d.publish(ctx, TopicSectionOpened, SectionOpened{
		Index:   alert.Index,
		Label:   alert.Label,
		Content: content,
		FiredAt: firedAt,
	})
}

// deliver sends msg through every notifier in order and joins the failures.
// Each failure is logged with its channel name.
func (d *NotificationDispatcher) deliver(ctx context.Context, msg model.Message) error {
	var errs []error
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			d.logger.Error("failed to send message", "channel", n.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (d *NotificationDispatcher) publish(ctx context.Context, topic string, event any) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, topic, event); err != nil {
		d.logger.Error("publish event failed", "topic", topic, "error", err)
	}
}

// Channels returns the names of the configured notifiers, comma separated.
func (d *NotificationDispatcher) Channels() string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return strings.Join(names, ",")
}
