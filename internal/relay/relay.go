// Package relay forwards verified notifications from the callback handler
// to the daemon's sinks: the database, the message queue, and metrics.
package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/daggieblanqx/youtube-notification/internal/metrics"
	"github.com/daggieblanqx/youtube-notification/internal/store"
	"github.com/daggieblanqx/youtube-notification/notifier"
)

// Store persists notifications. Any store.NotificationRepository satisfies it.
type Store interface {
	Insert(ctx context.Context, rec *store.Record) error
}

// Publisher fans notifications out to the message queue.
type Publisher interface {
	Publish(ctx context.Context, event notifier.Notification) error
}

// Relay consumes notifier events. Sink failures are logged and counted but
// never propagate: the hub already got its 200 by the time handlers run,
// and there is no retry path back to it.
type Relay struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	timeout   time.Duration
}

// New creates a Relay. Either sink may be nil and is then skipped.
func New(st Store, pub Publisher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		store:     st,
		publisher: pub,
		logger:    logger,
		timeout:   10 * time.Second,
	}
}

// HandleNotification is registered with Notifier.OnNotified.
func (r *Relay) HandleNotification(event notifier.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	metrics.NotificationsTotal.Inc()

	if r.store != nil {
		rec := &store.Record{
			ID:          event.ID,
			VideoID:     event.Video.ID,
			VideoTitle:  event.Video.Title,
			VideoLink:   event.Video.Link,
			ChannelID:   event.Channel.ID,
			ChannelName: event.Channel.Name,
			ChannelLink: event.Channel.Link,
			Published:   event.Published,
			Updated:     event.Updated,
		}
		if err := r.store.Insert(ctx, rec); err != nil {
			metrics.RelayErrorsTotal.WithLabelValues("store").Inc()
			r.logger.Error("failed to store notification",
				zap.String("video_id", event.Video.ID),
				zap.Error(err),
			)
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, event); err != nil {
			metrics.RelayErrorsTotal.WithLabelValues("queue").Inc()
			r.logger.Error("failed to publish notification",
				zap.String("video_id", event.Video.ID),
				zap.Error(err),
			)
		}
	}
}

// HandleIntent is registered with Notifier.OnSubscribe and OnUnsubscribe to
// keep handshake metrics and an audit log.
func (r *Relay) HandleIntent(event notifier.IntentVerification) {
	metrics.IntentVerificationsTotal.WithLabelValues(string(event.Mode)).Inc()

	r.logger.Info("hub verified intent",
		zap.String("mode", string(event.Mode)),
		zap.String("channel", event.Channel),
		zap.String("lease_seconds", event.LeaseSeconds),
	)
}
