package workers

import (
	"campus-market/contract"
	"campus-market/domain"
	"campus-market/observability"
	"context"
	"log/slog"
	"sync"
	"time"
)

// NotificationDispatcher hands notifications over to the outbound sinks.
//
// Delivery is best effort: a full queue drops the notification, a sink error
// or timeout is logged and counted, nothing is retried. The workflow that
// emitted the notification is never blocked nor failed by it.
//
// NotificationDispatcher is safe for concurrent use by multiple goroutines.
type NotificationDispatcher struct {
	log         *slog.Logger
	queue       chan domain.Notification
	sinks       []contract.NotificationSink
	sinkTimeout time.Duration
	monitoring  *observability.MonitoringManager
}

func NewNotificationDispatcher(
	log *slog.Logger,
	bufferSize int,
	sinkTimeout time.Duration,
	monitoring *observability.MonitoringManager,
	sinks ...contract.NotificationSink,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		log:         log,
		queue:       make(chan domain.Notification, bufferSize),
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
		monitoring:  monitoring,
	}
}

// Notify never blocks
func (d *NotificationDispatcher) Notify(_ context.Context, notification domain.Notification) {
	select {
	case d.queue <- notification:
	default:
		if d.monitoring != nil {
			d.monitoring.IncrDropped()
		}
		d.log.Warn("Notification queue full, notification dropped",
			"type", notification.Type, "id", notification.ID)
	}
}

// Queue exposes the buffer so its length can be sampled.
func (d *NotificationDispatcher) Queue() chan domain.Notification { return d.queue }

func (d *NotificationDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case notification := <-d.queue:
			d.Fanout(ctx, notification)
		case <-ctx.Done():
			d.log.Debug("Context done, stopping notification dispatch")
			return nil
		}
	}
}

// Fanout One goroutine per sink, each one bounded by sinkTimeout
func (d *NotificationDispatcher) Fanout(ctx context.Context, notification domain.Notification) {
	var wg sync.WaitGroup
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(s contract.NotificationSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
			defer cancel()

			if err := s.Consume(sinkCtx, notification); err != nil {
				if d.monitoring != nil {
					d.monitoring.IncrFailed()
				}
				d.log.Warn("Notification delivery failed",
					"type", notification.Type, "id", notification.ID, "error", err)
				return
			}
			if d.monitoring != nil {
				d.monitoring.IncrSent()
			}
		}(sink)
	}
	wg.Wait()
}
