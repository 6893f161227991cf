package workers

import (
	"campus-market/observability"
	"context"
	"log/slog"
	"time"
)

// HealthMonitoringWorker samples the process and the notification queue
// on every tick so the Health RPC never probes the OS itself.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	monitoring     *observability.MonitoringManager
	dispatcher     *NotificationDispatcher
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	dispatcher *NotificationDispatcher,
	metricInterval time.Duration,
) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		monitoring:     monitoring,
		dispatcher:     dispatcher,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	w.sample()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *HealthMonitoringWorker) sample() {
	queue := w.dispatcher.Queue()
	stats := w.monitoring.Sample(len(queue), cap(queue))
	if stats.QueueCapacity > 0 && stats.QueueLength*10 >= stats.QueueCapacity*9 {
		w.log.Warn("Notification queue almost full",
			"length", stats.QueueLength, "capacity", stats.QueueCapacity)
	}
}
