package sink

import (
	"campus-market/domain"
	"context"
	"log/slog"
)

// LogSink writes every notification to the server log. It is the only sink
// when no webhook is configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Consume(_ context.Context, notification domain.Notification) error {
	s.log.Info("Notification", "type", notification.Type, "id", notification.ID)
	return nil
}
