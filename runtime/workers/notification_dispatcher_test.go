package workers

import (
	"campus-market/contract"
	"campus-market/domain"
	"campus-market/mocks"
	"campus-market/observability"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newMonitoring(t *testing.T) *observability.MonitoringManager {
	t.Helper()
	monitoring, err := observability.NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	return monitoring
}

func TestNotificationDispatcher_Fanout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	monitoring := newMonitoring(t)

	first := mocks.NewMockNotificationSink(ctrl)
	second := mocks.NewMockNotificationSink(ctrl)
	notification := domain.Notification{Type: domain.NotifySaleConfirmed, ID: "listing-1"}

	// Given two sinks, one of them failing
	first.EXPECT().Consume(gomock.Any(), notification).Return(nil).Times(1)
	second.EXPECT().Consume(gomock.Any(), notification).Return(fmt.Errorf("unreachable")).Times(1)

	dispatcher := NewNotificationDispatcher(log, 10, time.Second, monitoring, first, second)

	// When the notification is fanned out
	dispatcher.Fanout(context.Background(), notification)

	// Then every sink received it and the failure is only counted
	stats := monitoring.Sample(0, 10)
	req.Equal(uint64(1), stats.NotificationsSent)
	req.Equal(uint64(1), stats.NotificationsFailed)
}

func TestNotificationDispatcher_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	monitoring := newMonitoring(t)
	slow := mocks.NewMockNotificationSink(ctrl)

	// Given a sink waiting for its context
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Notification) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)

	dispatcher := NewNotificationDispatcher(log, 10, 20*time.Millisecond, monitoring, slow)

	done := make(chan struct{})
	go func() {
		dispatcher.Fanout(context.Background(), domain.Notification{Type: domain.NotifyNewListing, ID: "l"})
		close(done)
	}()

	// Then the fanout returns once the sink timed out
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Fanout should not wait longer than the sink timeout")
	}
	req.Equal(uint64(1), monitoring.Sample(0, 10).NotificationsFailed)
}

func TestNotificationDispatcher_NotifyDropsWhenFull(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := newMonitoring(t)
	dispatcher := NewNotificationDispatcher(log, 1, time.Second, monitoring)

	// When more notifications than the buffer are emitted without a running dispatcher
	dispatcher.Notify(context.Background(), domain.Notification{Type: domain.NotifyNewListing, ID: "1"})
	dispatcher.Notify(context.Background(), domain.Notification{Type: domain.NotifyNewListing, ID: "2"})

	// Then the caller is never blocked and the overflow is counted
	req.Len(dispatcher.Queue(), 1)
	req.Equal(uint64(1), monitoring.Sample(1, 1).NotificationsDropped)
}

func TestNotificationDispatcher_Run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockNotificationSink(ctrl)

	received := make(chan domain.Notification, 3)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			received <- n
			return nil
		}).Times(3)

	var notifier contract.INotifier = NewNotificationDispatcher(log, 10, time.Second, newMonitoring(t), sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = notifier.(*NotificationDispatcher).Run(ctx) }()

	for _, id := range []string{"a", "b", "c"} {
		notifier.Notify(ctx, domain.Notification{Type: domain.NotifyMessageReceived, ID: id})
	}

	// Then notifications are delivered in emission order
	for _, id := range []string{"a", "b", "c"} {
		select {
		case n := <-received:
			req.Equal(id, n.ID)
		case <-time.After(time.Second):
			req.Fail("Notification not delivered")
		}
	}
}
