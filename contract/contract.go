//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"campus-market/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// The supervisor restarts it when Run returns an error or panics
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used as the "name" attribute of supervision logs.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// INotifier hands a notification over to the outbound dispatcher.
// It never blocks the workflow and never reports delivery failures.
type INotifier interface {
	Notify(ctx context.Context, notification domain.Notification)
}

// NotificationSink delivers one notification to one destination.
type NotificationSink interface {
	Consume(ctx context.Context, notification domain.Notification) error
}
