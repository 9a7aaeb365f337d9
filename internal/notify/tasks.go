package notify

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-loja/internal/events"
)

// TaskOrderEvent is the asynq task type carrying a persisted domain event to
// the worker for email delivery.
const TaskOrderEvent = "notify:order-event"

// NewOrderEventTask serialises an event into an asynq task.
func NewOrderEventTask(event events.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderEvent, payload, asynq.MaxRetry(5)), nil
}

// Enqueuer publishes order events onto the asynq queue. It satisfies the
// events.Enqueuer interface.
type Enqueuer struct {
	Client *asynq.Client
}

// Enqueue hands the event to the background worker.
func (e Enqueuer) Enqueue(ctx context.Context, event events.Event) error {
	if e.Client == nil {
		return nil
	}
	task, err := NewOrderEventTask(event)
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task)
	return err
}
