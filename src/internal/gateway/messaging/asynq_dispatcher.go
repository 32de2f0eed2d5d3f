package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"

	"github.com/hibiken/asynq"
)

const TypeDeliverNotification = "notification:deliver"

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqDispatcher defers delivery to a task queue so retries survive a restart.
type AsynqDispatcher struct {
	Client Enqueuer
	Queue  string
	Log    log.Log
}

func NewAsynqDispatcher(client Enqueuer, queue string, log log.Log) *AsynqDispatcher {
	if queue == "" {
		queue = "notifications"
	}
	return &AsynqDispatcher{Client: client, Queue: queue, Log: log}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeDeliverNotification, payload)
	info, err := d.Client.EnqueueContext(ctx, task, asynq.Queue(d.Queue), asynq.MaxRetry(5), asynq.TaskID(n.ID))
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	d.Log.Info("asynq-dispatcher", "notification enqueued", info.ID, n.RecipientID)
	return nil
}

type dispatcher interface {
	Dispatch(ctx context.Context, n *model.Notification) error
}

// DeliverNotificationHandler consumes queued notifications and hands them to next.
func DeliverNotificationHandler(next dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var n model.Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
		}
		return next.Dispatch(ctx, &n)
	}
}
