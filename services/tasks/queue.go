package tasks

import (
	"context"
	"errors"
	"fmt"

	"skillbridge/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is implemented by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue produces background tasks for notifications, reminders and payouts.
type Queue struct {
	Client Enqueuer
	Logger *zap.Logger
}

func NewQueue(client Enqueuer, logger *zap.Logger) *Queue {
	return &Queue{Client: client, Logger: logger}
}

func (q *Queue) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	info, err := q.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		q.Logger.Debug("task already queued", zap.String("type", task.Type()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	q.Logger.Debug("task enqueued",
		zap.String("type", task.Type()),
		zap.String("id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

// Notify queues a notification for delivery by the worker.
func (q *Queue) Notify(ctx context.Context, n models.Notification) error {
	task, opts, err := NewNotificationTask(n)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

func (q *Queue) ScheduleOverdueReminder(ctx context.Context, p models.ReminderPayload) error {
	task, opts, err := NewOverdueTask(p)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

func (q *Queue) EnqueuePayout(ctx context.Context, p models.PayoutPayload) error {
	task, opts, err := NewPayoutTask(p)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}
