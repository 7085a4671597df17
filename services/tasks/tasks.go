package tasks

import (
	"encoding/json"
	"time"

	"skillbridge/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationSend  = "notification:send"
	TypeEngagementOverdue = "engagement:overdue"
	TypePayoutRelease     = "payout:release"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationSend, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Queue(QueueDefault)}
	return task, opts, nil
}

// NewOverdueTask fires at the engagement's end date. The task id makes
// rescheduling for the same engagement a no-op.
func NewOverdueTask(p models.ReminderPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeEngagementOverdue, b)
	opts := []asynq.Option{
		asynq.ProcessAt(p.FireDate),
		asynq.TaskID("overdue:" + p.EngagementID),
		asynq.Retention(24 * time.Hour),
		asynq.Queue(QueueDefault),
	}
	return task, opts, nil
}

func NewPayoutTask(p models.PayoutPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePayoutRelease, b)
	opts := []asynq.Option{
		asynq.TaskID("payout:" + p.EngagementID),
		asynq.MaxRetry(10),
		asynq.Queue(QueueCritical),
	}
	return task, opts, nil
}
