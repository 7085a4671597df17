package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillbridge/models"
	"skillbridge/services/payment"
	"skillbridge/services/tasks"
	"skillbridge/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer sends a queued notification.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// OverdueHandler reacts to an engagement passing its end date.
type OverdueHandler interface {
	HandleOverdue(ctx context.Context, engagementID string) error
}

// Releaser pays an engagement's fee out to its provider.
type Releaser interface {
	Release(ctx context.Context, p models.PayoutPayload) (string, error)
}

// payoutHoldInterval is how long a payout waits before checking again for a
// connected account. With the payout task's retry budget this holds it for days.
const payoutHoldInterval = 12 * time.Hour

// retryDelay backs off normally except for payouts waiting on an account.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	if errors.Is(err, payment.ErrNoPayoutAccount) {
		return payoutHoldInterval
	}
	return asynq.DefaultRetryDelayFunc(n, err, task)
}

// isFailure keeps held payouts out of the failure stats.
func isFailure(err error) bool {
	return !errors.Is(err, payment.ErrNoPayoutAccount)
}

// Worker consumes the background task queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker wires handlers for every task type the engagement service produces.
func NewWorker(redisOpt asynq.RedisClientOpt, notifier Deliverer, engagements OverdueHandler, payouts Releaser, logger *zap.Logger) *Worker {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueCritical: 6,
				tasks.QueueDefault:  3,
			},
			Logger:         logger.Sugar(),
			RetryDelayFunc: retryDelay,
			IsFailure:      isFailure,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				if errors.Is(err, payment.ErrNoPayoutAccount) && retried >= maxRetry {
					logger.Error("payout archived without a connected account; replay it from the archive once the provider connects",
						zap.ByteString("payload", task.Payload()),
						zap.Error(err))
					return
				}
				logger.Warn("task failed",
					zap.String("type", task.Type()),
					zap.Int("retry", retried),
					zap.Int("maxRetry", maxRetry),
					zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationSend, handleNotification(notifier, logger))
	mux.HandleFunc(tasks.TypeEngagementOverdue, handleOverdue(engagements, logger))
	mux.HandleFunc(tasks.TypePayoutRelease, handlePayout(payouts, logger))

	return &Worker{server: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *Worker) Start() {
	go func() {
		w.logger.Info("starting task worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("failed to start worker",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Fatal("max worker start attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func decode(task *asynq.Task, v interface{}) error {
	if err := json.Unmarshal(task.Payload(), v); err != nil {
		// A payload that does not decode will never succeed on retry.
		return fmt.Errorf("invalid %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func record(taskType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	utils.TasksProcessed.WithLabelValues(taskType, result).Inc()
}

func handleNotification(notifier Deliverer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) (err error) {
		defer func() { record(task.Type(), err) }()
		var n models.Notification
		if err := decode(task, &n); err != nil {
			return err
		}
		logger.Debug("delivering notification", zap.String("userId", n.UserID), zap.String("type", n.Type))
		return notifier.Deliver(ctx, n)
	}
}

func handleOverdue(engagements OverdueHandler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) (err error) {
		defer func() { record(task.Type(), err) }()
		var p models.ReminderPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		logger.Info("engagement end date reached", zap.String("engagementId", p.EngagementID))
		return engagements.HandleOverdue(ctx, p.EngagementID)
	}
}

func handlePayout(payouts Releaser, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) (err error) {
		defer func() { record(task.Type(), err) }()
		var p models.PayoutPayload
		if err := decode(task, &p); err != nil {
			return err
		}
		transferID, err := payouts.Release(ctx, p)
		if errors.Is(err, payment.ErrNoPayoutAccount) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warn("payout held until provider connects an account",
				zap.String("engagementId", p.EngagementID),
				zap.String("providerId", p.ProviderID),
				zap.Int("retry", retried),
				zap.Duration("nextCheck", payoutHoldInterval))
			return err
		}
		if err != nil {
			return err
		}
		logger.Info("payout task done", zap.String("engagementId", p.EngagementID), zap.String("transferId", transferID))
		return nil
	}
}
