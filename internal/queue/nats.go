package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"buddy-backends/internal/retry"
)

const (
	subjectPrefix      = "buddy.tasks."
	defaultMaxAttempts = 5
	retryBase          = time.Second
	retryLimit         = 30 * time.Second
)

// NewNATS publishes tasks on "buddy.tasks.<type>" and consumes them through a
// queue group so each task reaches one worker.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func subject(t TaskType) string { return subjectPrefix + string(t) }

func (q *natsQueue) Enqueue(_ context.Context, task Task) error {
	if task.Type == "" {
		return errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.MaxAttempts == 0 {
		task.MaxAttempts = defaultMaxAttempts
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.nc.Publish(subject(task.Type), body)
}

func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	group := "buddy-" + string(taskType) + "-workers"
	sub, err := q.nc.QueueSubscribe(subject(taskType), group, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	q.log.Info("queue worker subscribed", "subject", sub.Subject, "group", group)
	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return err
	}
	return nil
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "subject", msg.Subject, "err", err)
		return
	}

	if wait := time.Until(task.NotBefore); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	if err := handler(ctx, task); err != nil {
		q.retryTask(ctx, task, err)
	}
}

func (q *natsQueue) retryTask(ctx context.Context, task Task, handlerErr error) {
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = defaultMaxAttempts
	}

	if task.Attempts >= task.MaxAttempts {
		q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "attempts", task.Attempts, "err", handlerErr)
		return
	}

	delay := retry.CappedBackoff(task.Attempts, retryBase, retryLimit)
	task.NotBefore = time.Now().Add(delay)
	if err := q.Enqueue(ctx, task); err != nil {
		q.log.Error("failed to re-enqueue task", "id", task.ID, "type", task.Type, "handler_err", handlerErr, "enqueue_err", err)
		return
	}
	q.log.Warn("task failed, retrying", "id", task.ID, "type", task.Type, "attempt", task.Attempts, "delay", delay, "err", handlerErr)
}
