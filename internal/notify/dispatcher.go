package notify

import (
	"context"
	"log/slog"

	"fintrack/internal/worker"
)

// Dispatcher queues notifications for at-least-once delivery. Failures are
// logged and never reach the caller.
type Dispatcher struct {
	sender      Sender
	jobs        worker.Submitter
	maxAttempts int
}

func NewDispatcher(sender Sender, jobs worker.Submitter, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		sender:      sender,
		jobs:        jobs,
		maxAttempts: maxAttempts,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) {
	if d == nil {
		return
	}
	job := worker.Job{
		Name:        "notify:" + string(n.Kind),
		MaxAttempts: d.maxAttempts,
		Run: func(ctx context.Context) error {
			return d.sender.Send(ctx, n)
		},
	}
	if err := d.jobs.Submit(job); err != nil {
		slog.ErrorContext(ctx, "Failed to queue notification",
			"kind", n.Kind,
			"user_id", n.UserID,
			"error", err)
	}
}
