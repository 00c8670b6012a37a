package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// QueueDispatcher hands jobs to the broker; the mailer binary sends them.
type QueueDispatcher struct {
	publisher Publisher
	queue     string
}

func NewQueueDispatcher(publisher Publisher, queue string) *QueueDispatcher {
	return &QueueDispatcher{
		publisher: publisher,
		queue:     queue,
	}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, job email.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid e-mail job: %w", err)
	}
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode e-mail job: %w", err)
	}
	if err = d.publisher.Publish(ctx, d.queue, body); err != nil {
		return fmt.Errorf("failed to enqueue %s e-mail: %w", job.Kind, err)
	}
	return nil
}

// LocalDispatcher feeds an in-process Agent.
type LocalDispatcher struct {
	tasks   chan<- Task
	stopped <-chan struct{}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, job email.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid e-mail job: %w", err)
	}
	// the task channel is buffered and stays writable after the pool stops
	select {
	case <-d.stopped:
		return serviceerrs.ErrMailerStopped
	default:
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to enqueue %s e-mail: %w", job.Kind, ctx.Err())
	case <-d.stopped:
		return serviceerrs.ErrMailerStopped
	case d.tasks <- Task{Job: job}:
		return nil
	}
}

type NoopDispatcher struct {
	log *slog.Logger
}

func NewNoopDispatcher(log *slog.Logger) *NoopDispatcher {
	return &NoopDispatcher{log: log}
}

func (d *NoopDispatcher) Dispatch(ctx context.Context, job email.Job) error {
	d.log.LogAttrs(ctx, slog.LevelWarn, "e-mail dropped, SMTP is not configured",
		slog.String("kind", string(job.Kind)))
	return serviceerrs.ErrEmailsDisabled
}
