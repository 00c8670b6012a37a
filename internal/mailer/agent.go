package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

// Agent runs the worker pool and reports what it has sent.
type Agent struct {
	pool        *WorkerPool
	tasks       chan Task
	results     chan Result
	stopped     chan struct{}
	workerCount int
	sent        atomic.Uint64
	failed      atomic.Uint64
}

func NewAgent(renderer MessageRenderer, sender Sender, maxConcurrent uint64, workerCount int,
) *Agent {
	tasks := make(chan Task, model.DefaultChannelCapacity)
	results := make(chan Result, model.DefaultChannelCapacity)
	return &Agent{
		pool: NewWorkerPool(
			renderer,
			sender,
			semaphore.New(maxConcurrent),
			&sync.WaitGroup{},
			tasks,
			results,
		),
		tasks:       tasks,
		results:     results,
		stopped:     make(chan struct{}),
		workerCount: workerCount,
	}
}

func (a *Agent) Dispatcher() *LocalDispatcher {
	return &LocalDispatcher{
		tasks:   a.tasks,
		stopped: a.stopped,
	}
}

// Run blocks until ctx is done and all workers have returned.
func (a *Agent) Run(ctx context.Context) {
	log := logger.FromContext(ctx).With("service", "mailer")
	log.LogAttrs(ctx, slog.LevelInfo, "running")

	poolCancel := a.pool.Start(ctx, a.workerCount)
	for {
		select {
		case <-ctx.Done():
			poolCancel()
			a.pool.WaitGroup.Wait()
			close(a.stopped)
			log.LogAttrs(context.Background(), slog.LevelInfo, "stopped",
				slog.Uint64("sent", a.sent.Load()),
				slog.Uint64("failed", a.failed.Load()))
			return
		case res := <-a.results:
			if res.Err != nil {
				a.failed.Add(1)
				log.LogAttrs(ctx, slog.LevelWarn, "e-mail not sent",
					slog.String("kind", string(res.Job.Kind)),
					slog.Any(model.KeyLoggerError, res.Err))
				continue
			}
			a.sent.Add(1)
			log.LogAttrs(ctx, slog.LevelInfo, "e-mail sent",
				slog.String("kind", string(res.Job.Kind)))
		}
	}
}

// Feed moves broker deliveries into the pool until ctx is done or the
// delivery channel closes.
func (a *Agent) Feed(ctx context.Context, deliveries <-chan amqp.Delivery) {
	log := logger.FromContext(ctx).With("service", "mailer")
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.LogAttrs(ctx, slog.LevelWarn, "delivery channel closed")
				return
			}
			task, err := TaskFromDelivery(d, log)
			if err != nil {
				log.LogAttrs(ctx, slog.LevelError, "dropping malformed e-mail job",
					slog.Any(model.KeyLoggerError, err))
				if nackErr := d.Nack(false, false); nackErr != nil {
					log.LogAttrs(ctx, slog.LevelError, "failed to nack delivery",
						slog.Any(model.KeyLoggerError, nackErr))
				}
				continue
			}
			select {
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return
			case a.tasks <- task:
			}
		}
	}
}

// TaskFromDelivery decodes a job and binds its outcome to the delivery:
// success acks, a busy or stopping pool requeues, anything else is dropped.
func TaskFromDelivery(d amqp.Delivery, log *slog.Logger) (Task, error) {
	var job email.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		return Task{}, fmt.Errorf("failed to decode e-mail job: %w", err)
	}

	done := func(err error) {
		var ackErr error
		switch {
		case err == nil:
			ackErr = d.Ack(false)
		case errors.Is(err, serviceerrs.ErrSemaphoreTimeoutExceeded),
			errors.Is(err, serviceerrs.ErrMailerStopped):
			ackErr = d.Nack(false, true)
		default:
			ackErr = d.Nack(false, false)
		}
		if ackErr != nil {
			log.LogAttrs(context.Background(), slog.LevelError, "failed to settle delivery",
				slog.Uint64("tag", d.DeliveryTag),
				slog.Any(model.KeyLoggerError, ackErr))
		}
	}
	return Task{Job: job, Done: done}, nil
}
