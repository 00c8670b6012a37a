package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

const (
	smtpTimeout    = 15 * time.Second
	acquireTimeout = 30 * time.Second
)

type MessageRenderer interface {
	Render(job email.Job) (email.Message, error)
}

type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

type SendSemaphore interface {
	AcquireWithTimeout(ctx context.Context, timeout time.Duration) error
	Release()
}

// Task is a job plus the callback that settles it with its source.
// Done may be nil.
type Task struct {
	Done func(err error)
	Job  email.Job
}

type Result struct {
	Err error
	Job email.Job
}

type WorkerPool struct {
	Renderer       MessageRenderer
	Sender         Sender
	Sema           SendSemaphore
	WaitGroup      *sync.WaitGroup
	Jobs           <-chan Task
	Results        chan<- Result
	OnWorkerStart  func()
	AcquireTimeout time.Duration
}

func NewWorkerPool(
	renderer MessageRenderer,
	sender Sender,
	sema SendSemaphore,
	wg *sync.WaitGroup,
	jobs <-chan Task,
	results chan<- Result,
) *WorkerPool {
	return &WorkerPool{
		Renderer:       renderer,
		Sender:         sender,
		Sema:           sema,
		WaitGroup:      wg,
		Jobs:           jobs,
		Results:        results,
		AcquireTimeout: acquireTimeout,
	}
}

func (pool *WorkerPool) Start(ctx context.Context, workerCount int) context.CancelFunc {
	workerCtx, workerCancel := context.WithCancel(ctx)
	for range workerCount {
		pool.WaitGroup.Add(1)
		go pool.worker(workerCtx)
	}
	log := logger.FromContext(workerCtx).With("module", "worker_pool")
	log.LogAttrs(ctx, slog.LevelInfo,
		"all workers started", slog.Int("count", workerCount))

	return workerCancel
}

func (pool *WorkerPool) worker(ctx context.Context) {
	if pool.OnWorkerStart != nil {
		pool.OnWorkerStart()
	}
	defer pool.WaitGroup.Done()

	log := logger.FromContext(ctx).With("module", "worker_pool")
	defer log.LogAttrs(ctx, slog.LevelDebug, "worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-pool.Jobs:
			if !ok {
				return
			}
			err := pool.process(ctx, log, task.Job)
			if task.Done != nil {
				task.Done(err)
			}
			if pool.Results == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case pool.Results <- Result{Job: task.Job, Err: err}:
			}
		}
	}
}

func (pool *WorkerPool) process(ctx context.Context, log *slog.Logger, job email.Job) error {
	msg, err := pool.Renderer.Render(job)
	if err != nil {
		return fmt.Errorf("failed to render %s e-mail: %w", job.Kind, err)
	}

	if err = pool.Sema.AcquireWithTimeout(ctx, pool.AcquireTimeout); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s e-mail not sent: %w", serviceerrs.ErrMailerStopped, job.Kind, err)
		}
		log.With("unit", "semaphore").LogAttrs(ctx, slog.LevelWarn, err.Error())
		return fmt.Errorf("no free SMTP slot: %w", err)
	}
	log.With("unit", "semaphore").LogAttrs(ctx, slog.LevelDebug, "acquire")

	sendCtx, cancel := context.WithTimeout(ctx, smtpTimeout)
	err = pool.Sender.Send(sendCtx, msg)
	cancel()
	pool.Sema.Release()
	log.With("unit", "semaphore").LogAttrs(ctx, slog.LevelDebug, "release")

	// a send cut short by shutdown is not the message's fault
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %s e-mail not sent: %w", serviceerrs.ErrMailerStopped, job.Kind, err)
	}
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to send e-mail",
			slog.String("kind", string(job.Kind)),
			slog.Any(model.KeyLoggerError, err))
		return fmt.Errorf("failed to send %s e-mail: %w", job.Kind, err)
	}
	return nil
}
