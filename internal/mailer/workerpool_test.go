package mailer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/mailer/mocks"
	"github.com/talx-hub/gopher-users/internal/model/email"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
	"github.com/talx-hub/gopher-users/internal/utils/semaphore"
)

func TestWorkerPool_worker_general(t *testing.T) {
	tests := []struct {
		name       string
		jobs       []email.Job
		wantFailed []bool
	}{
		{
			name:       "all sent",
			jobs:       []email.Job{newAccount("a@example.com"), resetPassword("b@example.com")},
			wantFailed: []bool{false, false},
		},
		{
			name:       "smtp failure in the middle",
			jobs:       []email.Job{newAccount("a@example.com"), newAccount("fail@example.com"), resetPassword("c@example.com")},
			wantFailed: []bool{false, true, false},
		},
		{
			name: "invalid job is not sent",
			jobs: []email.Job{
				{Kind: email.KindResetPassword, To: "a@example.com"},
				{Kind: "unknown", To: "b@example.com"},
				resetPassword("c@example.com"),
			},
			wantFailed: []bool{true, true, false},
		},
		{
			name:       "no jobs",
			jobs:       []email.Job{},
			wantFailed: []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			resultCh := make(chan Result)
			pool := NewWorkerPool(
				newTestRenderer(t),
				configureMockSender(t),
				semaphore.New(1),
				&sync.WaitGroup{},
				generateJobs(t, ctx, tt.jobs),
				resultCh,
			)

			results := runWorker(t, ctx, pool, resultCh)
			require.Len(t, results, len(tt.jobs))
			for i, res := range results {
				assert.Equal(t, tt.jobs[i], res.Job)
				assert.Equal(t, tt.wantFailed[i], res.Err != nil, "job #%d", i)
			}
		})
	}
}

func TestWorkerPool_worker_semaphoreTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sema := mocks.NewMockSendSemaphore(t)
	sema.EXPECT().
		AcquireWithTimeout(mock.Anything, mock.Anything).
		Return(serviceerrs.ErrSemaphoreTimeoutExceeded)
	sender := mocks.NewMockSender(t)

	resultCh := make(chan Result)
	pool := NewWorkerPool(newTestRenderer(t), sender, sema, &sync.WaitGroup{},
		generateJobs(t, ctx, []email.Job{newAccount("a@example.com")}), resultCh)

	results := runWorker(t, ctx, pool, resultCh)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, serviceerrs.ErrSemaphoreTimeoutExceeded)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestWorkerPool_worker_doneCallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks := make(chan Task, 2)
	var settled []error
	var mu sync.Mutex
	done := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		settled = append(settled, err)
	}
	tasks <- Task{Job: newAccount("a@example.com"), Done: done}
	tasks <- Task{Job: newAccount("fail@example.com"), Done: done}
	close(tasks)

	pool := NewWorkerPool(newTestRenderer(t), configureMockSender(t), semaphore.New(1),
		&sync.WaitGroup{}, tasks, nil)
	pool.WaitGroup.Add(1)
	pool.worker(ctx)

	require.Len(t, settled, 2)
	assert.NoError(t, settled[0])
	assert.ErrorIs(t, settled[1], errSMTPDown)
}

func TestWorkerPool_worker_shutdownMidSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sending := make(chan struct{})
	sender := mocks.NewMockSender(t)
	sender.EXPECT().
		Send(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ email.Message) error {
			close(sending)
			<-ctx.Done()
			return ctx.Err()
		}).
		Once()

	settled := make(chan error, 1)
	tasks := make(chan Task, 1)
	tasks <- Task{Job: resetPassword("a@example.com"), Done: func(err error) { settled <- err }}

	pool := NewWorkerPool(newTestRenderer(t), sender, semaphore.New(1), &sync.WaitGroup{}, tasks, nil)
	pool.WaitGroup.Add(1)
	go pool.worker(ctx)

	<-sending
	cancel()
	pool.WaitGroup.Wait()

	select {
	case err := <-settled:
		assert.ErrorIs(t, err, serviceerrs.ErrMailerStopped)
		assert.ErrorIs(t, err, context.Canceled)
	default:
		t.Fatal("task was not settled")
	}
}

func TestWorkerPool_Start_manualCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int32
	tasks := make(chan Task)
	pool := NewWorkerPool(newTestRenderer(t), mocks.NewMockSender(t), semaphore.New(1),
		&sync.WaitGroup{}, tasks, nil)
	pool.OnWorkerStart = func() { started.Add(1) }

	const workerCount = 3
	poolCancel := pool.Start(ctx, workerCount)
	defer poolCancel()

	cancel()
	finished := make(chan struct{})
	go func() {
		pool.WaitGroup.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop after cancel")
	}
	assert.Equal(t, int32(workerCount), started.Load())
}
