package mailer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-users/internal/mailer/mocks"
	"github.com/talx-hub/gopher-users/internal/model/email"
)

var errSMTPDown = &smtpError{"550 mailbox unavailable"}

type smtpError struct {
	msg string
}

func (e *smtpError) Error() string {
	return e.msg
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()

	r, err := NewRenderer("gopher-users", "https://users.example.com/", 48*time.Hour)
	require.NoError(t, err)
	return r
}

// configureMockSender fails every message addressed to a fail* recipient.
func configureMockSender(t *testing.T) *mocks.MockSender {
	t.Helper()

	mockSender := mocks.NewMockSender(t)
	mockSender.
		EXPECT().
		Send(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, msg email.Message) error {
			if strings.HasPrefix(msg.To, "fail") {
				return errSMTPDown
			}
			return nil
		}).
		Maybe()
	return mockSender
}

func generateJobs(t *testing.T, ctx context.Context, jobs []email.Job) chan Task {
	t.Helper()

	tasks := make(chan Task, len(jobs))
	go func() {
		defer close(tasks)
		for _, j := range jobs {
			select {
			case <-ctx.Done():
				return
			case tasks <- Task{Job: j}:
			}
		}
	}()
	return tasks
}

func listenChannel[T any](t *testing.T, ctx context.Context, dataCh <-chan T) []T {
	t.Helper()

	results := make([]T, 0)
	for {
		select {
		case <-ctx.Done():
			return results
		case data, ok := <-dataCh:
			if !ok {
				return results
			}
			results = append(results, data)
		}
	}
}

func runWorker(t *testing.T, ctx context.Context, pool *WorkerPool, resultCh chan Result,
) []Result {
	t.Helper()

	helperCtx, helperCancel := context.WithCancel(context.Background())
	defer helperCancel()

	helperWG := &sync.WaitGroup{}
	helperWG.Add(1)
	var results []Result
	go func() {
		defer helperWG.Done()
		results = listenChannel(t, helperCtx, resultCh)
	}()

	pool.WaitGroup.Add(1)
	go pool.worker(ctx)
	pool.WaitGroup.Wait()
	close(resultCh)
	helperWG.Wait()

	return results
}

func newAccount(to string) email.Job {
	return email.Job{
		Kind:     email.KindNewAccount,
		To:       to,
		Username: to,
		Password: "very-strong-password",
	}
}

func resetPassword(to string) email.Job {
	return email.Job{
		Kind:     email.KindResetPassword,
		To:       to,
		Username: to,
		Token:    "header.payload.signature",
	}
}
