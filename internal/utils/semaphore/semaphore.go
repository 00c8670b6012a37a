package semaphore

import (
	"context"
	"time"

	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

type Semaphore struct {
	semaCh chan struct{}
}

func New(maxConcurrent uint64) *Semaphore {
	if maxConcurrent == 0 {
		maxConcurrent = 1
	}
	return &Semaphore{
		semaCh: make(chan struct{}, maxConcurrent),
	}
}

func (s *Semaphore) AcquireWithTimeout(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return serviceerrs.ErrSemaphoreTimeoutExceeded
	case s.semaCh <- struct{}{}:
		return nil
	}
}

func (s *Semaphore) Release() {
	<-s.semaCh
}
