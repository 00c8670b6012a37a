package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

// RedisLoginThrottle counts failed logins per username inside a fixed
// window that starts with the first failure. A non-positive maxFailures
// disables the throttle.
type RedisLoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

func NewRedisLoginThrottle(client redis.Cmdable, maxFailures int64, window time.Duration,
) *RedisLoginThrottle {
	return &RedisLoginThrottle{
		client:      client,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (t *RedisLoginThrottle) loginKey(username string) string {
	return key("login", strings.ToLower(username))
}

func (t *RedisLoginThrottle) disabled() bool {
	return t.maxFailures <= 0 || t.window <= 0
}

func (t *RedisLoginThrottle) Check(ctx context.Context, username string) error {
	if t.disabled() {
		return nil
	}

	failures, err := t.client.Get(ctx, t.loginKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read login failures: %w", err)
	}
	if failures >= t.maxFailures {
		return &serviceerrs.TooManyAttemptsError{Key: username, Failures: failures}
	}
	return nil
}

func (t *RedisLoginThrottle) Fail(ctx context.Context, username string) error {
	if t.disabled() {
		return nil
	}

	k := t.loginKey(username)
	if err := t.client.Incr(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to count login failure: %w", err)
	}
	// NX keeps the window of the first failure and retries a lost TTL.
	if err := t.client.ExpireNX(ctx, k, t.window).Err(); err != nil {
		return fmt.Errorf("failed to set login failure window: %w", err)
	}
	return nil
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, username string) error {
	if t.disabled() {
		return nil
	}
	if err := t.client.Del(ctx, t.loginKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}

type failureWindow struct {
	expiresAt time.Time
	failures  int64
}

type MemoryLoginThrottle struct {
	windows     map[string]failureWindow
	nextSweep   time.Time
	now         func() time.Time
	maxFailures int64
	window      time.Duration
	mu          sync.Mutex
}

func NewMemoryLoginThrottle(maxFailures int64, window time.Duration) *MemoryLoginThrottle {
	return &MemoryLoginThrottle{
		windows:     make(map[string]failureWindow),
		now:         time.Now,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (t *MemoryLoginThrottle) disabled() bool {
	return t.maxFailures <= 0 || t.window <= 0
}

// current returns the live window for username. Must be called with mu held.
func (t *MemoryLoginThrottle) current(username string) (failureWindow, bool) {
	k := strings.ToLower(username)
	w, ok := t.windows[k]
	if !ok {
		return failureWindow{}, false
	}
	if !t.now().Before(w.expiresAt) {
		delete(t.windows, k)
		return failureWindow{}, false
	}
	return w, true
}

// sweep drops expired windows at most once per window length, so the map
// holds only usernames that failed recently. Must be called with mu held.
func (t *MemoryLoginThrottle) sweep() {
	now := t.now()
	if now.Before(t.nextSweep) {
		return
	}
	for k, w := range t.windows {
		if !now.Before(w.expiresAt) {
			delete(t.windows, k)
		}
	}
	t.nextSweep = now.Add(t.window)
}

func (t *MemoryLoginThrottle) Check(_ context.Context, username string) error {
	if t.disabled() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.current(username)
	if ok && w.failures >= t.maxFailures {
		return &serviceerrs.TooManyAttemptsError{Key: username, Failures: w.failures}
	}
	return nil
}

func (t *MemoryLoginThrottle) Fail(_ context.Context, username string) error {
	if t.disabled() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep()
	w, ok := t.current(username)
	if !ok {
		w = failureWindow{expiresAt: t.now().Add(t.window)}
	}
	w.failures++
	t.windows[strings.ToLower(username)] = w
	return nil
}

func (t *MemoryLoginThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.windows, strings.ToLower(username))
	return nil
}
