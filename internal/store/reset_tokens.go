package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

const usedMarker = "1"

// RedisResetTokens remembers the ids of consumed reset tokens until they
// would have expired anyway.
type RedisResetTokens struct {
	client redis.Cmdable
}

func NewRedisResetTokens(client redis.Cmdable) *RedisResetTokens {
	return &RedisResetTokens{client: client}
}

func (s *RedisResetTokens) resetKey(tokenID string) string {
	return key("reset", tokenID)
}

// MarkUsed returns serviceerrs.ErrTokenAlreadyUsed on the second call with
// the same id.
func (s *RedisResetTokens) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}

	first, err := s.client.SetNX(ctx, s.resetKey(tokenID), usedMarker, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to mark reset token as used: %w", err)
	}
	if !first {
		return serviceerrs.ErrTokenAlreadyUsed
	}
	return nil
}

type MemoryResetTokens struct {
	used map[string]time.Time
	now  func() time.Time
	mu   sync.Mutex
}

func NewMemoryResetTokens() *MemoryResetTokens {
	return &MemoryResetTokens{
		used: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (s *MemoryResetTokens) MarkUsed(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, expiresAt := range s.used {
		if !now.Before(expiresAt) {
			delete(s.used, id)
		}
	}

	if _, ok := s.used[tokenID]; ok {
		return serviceerrs.ErrTokenAlreadyUsed
	}
	s.used[tokenID] = now.Add(ttl)
	return nil
}
