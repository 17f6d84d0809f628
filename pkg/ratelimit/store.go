package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Store 每个 key 一个令牌桶。mock 按路由限流，key 数量固定，不做过期清理。
type Store struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewStore(limit rate.Limit, burst int) *Store {
	return &Store{
		limiters: make(map[string]*rate.Limiter, 8),
		limit:    limit,
		burst:    burst,
	}
}

// Allow 判断是否允许通过。允许则返回 true。
func (s *Store) Allow(key string) bool {
	s.mu.Lock()
	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = l
	}
	s.mu.Unlock()
	return l.Allow()
}

// SetLimit 热更新：已有的桶立即按新速率补充，新桶也用新参数
func (s *Store) SetLimit(limit rate.Limit, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit, s.burst = limit, burst
	for _, l := range s.limiters {
		l.SetLimit(limit)
		l.SetBurst(burst)
	}
}

func (s *Store) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
