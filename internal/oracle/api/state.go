package api

import (
	"sync/atomic"
	"time"
)

// State 可热更新的运行参数，配置 reload 时整体替换
type State struct {
	balance    atomic.Uint64
	eventDelay atomic.Int64
}

func NewState(balance uint64, eventDelay time.Duration) *State {
	s := &State{}
	s.Set(balance, eventDelay)
	return s
}

func (s *State) Set(balance uint64, eventDelay time.Duration) {
	s.balance.Store(balance)
	s.eventDelay.Store(int64(eventDelay))
}

func (s *State) Balance() uint64 { return s.balance.Load() }

func (s *State) EventDelay() time.Duration { return time.Duration(s.eventDelay.Load()) }
