package statemock

import (
	"context"
	"sync"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/state"
)

var _ state.Repository = (*Store)(nil)

// Store is an in-memory engine-state repository. Err, when set, is returned
// by every call to exercise unavailable paths.
type Store struct {
	mu    sync.Mutex
	bools map[string]bool
	times map[string]time.Time
	Err   error
}

func New() *Store {
	return &Store{bools: map[string]bool{}, times: map[string]time.Time{}}
}

func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.bools[key], nil
}

func (s *Store) SetBool(ctx context.Context, key string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.bools[key] = v
	return nil
}

func (s *Store) GetTime(ctx context.Context, key string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return time.Time{}, s.Err
	}
	return s.times[key], nil
}

func (s *Store) SetTime(ctx context.Context, key string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.times[key] = t
	return nil
}
