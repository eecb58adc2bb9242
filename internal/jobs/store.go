// Package jobs tracks asynchronous calculations in a keyed store whose
// entries expire after a fixed TTL.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"H2Tank/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var ErrNotFound = errors.New("job not found")

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Status    Status    `json:"status"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store owns every job. Entries are returned by value so callers never share
// state with the store.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	ttl  time.Duration
	sem  *semaphore.Weighted
	log  *zap.Logger
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewStore keeps finished and pending jobs for ttl and runs at most workers
// submitted functions at once.
func NewStore(ttl time.Duration, workers int, log *zap.Logger) *Store {
	if workers < 1 {
		workers = 1
	}
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		sem:  semaphore.NewWeighted(int64(workers)),
		log:  log,
		now:  time.Now,
	}
}

func (s *Store) Create(kind string) Job {
	now := s.now()
	j := &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	metrics.Jobs.WithLabelValues(kind, string(StatusPending)).Inc()
	return *j
}

func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok || !s.now().Before(j.ExpiresAt) {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *j, nil
}

func (s *Store) Start(id string) error {
	return s.update(id, func(j *Job) { j.Status = StatusRunning })
}

func (s *Store) Complete(id string, result any) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusDone
		j.Result = result
	})
}

func (s *Store) Fail(id string, err error) error {
	return s.update(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
	})
}

// update applies fn and restarts the TTL from now.
func (s *Store) update(id string, fn func(*Job)) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(j)
	now := s.now()
	j.UpdatedAt = now
	j.ExpiresAt = now.Add(s.ttl)
	kind, status := j.Kind, j.Status
	s.mu.Unlock()
	metrics.Jobs.WithLabelValues(kind, string(status)).Inc()
	return nil
}

// Submit creates a job and runs fn in the background once a worker slot is free.
func (s *Store) Submit(kind string, fn func() (any, error)) Job {
	j := s.Create(kind)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			_ = s.Fail(j.ID, err)
			return
		}
		defer s.sem.Release(1)

		_ = s.Start(j.ID)
		res, err := fn()
		if err != nil {
			s.log.Warn("job failed", zap.String("id", j.ID), zap.String("kind", kind), zap.Error(err))
			_ = s.Fail(j.ID, err)
			return
		}
		_ = s.Complete(j.ID, res)
	}()
	return j
}

// Wait blocks until every submitted function has returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Sweep drops expired jobs and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.jobs {
		if !now.Before(j.ExpiresAt) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.log.Debug("expired jobs removed", zap.Int("count", n))
			}
		}
	}
}
