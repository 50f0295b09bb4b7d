package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mocktest-service/internal/logger"
	"mocktest-service/internal/metrics"
)

// Registry holds the in-memory attempt workspaces. Nothing outlives the process.
type Registry struct {
	deps Deps
	ttl  time.Duration
	log  *logger.Logger

	mu       sync.RWMutex
	attempts map[string]*Orchestrator
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	deps = deps.withDefaults()
	return &Registry{
		deps:     deps,
		ttl:      idleTTL,
		log:      deps.Log.With("component", "registry"),
		attempts: make(map[string]*Orchestrator),
	}
}

func (r *Registry) Create() *Orchestrator {
	id := uuid.NewString()
	o := NewOrchestrator(id, r.deps)

	r.mu.Lock()
	r.attempts[id] = o
	r.mu.Unlock()

	metrics.AttemptOpened()
	r.log.Debug("attempt created", "attempt_id", id)
	return o
}

func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.RLock()
	o, ok := r.attempts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return o, nil
}

func (r *Registry) Discard(id string) error {
	r.mu.Lock()
	o, ok := r.attempts[id]
	delete(r.attempts, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	o.Close()
	metrics.AttemptClosed()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attempts)
}

// Sweep discards attempts untouched since now-ttl and returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	var stale []*Orchestrator
	for id, o := range r.attempts {
		if o.IdleSince().Before(cutoff) {
			stale = append(stale, o)
			delete(r.attempts, id)
		}
	}
	r.mu.Unlock()

	for _, o := range stale {
		o.Close()
		metrics.AttemptClosed()
	}
	if len(stale) > 0 {
		r.log.Info("swept idle attempts", "count", len(stale))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(r.deps.Now())
		}
	}
}

// Close discards every attempt.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.attempts
	r.attempts = make(map[string]*Orchestrator)
	r.mu.Unlock()

	for _, o := range all {
		o.Close()
		metrics.AttemptClosed()
	}
}
