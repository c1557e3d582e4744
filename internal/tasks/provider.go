// Package tasks holds the task snapshot the dashboard filters and groups.
package tasks

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
)

// Status is the provider's load state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// Source fetches the full task list.
type Source interface {
	FetchTasks(ctx context.Context) ([]models.Task, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]models.Task, error)

// FetchTasks calls f.
func (f SourceFunc) FetchTasks(ctx context.Context) ([]models.Task, error) {
	return f(ctx)
}

// Snapshot is an immutable view of the provider state.
type Snapshot struct {
	Tasks       []models.Task
	Status      Status
	Err         error
	LastUpdated time.Time
	// Reason is the trigger of the refresh that produced this snapshot.
	Reason string
}

// Provider serves task snapshots and refreshes them from a Source. Every
// refresh is stamped with a monotonic ULID; a response that completes after a
// newer one has been applied is discarded.
type Provider struct {
	src Source

	mu      sync.Mutex
	snap    Snapshot
	latest  ulid.ULID
	entropy io.Reader
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewProvider returns an idle provider over src.
func NewProvider(src Source) *Provider {
	return &Provider{
		src:     src,
		snap:    Snapshot{Tasks: []models.Task{}, Status: StatusIdle},
		entropy: ulid.Monotonic(rand.Reader, 0),
		subs:    make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copySnap()
}

func (p *Provider) copySnap() Snapshot {
	s := p.snap
	s.Tasks = slices.Clone(p.snap.Tasks)
	return s
}

// Subscribe registers fn for snapshot changes and returns its unsubscribe func.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Refresh fetches tasks and publishes them unless a newer refresh already
// landed. On failure the snapshot carries the error and an empty task list.
func (p *Provider) Refresh(ctx context.Context, reason string) error {
	token, err := p.token()
	if err != nil {
		return fmt.Errorf("stamping task refresh: %w", err)
	}
	p.update(token, func(s *Snapshot) {
		s.Status = StatusLoading
		s.Reason = reason
	})

	tasks, fetchErr := p.src.FetchTasks(ctx)
	if fetchErr != nil {
		logger.Warn("Task refresh failed", "reason", reason, "error", fetchErr)
	}
	applied := p.update(token, func(s *Snapshot) {
		s.Reason = reason
		s.LastUpdated = timeNow()
		if fetchErr != nil {
			s.Tasks = []models.Task{}
			s.Status = StatusError
			s.Err = fetchErr
			return
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		s.Tasks = tasks
		s.Status = StatusIdle
		s.Err = nil
	})
	if !applied {
		logger.Debug("Discarding stale task response", "reason", reason, "token", token.String())
	}
	if fetchErr != nil {
		return fmt.Errorf("fetching tasks: %w", fetchErr)
	}
	return nil
}

func (p *Provider) token() (ulid.ULID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.New(ulid.Timestamp(timeNow()), p.entropy)
}

// update applies fn when token is not older than the last applied token,
// then notifies subscribers outside the lock.
func (p *Provider) update(token ulid.ULID, fn func(*Snapshot)) bool {
	p.mu.Lock()
	if token.Compare(p.latest) < 0 {
		p.mu.Unlock()
		return false
	}
	p.latest = token
	fn(&p.snap)
	snap := p.copySnap()
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		notify(fn, snap)
	}
	return true
}

func notify(fn func(Snapshot), snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task subscriber panicked", "panic", r)
		}
	}()
	fn(snap)
}
