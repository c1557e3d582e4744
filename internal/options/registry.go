package options

import (
	"context"
	"sync"
)

// Registry holds one Service per picklist kind for a session.
type Registry struct {
	services map[Kind]*Service
	order    []Kind
}

// NewRegistry builds services for cfgs, or the defaults when cfgs is empty.
func NewRegistry(graph Graph, cfgs ...Config) *Registry {
	if len(cfgs) == 0 {
		cfgs = DefaultConfigs()
	}
	r := &Registry{services: make(map[Kind]*Service, len(cfgs))}
	for _, cfg := range cfgs {
		r.services[cfg.Kind] = NewService(graph, cfg)
		r.order = append(r.order, cfg.Kind)
	}
	return r
}

// Service returns the service for kind, or nil.
func (r *Registry) Service(kind Kind) *Service {
	return r.services[kind]
}

// Kinds lists the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.order...)
}

// SetPolicy applies p to every service.
func (r *Registry) SetPolicy(p ExclusionPolicy) {
	for _, s := range r.services {
		s.SetPolicy(p)
	}
}

// RefreshAll refreshes every service concurrently and returns the first error.
func (r *Registry) RefreshAll(ctx context.Context, force bool) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, kind := range r.order {
		s := r.services[kind]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Refresh(ctx, force); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}
