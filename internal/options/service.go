// Package options provides the project, waiting-for and context picklists.
// Each Service owns its cache and subscribers; a Registry holds one Service
// per kind for a session.
package options

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/logger"
)

// Kind identifies a picklist.
type Kind string

const (
	KindProject Kind = "project"
	KindWaiting Kind = "waiting"
	KindContext Kind = "context"
)

// Candidate is an attribute value found through a reference lookup.
type Candidate struct {
	Value     string
	PageTitle string
}

// Block is a raw block returned by a text scan.
type Block struct {
	UID       string
	PageTitle string
	Text      string
}

// Graph is the query surface options are read from.
type Graph interface {
	// LookupAttribute returns values attached to any of labels by reference.
	LookupAttribute(ctx context.Context, labels []string) ([]Candidate, error)
	// ScanBlocks returns blocks whose text contains any needle, case-insensitively.
	ScanBlocks(ctx context.Context, needles []string) ([]Block, error)
}

// Config describes one picklist.
type Config struct {
	Kind   Kind
	Labels []string
	// Split breaks comma separated values into separate options.
	Split bool
	TTL   time.Duration
}

// DefaultConfigs returns the built-in picklists.
func DefaultConfigs() []Config {
	return []Config{
		{Kind: KindProject, Labels: []string{"Project"}, TTL: constants.OptionsTTL},
		{Kind: KindWaiting, Labels: []string{"Waiting For"}, TTL: constants.OptionsTTL},
		{Kind: KindContext, Labels: []string{"Context"}, Split: true, TTL: constants.OptionsTTL},
	}
}

type stage int

const (
	stageNone stage = iota
	stageQuick
	stageThorough
)

type call struct {
	done chan struct{}
}

// Service is a cached, coalescing picklist over a Graph.
type Service struct {
	graph    Graph
	cfg      Config
	patterns []*regexp.Regexp
	now      func() time.Time

	mu            sync.Mutex
	values        []string
	lastRefreshed time.Time
	inflight      *call
	gen           uint64
	appliedGen    uint64
	appliedStage  stage
	policy        ExclusionPolicy
	subs          map[int]func([]string)
	nextSub       int
}

// NewService builds a Service. A zero TTL uses the default.
func NewService(graph Graph, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = constants.OptionsTTL
	}
	patterns := make([]*regexp.Regexp, len(cfg.Labels))
	for i, label := range cfg.Labels {
		patterns[i] = attributePattern(label)
	}
	return &Service{
		graph:    graph,
		cfg:      cfg,
		patterns: patterns,
		now:      time.Now,
		values:   []string{},
		subs:     make(map[int]func([]string)),
	}
}

// Kind returns the picklist kind.
func (s *Service) Kind() Kind {
	return s.cfg.Kind
}

// Options returns the cached values.
func (s *Service) Options() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.values)
}

// LastRefreshed returns when the last complete refresh landed.
func (s *Service) LastRefreshed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefreshed
}

// SetPolicy replaces the exclusion policy and expires the cache.
func (s *Service) SetPolicy(p ExclusionPolicy) {
	s.mu.Lock()
	s.policy = ExclusionPolicy{Enabled: p.Enabled, Pages: slices.Clone(p.Pages)}
	s.lastRefreshed = time.Time{}
	s.mu.Unlock()
}

// Subscribe registers fn for value changes and returns its unsubscribe func.
func (s *Service) Subscribe(fn func([]string)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Refresh reloads the picklist. Within the TTL it returns immediately, and a
// refresh already in flight is joined instead of duplicated. force skips both
// checks. Graph failures publish an empty result and are not returned.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	s.mu.Lock()
	if !force {
		if !s.lastRefreshed.IsZero() && s.now().Sub(s.lastRefreshed) < s.cfg.TTL {
			s.mu.Unlock()
			return nil
		}
		if c := s.inflight; c != nil {
			s.mu.Unlock()
			select {
			case <-c.done:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("waiting for %s options: %w", s.cfg.Kind, ctx.Err())
			}
		}
	}
	s.gen++
	gen := s.gen
	policy := s.policy
	c := &call{done: make(chan struct{})}
	s.inflight = c
	s.mu.Unlock()

	s.run(ctx, gen, policy)

	s.mu.Lock()
	if s.inflight == c {
		s.inflight = nil
	}
	s.mu.Unlock()
	close(c.done)
	return nil
}

func (s *Service) run(ctx context.Context, gen uint64, policy ExclusionPolicy) {
	lookups, err := s.graph.LookupAttribute(ctx, s.cfg.Labels)
	if err != nil {
		logger.Warn("Option lookup failed", "kind", s.cfg.Kind, "error", err)
		lookups = nil
	}
	quick := s.fromCandidates(lookups, policy)
	s.publish(gen, stageQuick, collect(quick))

	blocks, err := s.graph.ScanBlocks(ctx, s.needles())
	if err != nil {
		logger.Warn("Option scan failed", "kind", s.cfg.Kind, "error", err)
		blocks = nil
	}
	thorough := append(quick, s.fromBlocks(blocks, policy)...)
	s.publish(gen, stageThorough, collect(thorough))
}

func (s *Service) needles() []string {
	out := make([]string, len(s.cfg.Labels))
	for i, label := range s.cfg.Labels {
		out[i] = label + "::"
	}
	return out
}

func (s *Service) fromCandidates(cands []Candidate, policy ExclusionPolicy) []string {
	var out []string
	for _, c := range cands {
		if policy.Excludes(c.PageTitle) {
			continue
		}
		out = append(out, s.split(c.Value)...)
	}
	return out
}

func (s *Service) fromBlocks(blocks []Block, policy ExclusionPolicy) []string {
	var out []string
	for _, b := range blocks {
		if policy.Excludes(b.PageTitle) {
			continue
		}
		for _, re := range s.patterns {
			for _, m := range re.FindAllStringSubmatch(b.Text, -1) {
				out = append(out, s.split(m[1])...)
			}
		}
	}
	return out
}

func (s *Service) split(raw string) []string {
	parts := []string{raw}
	if s.cfg.Split {
		parts = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := NormalizeOption(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// publish stores values unless a result of a later stage, or of the same
// stage from a newer refresh, has already landed. A thorough pass therefore
// always beats a quick pass that finishes after it.
func (s *Service) publish(gen uint64, st stage, values []string) {
	s.mu.Lock()
	if st < s.appliedStage || (st == s.appliedStage && gen < s.appliedGen) {
		s.mu.Unlock()
		logger.Debug("Dropping stale options", "kind", s.cfg.Kind, "gen", gen, "stage", st)
		return
	}
	s.appliedGen = gen
	s.appliedStage = st
	s.values = values
	if st == stageThorough {
		s.lastRefreshed = s.now()
	}
	subs := make([]func([]string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		notify(s.cfg.Kind, fn, slices.Clone(values))
	}
}

// notify runs one subscriber, recovering from a panic so the rest still run.
func notify(kind Kind, fn func([]string), values []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Option subscriber panicked", "kind", kind, "panic", r)
		}
	}()
	fn(values)
}
