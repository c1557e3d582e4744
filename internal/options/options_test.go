package options

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	mu        sync.Mutex
	lookups   []Candidate
	blocks    []Block
	lookupErr error
	scanErr   error
	gate      chan struct{}

	lookupCalls atomic.Int32
	scanCalls   atomic.Int32
	needles     []string
}

func (g *fakeGraph) LookupAttribute(ctx context.Context, labels []string) ([]Candidate, error) {
	g.lookupCalls.Add(1)
	if g.gate != nil {
		<-g.gate
	}
	return g.lookups, g.lookupErr
}

func (g *fakeGraph) ScanBlocks(ctx context.Context, needles []string) ([]Block, error) {
	g.scanCalls.Add(1)
	g.mu.Lock()
	g.needles = needles
	g.mu.Unlock()
	return g.blocks, g.scanErr
}

func TestNormalizeOption(t *testing.T) {
	tests := map[string]string{
		"  Website ":      "Website",
		"#urgent":         "urgent",
		"@office":         "office",
		"[[Alex Chen]]":   "Alex Chen",
		"#[[Big Launch]]": "Big Launch",
		"[[]]":            "",
		"   ":             "",
		"[[open":          "[[open",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeOption(in), "input %q", in)
	}
}

func TestExclusionPolicy(t *testing.T) {
	off := ExclusionPolicy{Pages: []string{"Archive"}}
	on := ExclusionPolicy{Enabled: true, Pages: []string{"[[Archive]]"}}

	assert.True(t, off.Excludes("roam/templates"))
	assert.True(t, off.Excludes("[[Roam/JS]]"))
	assert.False(t, off.Excludes("Archive"))
	assert.True(t, on.Excludes("archive"))
	assert.False(t, on.Excludes("Projects"))
}

func TestRefreshUnionsLookupAndScan(t *testing.T) {
	g := &fakeGraph{
		lookups: []Candidate{
			{Value: "[[Website]]", PageTitle: "Work"},
			{Value: "Hidden", PageTitle: "roam/templates"},
		},
		blocks: []Block{
			{PageTitle: "Daily", Text: "call bob\n  project:: #garden\nnotes"},
			{PageTitle: "Daily", Text: "PROJECT:: website"},
			{PageTitle: "Archive", Text: "project:: Old"},
		},
	}
	s := NewService(g, Config{Kind: KindProject, Labels: []string{"project"}})
	s.SetPolicy(ExclusionPolicy{Enabled: true, Pages: []string{"archive"}})

	require.NoError(t, s.Refresh(context.Background(), false))
	assert.Equal(t, []string{"garden", "Website"}, s.Options())
	assert.Equal(t, []string{"project::"}, g.needles)
	assert.False(t, s.LastRefreshed().IsZero())
}

func TestRefreshSplitsContexts(t *testing.T) {
	g := &fakeGraph{blocks: []Block{{PageTitle: "p", Text: "Context:: @home, [[Phone]] ,#errands"}}}
	s := NewService(g, DefaultConfigs()[2])

	require.NoError(t, s.Refresh(context.Background(), false))
	assert.Equal(t, []string{"errands", "home", "Phone"}, s.Options())
}

func TestRefreshHonoursTTLAndForce(t *testing.T) {
	g := &fakeGraph{lookups: []Candidate{{Value: "a", PageTitle: "p"}}}
	s := NewService(g, Config{Kind: KindWaiting, Labels: []string{"Waiting For"}, TTL: time.Minute})
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, s.Refresh(ctx, false))
	require.NoError(t, s.Refresh(ctx, false))
	assert.EqualValues(t, 1, g.lookupCalls.Load())

	require.NoError(t, s.Refresh(ctx, true))
	assert.EqualValues(t, 2, g.lookupCalls.Load())

	clock = clock.Add(2 * time.Minute)
	require.NoError(t, s.Refresh(ctx, false))
	assert.EqualValues(t, 3, g.lookupCalls.Load())

	s.SetPolicy(ExclusionPolicy{})
	require.NoError(t, s.Refresh(ctx, false))
	assert.EqualValues(t, 4, g.lookupCalls.Load())
}

func TestRefreshCoalescesInFlight(t *testing.T) {
	g := &fakeGraph{gate: make(chan struct{}), lookups: []Candidate{{Value: "x", PageTitle: "p"}}}
	s := NewService(g, DefaultConfigs()[0])
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Refresh(ctx, false))
	}()
	require.Eventually(t, func() bool { return g.lookupCalls.Load() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Refresh(ctx, false))
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(g.gate)
	wg.Wait()

	assert.EqualValues(t, 1, g.lookupCalls.Load())
	assert.Equal(t, []string{"x"}, s.Options())
}

func TestRefreshWaiterHonoursContext(t *testing.T) {
	g := &fakeGraph{gate: make(chan struct{})}
	s := NewService(g, DefaultConfigs()[0])

	go func() { _ = s.Refresh(context.Background(), false) }()
	require.Eventually(t, func() bool { return g.lookupCalls.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Refresh(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	close(g.gate)
}

func TestRefreshSwallowsGraphErrors(t *testing.T) {
	g := &fakeGraph{lookupErr: errors.New("boom"), scanErr: errors.New("boom")}
	s := NewService(g, DefaultConfigs()[0])

	require.NoError(t, s.Refresh(context.Background(), false))
	assert.Empty(t, s.Options())
	assert.False(t, s.LastRefreshed().IsZero())
}

func TestSubscribersSeeQuickThenThorough(t *testing.T) {
	g := &fakeGraph{
		lookups: []Candidate{{Value: "a", PageTitle: "p"}},
		blocks:  []Block{{PageTitle: "p", Text: "Project:: b"}},
	}
	s := NewService(g, DefaultConfigs()[0])

	var got [][]string
	unsubscribe := s.Subscribe(func(v []string) { got = append(got, v) })
	require.NoError(t, s.Refresh(context.Background(), true))
	assert.Equal(t, [][]string{{"a"}, {"a", "b"}}, got)

	unsubscribe()
	require.NoError(t, s.Refresh(context.Background(), true))
	assert.Len(t, got, 2)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	g := &fakeGraph{lookups: []Candidate{{Value: "a", PageTitle: "p"}}}
	s := NewService(g, DefaultConfigs()[0])

	calls := 0
	s.Subscribe(func([]string) { panic("bad subscriber") })
	s.Subscribe(func([]string) { calls++ })

	require.NotPanics(t, func() {
		require.NoError(t, s.Refresh(context.Background(), false))
	})
	assert.Equal(t, 2, calls)
}

func TestPublishKeepsThoroughResult(t *testing.T) {
	s := NewService(&fakeGraph{}, DefaultConfigs()[0])

	s.publish(2, stageThorough, []string{"complete"})
	s.publish(3, stageQuick, []string{"partial"})
	assert.Equal(t, []string{"complete"}, s.Options())

	s.publish(1, stageThorough, []string{"older"})
	assert.Equal(t, []string{"complete"}, s.Options())

	s.publish(3, stageThorough, []string{"newer"})
	assert.Equal(t, []string{"newer"}, s.Options())
}

func TestRegistry(t *testing.T) {
	g := &fakeGraph{blocks: []Block{{PageTitle: "p", Text: "Project:: site\nWaiting For:: [[Sam]]\nContext:: home, work"}}}
	r := NewRegistry(g)

	assert.Equal(t, []Kind{KindProject, KindWaiting, KindContext}, r.Kinds())
	require.NoError(t, r.RefreshAll(context.Background(), false))
	assert.Equal(t, []string{"site"}, r.Service(KindProject).Options())
	assert.Equal(t, []string{"Sam"}, r.Service(KindWaiting).Options())
	assert.Equal(t, []string{"home", "work"}, r.Service(KindContext).Options())
	assert.Nil(t, r.Service("unknown"))

	r.SetPolicy(ExclusionPolicy{Enabled: true, Pages: []string{"p"}})
	require.NoError(t, r.RefreshAll(context.Background(), false))
	assert.Empty(t, r.Service(KindProject).Options())
}
