package tracker

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/rng"
)

const (
	DefaultAggregateEvery = time.Second

	// topCandidates is how many of the least loaded points are considered
	// when picking one at random.
	topCandidates = 3
)

// Counter answers the two spatial queries a sample needs.
type Counter interface {
	CountParticipantsNear(world string, center mgl64.Vec3, radius float64) int
	CountHostilesNear(world string, center mgl64.Vec3, radius float64) int
}

// Entry is one registered spawn point.
type Entry struct {
	World  string
	Index  int
	Point  game.SpawnPoint
	Radius float64
}

func (e Entry) key() entryKey {
	return entryKey{world: e.World, index: e.Index}
}

type entryKey struct {
	world string
	index int
}

// Load is the most recent sample for an entry.
type Load struct {
	Entry        Entry
	Participants int
	Hostiles     int
}

func (l Load) Total() int {
	return l.Participants + l.Hostiles
}

// Tracker keeps an approximate ranking of spawn point load. Tick samples one
// entry per step; Aggregate sorts everything sampled so far and publishes the
// result for lock free readers.
type Tracker struct {
	counter        Counter
	src            rng.Source
	aggregateEvery time.Duration

	entries []Entry
	first   map[string]Entry
	cursor  int
	mu      sync.Mutex

	samples sync.Map // entryKey -> Load

	global   atomic.Pointer[[]Load]
	perWorld atomic.Pointer[map[string][]Load]
}

func NewTracker(counter Counter, src rng.Source, opts ...TrackerOpt) *Tracker {
	t := &Tracker{
		counter:        counter,
		src:            src,
		aggregateEvery: DefaultAggregateEvery,
		first:          map[string]Entry{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Rebuild replaces the flattened entry list with the spawn points of every
// enabled world and forgets all samples.
func (t *Tracker) Rebuild(worlds []*game.CombatWorld) {
	var entries []Entry
	first := map[string]Entry{}

	for _, w := range worlds {
		if !w.IsEnabled() {
			continue
		}
		for i, sp := range w.SpawnPoints {
			e := Entry{World: w.Name, Index: i, Point: sp, Radius: sp.Radius()}
			entries = append(entries, e)
			if i == 0 {
				first[w.Name] = e
			}
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.first = first
	t.cursor = 0
	t.samples.Clear()
	t.mu.Unlock()

	t.global.Store(nil)
	t.perWorld.Store(nil)

	slog.Info("occupancy tracker rebuilt", "entries", len(entries), "worlds", len(first))
}

// Tick samples the entry under the cursor and advances it by one.
func (t *Tracker) Tick(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) == 0 {
		return nil
	}
	e := t.entries[t.cursor]
	t.cursor = (t.cursor + 1) % len(t.entries)

	center := e.Point.Position()
	t.samples.Store(e.key(), Load{
		Entry:        e,
		Participants: t.counter.CountParticipantsNear(e.World, center, e.Radius),
		Hostiles:     t.counter.CountHostilesNear(e.World, center, e.Radius),
	})
	return nil
}

// Start runs Aggregate periodically until the context ends.
func (t *Tracker) Start(ctx context.Context) error {
	ticker := time.NewTicker(t.aggregateEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.Aggregate()
		}
	}
}

// Aggregate publishes a global ranking and one ranking per world, each sorted
// by ascending total load.
func (t *Tracker) Aggregate() {
	var global []Load
	t.samples.Range(func(_, v any) bool {
		global = append(global, v.(Load))
		return true
	})
	sortLoads(global)

	perWorld := map[string][]Load{}
	for _, l := range global {
		perWorld[l.Entry.World] = append(perWorld[l.Entry.World], l)
	}

	t.global.Store(&global)
	t.perWorld.Store(&perWorld)
}

// sortLoads orders by total load, then by world and index so equal loads
// keep a stable order between passes.
func sortLoads(loads []Load) {
	slices.SortStableFunc(loads, func(a, b Load) int {
		return cmp.Or(
			cmp.Compare(a.Total(), b.Total()),
			cmp.Compare(a.Entry.World, b.Entry.World),
			cmp.Compare(a.Entry.Index, b.Entry.Index),
		)
	})
}

// SelectLeastLoaded picks one of the least loaded spawn points of a world.
// Before the first ranking exists it falls back to the world's first point.
func (t *Tracker) SelectLeastLoaded(world string) (Entry, bool) {
	if ranking := t.WorldRanking(world); len(ranking) > 0 {
		return t.pick(ranking), true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.first[world]
	return e, ok
}

// SelectGlobalLeastLoaded is SelectLeastLoaded across every world.
func (t *Tracker) SelectGlobalLeastLoaded() (Entry, bool) {
	if ranking := t.GlobalRanking(); len(ranking) > 0 {
		return t.pick(ranking), true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[0], true
}

func (t *Tracker) pick(ranking []Load) Entry {
	n := min(topCandidates, len(ranking))
	return ranking[t.src.Intn(n)].Entry
}

// GlobalRanking returns the last published global ranking. The slice is
// shared and must not be modified.
func (t *Tracker) GlobalRanking() []Load {
	p := t.global.Load()
	if p == nil {
		return nil
	}
	return *p
}

// WorldRanking returns the last published ranking for one world. The slice is
// shared and must not be modified.
func (t *Tracker) WorldRanking(world string) []Load {
	p := t.perWorld.Load()
	if p == nil {
		return nil
	}
	return (*p)[world]
}

// Sample returns the latest unaggregated sample for a spawn point.
func (t *Tracker) Sample(world string, index int) (Load, bool) {
	v, ok := t.samples.Load(entryKey{world: world, index: index})
	if !ok {
		return Load{}, false
	}
	return v.(Load), true
}

// Len returns the number of registered entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
