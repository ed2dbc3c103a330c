package spawner

import (
	"context"
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-survivors/internal/driver"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/instructions"
	"github.com/pixil98/go-survivors/internal/sampler"
	"github.com/pixil98/go-survivors/internal/tuning"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }
func (f fixedSource) Intn(n int) int   { return int(float64(f) * float64(n)) }

// countingRoster records how often hostile counts are queried.
type countingRoster struct {
	*game.WorldState
	hostileQueries int
}

func (r *countingRoster) CountHostilesNear(world string, center mgl64.Vec3, radius float64) int {
	r.hostileQueries++
	return r.WorldState.CountHostilesNear(world, center, radius)
}

type staticConfig struct {
	snap *tuning.Snapshot
}

func (c staticConfig) Current() *tuning.Snapshot { return c.snap }

// mockPlacer places everything at a fixed offset from center unless fail is
// set. Filters are honoured so suppression zones can be exercised.
type mockPlacer struct {
	offset mgl64.Vec3
	fail   bool
	calls  int
}

func (m *mockPlacer) Sample(world string, center mgl64.Vec3, _, _ float64, _ int, filters ...sampler.Filter) (mgl64.Vec3, bool) {
	m.calls++
	if m.fail {
		return mgl64.Vec3{}, false
	}
	pos := center.Add(m.offset)
	for _, f := range filters {
		if !f(world, pos) {
			return mgl64.Vec3{}, false
		}
	}
	return pos, true
}

type recordingSink struct {
	failOn string
	got    []instructions.Instruction
	mu     sync.Mutex
}

func (r *recordingSink) Submit(_ context.Context, in instructions.Instruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, in)
	if r.failOn != "" && in.Command == r.failOn {
		return errors.New("rejected")
	}
	return nil
}

func (r *recordingSink) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, in := range r.got {
		out = append(out, in.Command)
	}
	return out
}

type queueScheduler struct {
	tasks chan driver.Task
}

func newQueueScheduler() *queueScheduler {
	return &queueScheduler{tasks: make(chan driver.Task, 16)}
}

func (q *queueScheduler) Submit(task driver.Task) bool {
	select {
	case q.tasks <- task:
		return true
	default:
		return false
	}
}

func archetype(enemy string, weight float64, minLevel int, commands ...string) *game.Archetype {
	return &game.Archetype{
		EnemyType:     enemy,
		Weight:        weight,
		MinSpawnLevel: minLevel,
		Commands:      commands,
	}
}

func snapshot(mutate func(*tuning.Spawning), archetypes map[string]*game.Archetype) *tuning.Snapshot {
	cfg := tuning.DefaultSpawning()
	cfg.Level.TimeScaling.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	worlds := map[string]*game.CombatWorld{
		"arena": {Weight: 1, SpawnPoints: []game.SpawnPoint{{Y: 64}}},
	}
	return tuning.NewSnapshot(cfg, archetypes, worlds)
}
