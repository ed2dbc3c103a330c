package spawner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pixil98/go-survivors/internal/driver"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/instructions"
	"github.com/pixil98/go-survivors/internal/rng"
	"github.com/pixil98/go-survivors/internal/sampler"
	"github.com/pixil98/go-survivors/internal/tuning"
)

const (
	DefaultPlannerQueue  = 8
	DefaultShutdownGrace = 2 * time.Second
)

var (
	ErrNotStarted     = errors.New("spawner not started")
	ErrPlannerStopped = errors.New("planner stopped")
)

// Roster is the read side of the live world the spawner plans against.
type Roster interface {
	ActiveCohorts() []game.Cohort
	Participant(id uuid.UUID) (game.Participant, bool)
	CountHostilesNear(world string, center mgl64.Vec3, radius float64) int
}

// Config supplies the tuning snapshot for the current step.
type Config interface {
	Current() *tuning.Snapshot
}

// Placer finds spawn positions around a point.
type Placer interface {
	Sample(world string, center mgl64.Vec3, minDist, maxDist float64, attempts int, filters ...sampler.Filter) (mgl64.Vec3, bool)
}

// Scheduler runs tasks on the simulation goroutine.
type Scheduler interface {
	Submit(task driver.Task) bool
}

// Spawner keeps hostile pressure on every participant of every running
// cohort. Each pass is split in three: contexts are collected on the
// simulation goroutine, planned on the planner goroutine, then executed back
// on the simulation goroutine within the per step budgets.
type Spawner struct {
	roster    Roster
	config    Config
	placer    Placer
	sink      instructions.Sink
	scheduler Scheduler
	src       rng.Source
	expander  *instructions.Expander
	now       func() time.Time

	worlds      sync.Map // string -> *WorldState
	suppression *suppression
	hostileHits map[cellKey]int

	steps    uint64
	work     chan *batch
	started  atomic.Bool
	stopping atomic.Bool
	grace    time.Duration
}

func NewSpawner(roster Roster, config Config, placer Placer, sink instructions.Sink, scheduler Scheduler, src rng.Source, opts ...SpawnerOpt) *Spawner {
	s := &Spawner{
		roster:      roster,
		config:      config,
		placer:      placer,
		sink:        sink,
		scheduler:   scheduler,
		src:         src,
		expander:    instructions.NewExpander(),
		now:         time.Now,
		suppression: newSuppression(),
		hostileHits: map[cellKey]int{},
		work:        make(chan *batch, DefaultPlannerQueue),
		grace:       DefaultShutdownGrace,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Tick counts simulation steps and runs a collection pass every
// StepsPerPass steps. It must be called from the simulation goroutine.
func (s *Spawner) Tick(ctx context.Context) error {
	snap := s.config.Current()
	if snap == nil || !snap.Spawning.Loop.Enabled {
		return nil
	}

	s.steps++
	if s.steps%uint64(max(1, snap.Spawning.Loop.StepsPerPass)) != 0 {
		return nil
	}

	s.RunPass(ctx, snap)
	return nil
}

// RunPass collects spawn contexts and hands them to the planner. It returns
// the number of contexts collected.
func (s *Spawner) RunPass(ctx context.Context, snap *tuning.Snapshot) int {
	s.suppression.prune(s.now())

	contexts := s.collect(snap)
	if len(contexts) == 0 {
		return 0
	}

	b := &batch{
		id:       ulid.Make().String(),
		snapshot: snap,
		contexts: contexts,
	}
	if err := s.enqueue(b); err != nil {
		slog.WarnContext(ctx, "dropping spawn pass", "batch", b.id, "contexts", len(contexts), "error", err)
		return 0
	}
	return len(contexts)
}

func (s *Spawner) enqueue(b *batch) error {
	if s.stopping.Load() {
		return ErrPlannerStopped
	}
	select {
	case s.work <- b:
		return nil
	default:
		if !s.started.Load() {
			return ErrNotStarted
		}
		return errors.New("planner queue full")
	}
}

// Start runs the planner until ctx is cancelled. On shutdown the planner is
// given the grace period to finish the batch in hand; its result is dropped.
func (s *Spawner) Start(ctx context.Context) error {
	s.started.Store(true)

	planCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.planLoop(planCtx)
	}()

	<-ctx.Done()
	s.stopping.Store(true)
	cancel()

	select {
	case <-done:
	case <-time.After(s.grace):
		slog.Warn("planner did not stop within grace period", "grace", s.grace)
	}
	return nil
}

func (s *Spawner) planLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-s.work:
			plans := s.plan(ctx, b)
			if s.stopping.Load() {
				slog.Debug("discarding plans after shutdown", "batch", b.id, "plans", len(plans))
				continue
			}
			if len(plans) == 0 {
				continue
			}
			if !s.scheduler.Submit(func(ctx context.Context) { s.execute(ctx, b, plans) }) {
				slog.Warn("dropping spawn plans", "batch", b.id, "plans", len(plans))
			}
		}
	}
}

// ResetTemplates drops the parsed command templates so changed archetypes
// take effect.
func (s *Spawner) ResetTemplates() {
	s.expander.Reset()
}
