package spawner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/sampler"
	"github.com/pixil98/go-survivors/internal/tuning"
	"github.com/pixil98/go-survivors/internal/weighted"
)

// Plan is one hostile the planner intends to place.
type Plan struct {
	ParticipantID uuid.UUID
	CohortID      uuid.UUID
	World         string
	Position      mgl64.Vec3
	Archetype     *game.Archetype
	Level         int
}

// plan turns a batch of contexts into plans. Plans from different
// participants are interleaved so the execution budget is spread evenly.
func (s *Spawner) plan(ctx context.Context, b *batch) []Plan {
	perContext := make([][]Plan, 0, len(b.contexts))
	for _, sc := range b.contexts {
		if ctx.Err() != nil {
			break
		}
		plans, err := s.planContext(b.snapshot, sc)
		if err != nil {
			slog.Warn("planning spawn context", "batch", b.id, "participant", sc.ParticipantID, "error", err)
			continue
		}
		perContext = append(perContext, plans)
	}
	return interleave(perContext)
}

func (s *Spawner) planContext(snap *tuning.Snapshot, sc SpawnContext) (plans []Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			plans, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	cfg := &snap.Spawning
	toSpawn := min(cfg.TargetFor(sc.AvgLevel)-sc.NearbyHostiles, cfg.Limits.MaxSpawnsPerParticipantPerStep)
	if toSpawn <= 0 {
		return nil, nil
	}

	level := cfg.EnemyLevel(sc.AvgLevel, sc.NearbyParticipants, sc.Elapsed, sc.StageFloor)
	filters := s.placementFilters(snap, sc.CohortID)

	for range toSpawn {
		a, err := s.selectArchetype(snap, level, sc.World)
		if err != nil {
			slog.Debug("no eligible archetype", "world", sc.World, "level", level, "error", err)
			break
		}

		pos, ok := s.placer.Sample(sc.World, sc.Position,
			cfg.Positioning.MinSpawnDistance, cfg.Positioning.MaxSpawnDistance,
			cfg.Positioning.MaxSampleAttempts, filters...)
		if !ok {
			continue
		}

		plans = append(plans, Plan{
			ParticipantID: sc.ParticipantID,
			CohortID:      sc.CohortID,
			World:         sc.World,
			Position:      pos,
			Archetype:     a,
			Level:         level,
		})
	}

	return plans, nil
}

func (s *Spawner) selectArchetype(snap *tuning.Snapshot, level int, world string) (*game.Archetype, error) {
	return weighted.SelectWhere(s.src, snap.Archetypes,
		func(a *game.Archetype) bool { return a.EligibleAt(level, world) },
		func(a *game.Archetype) float64 { return a.Weight },
	)
}

// placementFilters keeps placements inside the world bounds and outside any
// suppression zone that applies to the cohort.
func (s *Spawner) placementFilters(snap *tuning.Snapshot, cohort uuid.UUID) []sampler.Filter {
	return []sampler.Filter{
		func(world string, pos mgl64.Vec3) bool {
			w := snap.World(world)
			return w == nil || w.Contains(pos)
		},
		func(world string, pos mgl64.Vec3) bool {
			return !s.suppression.zoneSuppressed(cohort, world, pos, s.now())
		},
	}
}

// interleave takes one plan from each list in turn until all are exhausted.
func interleave(lists [][]Plan) []Plan {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	out := make([]Plan, 0, total)
	for i := 0; len(out) < total; i++ {
		for _, l := range lists {
			if i < len(l) {
				out = append(out, l[i])
			}
		}
	}
	return out
}
