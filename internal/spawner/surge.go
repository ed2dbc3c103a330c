package spawner

import (
	"context"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oklog/ulid/v2"
	"github.com/pixil98/go-survivors/internal/game"
)

// SpawnSurge places up to count hostiles around center at the cohort's stage
// level. It runs synchronously and must be called from the simulation
// goroutine. The command budget of one step applies to the whole surge.
func (s *Spawner) SpawnSurge(ctx context.Context, cohort game.Cohort, center mgl64.Vec3, count int) Result {
	var res Result
	snap := s.config.Current()
	if snap == nil || count <= 0 || s.IsPaused(cohort.World) {
		return res
	}

	cfg := &snap.Spawning
	level := cfg.StageLevel(cohort.StageStartLevel)
	filters := s.placementFilters(snap, cohort.ID)
	batchID := ulid.Make().String()

	for i := range count {
		a, err := s.selectArchetype(snap, level, cohort.World)
		if err != nil {
			slog.DebugContext(ctx, "no eligible surge archetype", "world", cohort.World, "level", level, "error", err)
			res.Skipped = count - i
			break
		}
		if res.Commands+len(a.Commands) > cfg.Limits.MaxCommandsPerStep {
			res.Skipped = count - i
			break
		}

		pos, ok := s.placer.Sample(cohort.World, center,
			cfg.Surge.MinDistance, cfg.Surge.MaxDistance,
			cfg.Positioning.MaxSampleAttempts, filters...)
		if !ok {
			res.Skipped++
			continue
		}

		res.Commands += s.issue(ctx, batchID, cohort.World, a, pos, level)
		res.Spawned++
	}

	slog.InfoContext(ctx, "surge spawned",
		"batch", batchID,
		"cohort", cohort.ID,
		"world", cohort.World,
		"level", level,
		"spawned", res.Spawned)
	return res
}

// SpawnStageBoss places one hostile picked uniformly from archetypeIDs that
// exist and are allowed in the cohort's world. Its level is the stage level
// or the archetype's minimum, whichever is higher. When no placement can be
// sampled the boss is placed at center. It reports whether a boss was issued.
func (s *Spawner) SpawnStageBoss(ctx context.Context, cohort game.Cohort, center mgl64.Vec3, archetypeIDs []string) bool {
	snap := s.config.Current()
	if snap == nil {
		return false
	}

	var candidates []*game.Archetype
	for _, id := range archetypeIDs {
		a := snap.Archetype(id)
		if a == nil || !a.AllowedIn(cohort.World) || slices.Contains(candidates, a) {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		slog.WarnContext(ctx, "no stage boss available", "cohort", cohort.ID, "world", cohort.World, "archetypes", archetypeIDs)
		return false
	}

	cfg := &snap.Spawning
	a := candidates[s.src.Intn(len(candidates))]
	level := max(cfg.StageLevel(cohort.StageStartLevel), a.MinSpawnLevel)

	pos, ok := s.placer.Sample(cohort.World, center,
		cfg.Surge.MinDistance, cfg.Surge.MaxDistance,
		cfg.Positioning.MaxSampleAttempts, s.placementFilters(snap, cohort.ID)...)
	if !ok {
		pos = center
	}

	batchID := ulid.Make().String()
	s.issue(ctx, batchID, cohort.World, a, pos, level)
	slog.InfoContext(ctx, "stage boss spawned",
		"batch", batchID,
		"cohort", cohort.ID,
		"archetype", a.ID,
		"level", level)
	return true
}
