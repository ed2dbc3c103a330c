package spawner

import (
	"context"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/instructions"
)

// Result summarises one execution pass.
type Result struct {
	Spawned  int
	Commands int
	Skipped  int
}

// execute issues plans in order until a budget is reached. A plan whose
// commands do not fit the remaining command budget ends the pass; no plan is
// ever issued in part.
func (s *Spawner) execute(ctx context.Context, b *batch, plans []Plan) Result {
	limits := b.snapshot.Spawning.Limits
	var res Result

	for i, p := range plans {
		n := len(p.Archetype.Commands)
		if res.Spawned >= limits.MaxSpawnsPerStep || res.Commands+n > limits.MaxCommandsPerStep {
			res.Skipped = len(plans) - i
			break
		}
		res.Commands += s.issue(ctx, b.id, p.World, p.Archetype, p.Position, p.Level)
		res.Spawned++
	}

	slog.DebugContext(ctx, "spawn pass executed",
		"batch", b.id,
		"plans", len(plans),
		"spawned", res.Spawned,
		"commands", res.Commands,
		"skipped", res.Skipped)
	return res
}

// issue expands and submits every command of an archetype at pos. Failures
// are logged per command. It returns the number of commands attempted.
func (s *Spawner) issue(ctx context.Context, batchID, world string, a *game.Archetype, pos mgl64.Vec3, level int) int {
	vars := instructions.Vars{
		SX:          int(math.Floor(pos.X())),
		SY:          int(math.Floor(pos.Y())),
		SZ:          int(math.Floor(pos.Z())),
		World:       world,
		Level:       level,
		EnemyType:   a.EnemyType,
		ArchetypeID: a.ID,
	}

	for _, tmpl := range a.Commands {
		cmd, err := s.expander.Expand(tmpl, vars)
		if err != nil {
			slog.WarnContext(ctx, "expanding spawn command", "batch", batchID, "archetype", a.ID, "error", err)
			continue
		}

		err = s.sink.Submit(ctx, instructions.Instruction{
			Batch:       batchID,
			World:       world,
			ArchetypeID: a.ID,
			Level:       level,
			Command:     cmd,
		})
		if err != nil {
			slog.WarnContext(ctx, "submitting spawn command", "batch", batchID, "archetype", a.ID, "error", err)
		}
	}
	return len(a.Commands)
}
