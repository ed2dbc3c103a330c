package spawner

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/tuning"
)

// SpawnContext is what the planner needs to know about one participant. It
// is captured on the simulation goroutine and never changes afterwards.
type SpawnContext struct {
	ParticipantID      uuid.UUID
	CohortID           uuid.UUID
	World              string
	Position           mgl64.Vec3
	RunLevel           int
	AvgLevel           float64
	NearbyParticipants int
	NearbyHostiles     int
	Elapsed            time.Duration
	StageFloor         int
}

type batch struct {
	id       string
	snapshot *tuning.Snapshot
	contexts []SpawnContext
}

// cellKey buckets positions into 16x16 columns for the hostile count cache.
type cellKey struct {
	world  string
	cx, cz int
}

func cellOf(world string, pos mgl64.Vec3) cellKey {
	return cellKey{
		world: world,
		cx:    int(math.Floor(pos.X())) >> 4,
		cz:    int(math.Floor(pos.Z())) >> 4,
	}
}

// collect builds a context for every active participant of every cohort in
// an unpaused world.
func (s *Spawner) collect(snap *tuning.Snapshot) []SpawnContext {
	clear(s.hostileHits)

	now := s.now()
	cfg := &snap.Spawning
	var out []SpawnContext

	for _, c := range s.roster.ActiveCohorts() {
		if s.IsPaused(c.World) {
			continue
		}

		members := s.members(c)
		for _, p := range members {
			if s.suppression.participantSuppressed(c.ID, p.ID, now) {
				continue
			}

			avg, nearby := averageLevel(p, members, cfg.Level.SamplingRadius)
			out = append(out, SpawnContext{
				ParticipantID:      p.ID,
				CohortID:           c.ID,
				World:              c.World,
				Position:           p.Position,
				RunLevel:           p.RunLevel,
				AvgLevel:           avg,
				NearbyParticipants: nearby,
				NearbyHostiles:     s.hostilesNear(c.World, p.Position, cfg.Limits.HostileCountRadius),
				Elapsed:            c.Elapsed,
				StageFloor:         c.StageStartLevel,
			})
		}
	}

	return out
}

// members resolves the cohort's participants that are online, in a run and
// in the cohort's world.
func (s *Spawner) members(c game.Cohort) []game.Participant {
	out := make([]game.Participant, 0, len(c.Participants))
	for _, id := range c.Participants {
		p, ok := s.roster.Participant(id)
		if !ok || !p.Active() || p.World != c.World {
			continue
		}
		out = append(out, p)
	}
	return out
}

// hostilesNear queries the roster at most once per cell per pass.
func (s *Spawner) hostilesNear(world string, pos mgl64.Vec3, radius float64) int {
	key := cellOf(world, pos)
	if n, ok := s.hostileHits[key]; ok {
		return n
	}
	n := s.roster.CountHostilesNear(world, pos, radius)
	s.hostileHits[key] = n
	return n
}

// averageLevel is the mean run level of cohort members within radius of p,
// p included, and how many there are. With nobody in range it is 1.
func averageLevel(p game.Participant, members []game.Participant, radius float64) (float64, int) {
	total, n := 0, 0
	for _, m := range members {
		if m.Position.Sub(p.Position).Len() > radius {
			continue
		}
		total += m.RunLevel
		n++
	}
	if n == 0 {
		return 1, 0
	}
	return float64(total) / float64(n), n
}
