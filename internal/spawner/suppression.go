package spawner

import (
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type participantSuppression struct {
	cohort  uuid.UUID
	expires time.Time
}

// zone suppresses placements inside a horizontal circle. A nil cohort
// applies to every cohort in the world.
type zone struct {
	cohort  uuid.UUID
	world   string
	center  mgl64.Vec3
	radius  float64
	expires time.Time
}

func (z zone) covers(cohort uuid.UUID, world string, pos mgl64.Vec3) bool {
	if z.cohort != uuid.Nil && z.cohort != cohort {
		return false
	}
	if z.world != world {
		return false
	}
	dx := pos.X() - z.center.X()
	dz := pos.Z() - z.center.Z()
	return dx*dx+dz*dz <= z.radius*z.radius
}

// suppression tracks temporary spawn exclusions. It is read by the planner
// and written by callers on other goroutines.
type suppression struct {
	participants map[uuid.UUID]participantSuppression
	zones        []zone
	mu           sync.RWMutex
}

func newSuppression() *suppression {
	return &suppression{participants: map[uuid.UUID]participantSuppression{}}
}

func (s *suppression) suppressParticipant(cohort, id uuid.UUID, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.participants[id]
	if ok && old.cohort == cohort && old.expires.After(expires) {
		return
	}
	s.participants[id] = participantSuppression{cohort: cohort, expires: expires}
}

func (s *suppression) addZone(z zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = append(s.zones, z)
}

func (s *suppression) clear(cohort uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.participants {
		if p.cohort == cohort {
			delete(s.participants, id)
		}
	}
	s.zones = slices.DeleteFunc(s.zones, func(z zone) bool {
		return z.cohort == cohort
	})
}

func (s *suppression) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.participants)
	s.zones = nil
}

func (s *suppression) prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.participants {
		if !p.expires.After(now) {
			delete(s.participants, id)
		}
	}
	s.zones = slices.DeleteFunc(s.zones, func(z zone) bool {
		return !z.expires.After(now)
	})
}

func (s *suppression) participantSuppressed(cohort, id uuid.UUID, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	return ok && p.cohort == cohort && p.expires.After(now)
}

func (s *suppression) zoneSuppressed(cohort uuid.UUID, world string, pos mgl64.Vec3, now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, z := range s.zones {
		if z.expires.After(now) && z.covers(cohort, world, pos) {
			return true
		}
	}
	return false
}

// SuppressParticipants stops spawning around the given participants of a
// cohort for d. An existing longer suppression for the same cohort is kept.
func (s *Spawner) SuppressParticipants(cohort uuid.UUID, ids []uuid.UUID, d time.Duration) {
	if cohort == uuid.Nil || len(ids) == 0 || d <= 0 {
		return
	}
	expires := s.now().Add(d)
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		s.suppression.suppressParticipant(cohort, id, expires)
	}
}

// AddSuppressionZone rejects placements within radius of center for d. Pass
// uuid.Nil as cohort to apply it to every cohort in the world.
func (s *Spawner) AddSuppressionZone(cohort uuid.UUID, world string, center mgl64.Vec3, radius float64, d time.Duration) {
	if world == "" || radius <= 0 || d <= 0 {
		return
	}
	s.suppression.addZone(zone{
		cohort:  cohort,
		world:   world,
		center:  center,
		radius:  radius,
		expires: s.now().Add(d),
	})
}

// ClearSuppression drops every participant and zone suppression of a cohort.
func (s *Spawner) ClearSuppression(cohort uuid.UUID) {
	if cohort == uuid.Nil {
		return
	}
	s.suppression.clear(cohort)
}
