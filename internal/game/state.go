package game

import (
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Hostile is a live hostile actor placed by the spawner.
type Hostile struct {
	ID       uuid.UUID  `msgpack:"id"`
	World    string     `msgpack:"world"`
	Position mgl64.Vec3 `msgpack:"position"`
}

// WorldState is the in-memory bookkeeping of cohorts, participants, hostiles
// and terrain. Readers receive copies so nothing escapes the lock.
type WorldState struct {
	participants map[uuid.UUID]Participant
	cohorts      map[uuid.UUID]Cohort
	hostiles     map[uuid.UUID]Hostile
	terrain      map[string]*heightmap

	minHeight int
	maxHeight int

	mu sync.RWMutex
}

func NewWorldState() *WorldState {
	return &WorldState{
		participants: map[uuid.UUID]Participant{},
		cohorts:      map[uuid.UUID]Cohort{},
		hostiles:     map[uuid.UUID]Hostile{},
		terrain:      map[string]*heightmap{},
		minHeight:    DefaultMinHeight,
		maxHeight:    DefaultMaxHeight,
	}
}

func (s *WorldState) UpsertParticipant(p Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
}

// MoveParticipant updates the position and world of a known participant.
func (s *WorldState) MoveParticipant(id uuid.UUID, world string, pos mgl64.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}
	p.World = world
	p.Position = pos
	s.participants[id] = p
	return nil
}

func (s *WorldState) RemoveParticipant(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, id)
}

func (s *WorldState) Participant(id uuid.UUID) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[id]
	return p, ok
}

func (s *WorldState) UpsertCohort(c Cohort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Participants = slices.Clone(c.Participants)
	s.cohorts[c.ID] = c
}

func (s *WorldState) EndCohort(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cohorts, id)
}

// AdvanceCohort records progress of a known cohort.
func (s *WorldState) AdvanceCohort(id uuid.UUID, elapsed time.Duration, stageComplete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cohorts[id]
	if !ok {
		return ErrCohortNotFound
	}
	c.Elapsed = elapsed
	c.StageComplete = stageComplete
	s.cohorts[id] = c
	return nil
}

func (s *WorldState) Cohort(id uuid.UUID) (Cohort, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cohorts[id]
	if ok {
		c.Participants = slices.Clone(c.Participants)
	}
	return c, ok
}

// ActiveCohorts returns every known cohort ordered by id so callers see a
// stable order between steps.
func (s *WorldState) ActiveCohorts() []Cohort {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Cohort, 0, len(s.cohorts))
	for _, c := range s.cohorts {
		c.Participants = slices.Clone(c.Participants)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Cohort) int {
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out
}

// AddHostile records a hostile and reports whether it was new.
func (s *WorldState) AddHostile(h Hostile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.hostiles[h.ID]
	s.hostiles[h.ID] = h
	return !exists
}

// RemoveHostile forgets a hostile, returning it if it was known.
func (s *WorldState) RemoveHostile(id uuid.UUID) (Hostile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hostiles[id]
	delete(s.hostiles, id)
	return h, ok
}

// HostileCount returns the number of hostiles in a world.
func (s *WorldState) HostileCount(world string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.hostiles {
		if h.World == world {
			n++
		}
	}
	return n
}

// CountHostilesNear counts hostiles in a world within radius of center.
func (s *WorldState) CountHostilesNear(world string, center mgl64.Vec3, radius float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.hostiles {
		if h.World == world && h.Position.Sub(center).Len() <= radius {
			n++
		}
	}
	return n
}

// CountParticipantsNear counts online participants in a world within radius
// of center.
func (s *WorldState) CountParticipantsNear(world string, center mgl64.Vec3, radius float64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.participants {
		if p.Online && p.World == world && p.Position.Sub(center).Len() <= radius {
			n++
		}
	}
	return n
}

// ParticipantsIn counts online participants in a world.
func (s *WorldState) ParticipantsIn(world string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.participants {
		if p.Online && p.World == world {
			n++
		}
	}
	return n
}

func (s *WorldState) SetColumn(world string, x, z int, c Column) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.terrain[world]
	if !ok {
		h = newHeightmap()
		s.terrain[world] = h
	}
	h.columns[columnKey{x, z}] = c
}

// BlockAt returns the block at a cell. Unknown worlds and cells are air.
func (s *WorldState) BlockAt(world string, x, y, z int) Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.terrain[world]
	if !ok {
		return BlockAir
	}
	return h.blockAt(x, y, z)
}

// HeightRange returns the inclusive lower and exclusive upper build limit.
func (s *WorldState) HeightRange(string) (int, int) {
	return s.minHeight, s.maxHeight
}
