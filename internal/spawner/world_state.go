package spawner

import "sync/atomic"

// WorldState is the per world spawner state. It is created on first use and
// lives as long as the process.
type WorldState struct {
	name    string
	paused  atomic.Bool
	hostile atomic.Int64
}

func (w *WorldState) Name() string {
	return w.name
}

func (w *WorldState) Paused() bool {
	return w.paused.Load()
}

// ActiveHostiles is the live number of hostiles the world reports.
func (w *WorldState) ActiveHostiles() int64 {
	return w.hostile.Load()
}

func (s *Spawner) worldState(name string) *WorldState {
	if ws, ok := s.worlds.Load(name); ok {
		return ws.(*WorldState)
	}
	ws, _ := s.worlds.LoadOrStore(name, &WorldState{name: name})
	return ws.(*WorldState)
}

// Pause stops new spawn passes in a world from the next step on.
func (s *Spawner) Pause(world string) {
	s.worldState(world).paused.Store(true)
}

func (s *Spawner) Resume(world string) {
	s.worldState(world).paused.Store(false)
}

func (s *Spawner) IsPaused(world string) bool {
	ws, ok := s.worlds.Load(world)
	return ok && ws.(*WorldState).Paused()
}

func (s *Spawner) ActiveHostiles(world string) int64 {
	ws, ok := s.worlds.Load(world)
	if !ok {
		return 0
	}
	return ws.(*WorldState).ActiveHostiles()
}

func (s *Spawner) HostileSpawned(world string) {
	s.worldState(world).hostile.Add(1)
}

// HostileRemoved decrements the live counter without letting it go negative.
func (s *Spawner) HostileRemoved(world string) {
	ws := s.worldState(world)
	for {
		cur := ws.hostile.Load()
		if cur <= 0 {
			return
		}
		if ws.hostile.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func (s *Spawner) SetActiveHostiles(world string, n int64) {
	s.worldState(world).hostile.Store(max(0, n))
}
