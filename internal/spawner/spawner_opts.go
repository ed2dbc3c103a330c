package spawner

import "time"

type SpawnerOpt func(*Spawner)

func WithPlannerQueue(n int) SpawnerOpt {
	return func(s *Spawner) {
		s.work = make(chan *batch, max(1, n))
	}
}

func WithShutdownGrace(d time.Duration) SpawnerOpt {
	return func(s *Spawner) {
		s.grace = d
	}
}

func WithClock(now func() time.Time) SpawnerOpt {
	return func(s *Spawner) {
		s.now = now
	}
}
