package tracker

import "time"

type TrackerOpt func(*Tracker)

// WithAggregateEvery sets how often rankings are rebuilt from samples.
func WithAggregateEvery(d time.Duration) TrackerOpt {
	return func(t *Tracker) {
		if d > 0 {
			t.aggregateEvery = d
		}
	}
}
