package tuning

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestSpawning_EnemyLevel(t *testing.T) {
	tests := map[string]struct {
		modify     func(*Spawning)
		avg        float64
		nearby     int
		elapsed    time.Duration
		stageFloor int
		exp        int
	}{
		"defaults single participant": {
			avg: 5, nearby: 1, exp: 5,
		},
		"player count adds up": {
			avg: 5, nearby: 5, exp: 6,
		},
		"time scaling": {
			avg: 5, nearby: 0, elapsed: 3*time.Minute + 59*time.Second, exp: 8,
		},
		"time scaling disabled": {
			modify:  func(s *Spawning) { s.Level.TimeScaling.Enabled = false },
			avg:     5,
			elapsed: 10 * time.Minute,
			exp:     5,
		},
		"clamped to min": {
			modify: func(s *Spawning) { s.Level.Offset = -1000 },
			avg:    5,
			exp:    1,
		},
		"clamped to max": {
			avg: 5000, exp: 100,
		},
		"stage floor raises min": {
			avg: 1, stageFloor: 12, exp: 12,
		},
		"stage floor above max": {
			avg: 1, stageFloor: 500, exp: 100,
		},
		"rounds half away from zero": {
			modify: func(s *Spawning) { s.Level.Offset = 0.5 },
			avg:    4,
			exp:    5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := DefaultSpawning()
			if tt.modify != nil {
				tt.modify(&s)
			}
			got := s.EnemyLevel(tt.avg, tt.nearby, tt.elapsed, tt.stageFloor)
			testutil.AssertEqual(t, "level", got, tt.exp)
		})
	}
}

func TestSpawning_EnemyLevelAlwaysClamped(t *testing.T) {
	values := []float64{math.Inf(-1), -1e12, -3.7, 0, 0.49, 1, 42.5, 1e12, math.Inf(1), math.NaN()}
	nearby := []int{0, 1, 1000000}

	for _, mult := range values {
		for _, offset := range values {
			for _, avg := range values {
				for _, n := range nearby {
					s := DefaultSpawning()
					s.Level.Min = 3
					s.Level.Max = 40
					s.Level.AvgLevelMultiplier = mult
					s.Level.Offset = offset
					s.Level.PlayerCountMultiplier = mult

					got := s.EnemyLevel(avg, n, time.Hour, 0)
					if got < 3 || got > 40 {
						t.Fatalf("level %d out of range for mult=%v offset=%v avg=%v nearby=%d", got, mult, offset, avg, n)
					}
				}
			}
		}
	}
}

func TestSpawning_TargetFor(t *testing.T) {
	tests := map[string]struct {
		increase float64
		max      int
		avg      float64
		exp      int
	}{
		"fixed target":      {increase: 0, max: 50, avg: 30, exp: 10},
		"grows with level":  {increase: 0.5, max: 50, avg: 5, exp: 12},
		"floors fractional": {increase: 0.3, max: 50, avg: 2, exp: 10},
		"capped":            {increase: 1, max: 15, avg: 100, exp: 15},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := DefaultSpawning()
			s.Limits.TargetIncreasePerLevel = tt.increase
			s.Limits.TargetMax = tt.max
			testutil.AssertEqual(t, "target", s.TargetFor(tt.avg), tt.exp)
		})
	}
}

func TestSpawning_Validate(t *testing.T) {
	tests := map[string]struct {
		modify func(*Spawning)
		expErr string
	}{
		"defaults": {},
		"zero steps per pass": {
			modify: func(s *Spawning) { s.Loop.StepsPerPass = 0 },
			expErr: "steps_per_pass",
		},
		"inverted distances": {
			modify: func(s *Spawning) { s.Positioning.MinSpawnDistance = 30 },
			expErr: "positioning distances",
		},
		"inverted levels": {
			modify: func(s *Spawning) { s.Level.Min = 200 },
			expErr: "level.min must not exceed level.max",
		},
		"no attempts": {
			modify: func(s *Spawning) { s.Positioning.MaxSampleAttempts = 0 },
			expErr: "max_sample_attempts",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := DefaultSpawning()
			if tt.modify != nil {
				tt.modify(&s)
			}
			err := s.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestLoadSpawning(t *testing.T) {
	s, err := LoadSpawning("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "defaults", s, DefaultSpawning())

	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	err = os.WriteFile(path, []byte("limits:\n  max_spawns_per_step: 7\nlevel:\n  max: 60\n"), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	s, err = LoadSpawning(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "overridden", s.Limits.MaxSpawnsPerStep, 7)
	testutil.AssertEqual(t, "overridden level", s.Level.Max, 60)
	testutil.AssertEqual(t, "kept default", s.Limits.MaxCommandsPerStep, 50)
	testutil.AssertEqual(t, "kept nested default", s.Level.TimeScaling.StepSeconds, 60)

	bad := filepath.Join(dir, "bad.json")
	err = os.WriteFile(bad, []byte(`{"level":{"min":10,"max":5}}`), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, err = LoadSpawning(bad)
	testutil.AssertErrorContains(t, err, "validating tuning file")
}
