package tuning

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-survivors/internal/storage"
)

// Spawning holds the numeric knobs of the spawn scheduler. Every field has a
// default, so a tuning file only needs the values it changes.
type Spawning struct {
	Loop        Loop        `json:"loop" yaml:"loop"`
	Limits      Limits      `json:"limits" yaml:"limits"`
	Positioning Positioning `json:"positioning" yaml:"positioning"`
	Level       Level       `json:"level" yaml:"level"`
	Surge       Surge       `json:"surge" yaml:"surge"`
}

type Loop struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// StepsPerPass is how many simulation steps pass between spawn passes.
	StepsPerPass int `json:"steps_per_pass" yaml:"steps_per_pass"`
}

type Limits struct {
	TargetPerParticipant           int     `json:"target_per_participant" yaml:"target_per_participant"`
	TargetIncreasePerLevel         float64 `json:"target_increase_per_level" yaml:"target_increase_per_level"`
	TargetMax                      int     `json:"target_max" yaml:"target_max"`
	MaxSpawnsPerParticipantPerStep int     `json:"max_spawns_per_participant_per_step" yaml:"max_spawns_per_participant_per_step"`
	MaxSpawnsPerStep               int     `json:"max_spawns_per_step" yaml:"max_spawns_per_step"`
	MaxCommandsPerStep             int     `json:"max_commands_per_step" yaml:"max_commands_per_step"`
	HostileCountRadius             float64 `json:"hostile_count_radius" yaml:"hostile_count_radius"`
}

type Positioning struct {
	MinSpawnDistance  float64 `json:"min_spawn_distance" yaml:"min_spawn_distance"`
	MaxSpawnDistance  float64 `json:"max_spawn_distance" yaml:"max_spawn_distance"`
	MaxSampleAttempts int     `json:"max_sample_attempts" yaml:"max_sample_attempts"`
}

type Level struct {
	SamplingRadius        float64     `json:"sampling_radius" yaml:"sampling_radius"`
	AvgLevelMultiplier    float64     `json:"avg_level_multiplier" yaml:"avg_level_multiplier"`
	PlayerCountMultiplier float64     `json:"player_count_multiplier" yaml:"player_count_multiplier"`
	Offset                float64     `json:"offset" yaml:"offset"`
	Min                   int         `json:"min" yaml:"min"`
	Max                   int         `json:"max" yaml:"max"`
	TimeScaling           TimeScaling `json:"time_scaling" yaml:"time_scaling"`
}

type TimeScaling struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	StepSeconds  int     `json:"step_seconds" yaml:"step_seconds"`
	LevelPerStep float64 `json:"level_per_step" yaml:"level_per_step"`
}

// Surge configures spawns that are triggered on demand around a point.
type Surge struct {
	MinDistance float64 `json:"min_distance" yaml:"min_distance"`
	MaxDistance float64 `json:"max_distance" yaml:"max_distance"`
}

func DefaultSpawning() Spawning {
	return Spawning{
		Loop: Loop{
			Enabled:      true,
			StepsPerPass: 20,
		},
		Limits: Limits{
			TargetPerParticipant:           10,
			TargetIncreasePerLevel:         0,
			TargetMax:                      50,
			MaxSpawnsPerParticipantPerStep: 3,
			MaxSpawnsPerStep:               20,
			MaxCommandsPerStep:             50,
			HostileCountRadius:             30,
		},
		Positioning: Positioning{
			MinSpawnDistance:  8,
			MaxSpawnDistance:  25,
			MaxSampleAttempts: 10,
		},
		Level: Level{
			SamplingRadius:        50,
			AvgLevelMultiplier:    1.0,
			PlayerCountMultiplier: 0.2,
			Offset:                0,
			Min:                   1,
			Max:                   100,
			TimeScaling: TimeScaling{
				Enabled:      true,
				StepSeconds:  60,
				LevelPerStep: 1,
			},
		},
		Surge: Surge{
			MinDistance: 12,
			MaxDistance: 26,
		},
	}
}

func (s *Spawning) Validate() error {
	el := errors.NewErrorList()

	if s.Loop.StepsPerPass < 1 {
		el.Add(fmt.Errorf("loop.steps_per_pass must be at least 1"))
	}
	if s.Limits.TargetMax < 0 {
		el.Add(fmt.Errorf("limits.target_max must not be negative"))
	}
	if s.Limits.MaxSpawnsPerParticipantPerStep < 0 {
		el.Add(fmt.Errorf("limits.max_spawns_per_participant_per_step must not be negative"))
	}
	if s.Limits.MaxSpawnsPerStep < 0 {
		el.Add(fmt.Errorf("limits.max_spawns_per_step must not be negative"))
	}
	if s.Limits.MaxCommandsPerStep < 0 {
		el.Add(fmt.Errorf("limits.max_commands_per_step must not be negative"))
	}
	if s.Limits.HostileCountRadius <= 0 {
		el.Add(fmt.Errorf("limits.hostile_count_radius must be positive"))
	}
	if s.Positioning.MinSpawnDistance < 0 || s.Positioning.MaxSpawnDistance < s.Positioning.MinSpawnDistance {
		el.Add(fmt.Errorf("positioning distances must satisfy 0 <= min_spawn_distance <= max_spawn_distance"))
	}
	if s.Positioning.MaxSampleAttempts < 1 {
		el.Add(fmt.Errorf("positioning.max_sample_attempts must be at least 1"))
	}
	if s.Level.SamplingRadius <= 0 {
		el.Add(fmt.Errorf("level.sampling_radius must be positive"))
	}
	if s.Level.Min > s.Level.Max {
		el.Add(fmt.Errorf("level.min must not exceed level.max"))
	}
	if s.Level.TimeScaling.Enabled && s.Level.TimeScaling.StepSeconds < 1 {
		el.Add(fmt.Errorf("level.time_scaling.step_seconds must be at least 1"))
	}
	if s.Surge.MinDistance < 0 || s.Surge.MaxDistance < s.Surge.MinDistance {
		el.Add(fmt.Errorf("surge distances must satisfy 0 <= min_distance <= max_distance"))
	}

	return el.Err()
}

// TargetFor is the number of hostiles each participant should have nearby,
// growing with the average level of the participants around them.
func (s *Spawning) TargetFor(avgLevel float64) int {
	target := int(math.Floor(float64(s.Limits.TargetPerParticipant) + (avgLevel-1)*s.Limits.TargetIncreasePerLevel))
	return min(target, s.Limits.TargetMax)
}

// EnemyLevel computes the level of enemies spawned for one participant.
// stageFloor raises the lower clamp but never above the configured maximum.
func (s *Spawning) EnemyLevel(avgLevel float64, nearby int, elapsed time.Duration, stageFloor int) int {
	level := avgLevel*s.Level.AvgLevelMultiplier +
		float64(nearby)*s.Level.PlayerCountMultiplier +
		s.Level.Offset

	ts := s.Level.TimeScaling
	if ts.Enabled && ts.StepSeconds > 0 {
		steps := int64(elapsed.Seconds()) / int64(ts.StepSeconds)
		level += float64(steps) * ts.LevelPerStep
	}

	lo, hi := s.Level.Min, s.Level.Max
	lo = min(max(lo, stageFloor), hi)

	if math.IsNaN(level) {
		return lo
	}
	if level <= float64(lo) {
		return lo
	}
	if level >= float64(hi) {
		return hi
	}
	return int(math.Round(level))
}

// StageLevel is the level used for surges: the stage floor, clamped.
func (s *Spawning) StageLevel(stageFloor int) int {
	return min(max(s.Level.Min, stageFloor), s.Level.Max)
}

// LoadSpawning reads a tuning file over the defaults. An empty path yields
// the defaults.
func LoadSpawning(path string) (Spawning, error) {
	s := DefaultSpawning()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Spawning{}, fmt.Errorf("reading tuning file: %w", err)
	}
	err = storage.Decode(path, data, &s)
	if err != nil {
		return Spawning{}, fmt.Errorf("decoding tuning file: %w", err)
	}
	err = s.Validate()
	if err != nil {
		return Spawning{}, fmt.Errorf("validating tuning file: %w", err)
	}
	return s, nil
}
