package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Mode is the play mode a participant is currently in.
type Mode string

const (
	ModeLobby    Mode = "lobby"
	ModeInRun    Mode = "in_run"
	ModeCooldown Mode = "cooldown"
)

// Participant is a point in time view of a player taking part in a run.
type Participant struct {
	ID       uuid.UUID  `msgpack:"id"`
	World    string     `msgpack:"world"`
	Position mgl64.Vec3 `msgpack:"position"`
	RunLevel int        `msgpack:"run_level"`
	Online   bool       `msgpack:"online"`
	Mode     Mode       `msgpack:"mode"`
}

// Active reports whether the participant is online and playing a run.
func (p Participant) Active() bool {
	return p.Online && p.Mode == ModeInRun
}

// Cohort is a group of participants progressing through one run together.
type Cohort struct {
	ID              uuid.UUID     `msgpack:"id"`
	World           string        `msgpack:"world"`
	Participants    []uuid.UUID   `msgpack:"participants"`
	Elapsed         time.Duration `msgpack:"elapsed"`
	StageComplete   bool          `msgpack:"stage_complete"`
	StageStartLevel int           `msgpack:"stage_start_level"`
}
