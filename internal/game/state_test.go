package game

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-testutil"
)

func TestWorldState_CountsNear(t *testing.T) {
	s := NewWorldState()

	s.AddHostile(Hostile{ID: uuid.New(), World: "arena", Position: mgl64.Vec3{0, 64, 0}})
	s.AddHostile(Hostile{ID: uuid.New(), World: "arena", Position: mgl64.Vec3{10, 64, 0}})
	s.AddHostile(Hostile{ID: uuid.New(), World: "arena", Position: mgl64.Vec3{100, 64, 0}})
	s.AddHostile(Hostile{ID: uuid.New(), World: "desert", Position: mgl64.Vec3{0, 64, 0}})

	s.UpsertParticipant(Participant{ID: uuid.New(), World: "arena", Online: true, Position: mgl64.Vec3{1, 64, 1}})
	s.UpsertParticipant(Participant{ID: uuid.New(), World: "arena", Online: false, Position: mgl64.Vec3{1, 64, 1}})

	testutil.AssertEqual(t, "hostiles near", s.CountHostilesNear("arena", mgl64.Vec3{0, 64, 0}, 20), 2)
	testutil.AssertEqual(t, "hostiles in world", s.HostileCount("arena"), 3)
	testutil.AssertEqual(t, "participants near", s.CountParticipantsNear("arena", mgl64.Vec3{0, 64, 0}, 20), 1)
	testutil.AssertEqual(t, "participants in world", s.ParticipantsIn("arena"), 1)
}

func TestWorldState_HostileLifecycle(t *testing.T) {
	s := NewWorldState()
	h := Hostile{ID: uuid.New(), World: "arena"}

	testutil.AssertEqual(t, "first add", s.AddHostile(h), true)
	testutil.AssertEqual(t, "second add", s.AddHostile(h), false)

	_, ok := s.RemoveHostile(h.ID)
	testutil.AssertEqual(t, "removed", ok, true)
	_, ok = s.RemoveHostile(h.ID)
	testutil.AssertEqual(t, "removed twice", ok, false)
}

func TestWorldState_ActiveCohortsCopies(t *testing.T) {
	s := NewWorldState()
	member := uuid.New()
	c := Cohort{ID: uuid.New(), World: "arena", Participants: []uuid.UUID{member}}
	s.UpsertCohort(c)

	got := s.ActiveCohorts()
	testutil.AssertEqual(t, "cohort count", len(got), 1)

	got[0].Participants[0] = uuid.Nil
	again, _ := s.Cohort(c.ID)
	testutil.AssertEqual(t, "member untouched", again.Participants[0], member)

	s.EndCohort(c.ID)
	testutil.AssertEqual(t, "cohort count after end", len(s.ActiveCohorts()), 0)
}

func TestWorldState_UnknownEntities(t *testing.T) {
	s := NewWorldState()

	err := s.MoveParticipant(uuid.New(), "arena", mgl64.Vec3{})
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}

	err = s.AdvanceCohort(uuid.New(), 0, true)
	if !errors.Is(err, ErrCohortNotFound) {
		t.Errorf("expected ErrCohortNotFound, got %v", err)
	}
}

func TestWorldState_BlockAt(t *testing.T) {
	s := NewWorldState()
	s.SetColumn("arena", 3, 4, Column{Surface: 64})
	s.SetColumn("arena", 5, 5, Column{Surface: 62, Liquid: true})

	tests := map[string]struct {
		world   string
		x, y, z int
		exp     Block
	}{
		"below surface": {world: "arena", x: 3, y: 10, z: 4, exp: BlockGround},
		"at surface":    {world: "arena", x: 3, y: 64, z: 4, exp: BlockGround},
		"above surface": {world: "arena", x: 3, y: 65, z: 4, exp: BlockAir},
		"liquid top":    {world: "arena", x: 5, y: 62, z: 5, exp: BlockLiquid},
		"under liquid":  {world: "arena", x: 5, y: 61, z: 5, exp: BlockGround},
		"unset column":  {world: "arena", x: 0, y: 0, z: 0, exp: BlockAir},
		"unknown world": {world: "void", x: 3, y: 10, z: 4, exp: BlockAir},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "block", s.BlockAt(tt.world, tt.x, tt.y, tt.z), tt.exp)
		})
	}
}
