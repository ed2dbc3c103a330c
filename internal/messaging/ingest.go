package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/go-survivors/internal/distributor"
	"github.com/pixil98/go-survivors/internal/driver"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/spawner"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	DefaultEventsSubject      = "survivors.events"
	DefaultAssignmentsSubject = "survivors.assignments"
)

// EventType names a world event.
type EventType string

const (
	EventParticipantUpsert  EventType = "participant.upsert"
	EventParticipantRemoved EventType = "participant.removed"
	EventCohortUpsert       EventType = "cohort.upsert"
	EventCohortEnded        EventType = "cohort.ended"
	EventHostileSpawned     EventType = "hostile.spawned"
	EventHostileRemoved     EventType = "hostile.removed"
	EventTerrainColumn      EventType = "terrain.column"
	EventSurge              EventType = "cohort.surge"
	EventStageBoss          EventType = "cohort.stage_boss"
	EventRouteCohort        EventType = "cohort.route"
	EventWorldPause         EventType = "world.pause"
	EventWorldResume        EventType = "world.resume"
	EventWorldEnable        EventType = "world.enable"
	EventWorldDisable       EventType = "world.disable"
)

// Event is the envelope of everything the world reports. Only the field
// matching Type is set.
type Event struct {
	Type        EventType         `msgpack:"type"`
	ID          uuid.UUID         `msgpack:"id,omitempty"`
	World       string            `msgpack:"world,omitempty"`
	Participant *game.Participant `msgpack:"participant,omitempty"`
	Cohort      *game.Cohort      `msgpack:"cohort,omitempty"`
	Hostile     *game.Hostile     `msgpack:"hostile,omitempty"`
	Column      *ColumnUpdate     `msgpack:"column,omitempty"`
	Surge       *SurgeRequest     `msgpack:"surge,omitempty"`
}

type ColumnUpdate struct {
	World  string      `msgpack:"world"`
	X      int         `msgpack:"x"`
	Z      int         `msgpack:"z"`
	Column game.Column `msgpack:"column"`
}

// SurgeRequest asks for an immediate spawn around Center. Count is used by
// surges, Archetypes by stage bosses.
type SurgeRequest struct {
	Cohort     uuid.UUID  `msgpack:"cohort"`
	Center     mgl64.Vec3 `msgpack:"center"`
	Count      int        `msgpack:"count,omitempty"`
	Archetypes []string   `msgpack:"archetypes,omitempty"`
}

// Assignment tells the world where a routed cohort starts.
type Assignment struct {
	Cohort   uuid.UUID  `msgpack:"cohort"`
	World    string     `msgpack:"world"`
	Point    int        `msgpack:"point"`
	Position mgl64.Vec3 `msgpack:"position"`
	Yaw      *float64   `msgpack:"yaw,omitempty"`
	Pitch    *float64   `msgpack:"pitch,omitempty"`
}

// State is the world bookkeeping kept current by events.
type State interface {
	UpsertParticipant(p game.Participant)
	RemoveParticipant(id uuid.UUID)
	UpsertCohort(c game.Cohort)
	EndCohort(id uuid.UUID)
	Cohort(id uuid.UUID) (game.Cohort, bool)
	AddHostile(h game.Hostile) bool
	RemoveHostile(id uuid.UUID) (game.Hostile, bool)
	SetColumn(world string, x, z int, c game.Column)
}

// Spawns is the part of the spawner driven by events.
type Spawns interface {
	Pause(world string)
	Resume(world string)
	HostileSpawned(world string)
	HostileRemoved(world string)
	ClearSuppression(cohort uuid.UUID)
	SpawnSurge(ctx context.Context, cohort game.Cohort, center mgl64.Vec3, count int) spawner.Result
	SpawnStageBoss(ctx context.Context, cohort game.Cohort, center mgl64.Vec3, archetypeIDs []string) bool
}

// Router places new cohorts in combat worlds.
type Router interface {
	Route(ctx context.Context) (distributor.Route, error)
	Enable(world string)
	Disable(world string)
}

type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(subject string, data []byte)) (func(), error)
}

type Scheduler interface {
	Submit(task driver.Task) bool
}

// Ingest applies world events to the in-memory state.
type Ingest struct {
	sub       Subscriber
	state     State
	spawns    Spawns
	scheduler Scheduler
	subject   string

	router        Router
	pub           Publisher
	assignSubject string
}

func NewIngest(sub Subscriber, state State, spawns Spawns, scheduler Scheduler, opts ...IngestOpt) *Ingest {
	i := &Ingest{
		sub:           sub,
		state:         state,
		spawns:        spawns,
		scheduler:     scheduler,
		subject:       DefaultEventsSubject,
		assignSubject: DefaultAssignmentsSubject,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Start subscribes once the broker is ready and stays subscribed until ctx
// is cancelled.
func (i *Ingest) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-i.sub.Ready():
	}

	unsubscribe, err := i.sub.Subscribe(i.subject+".>", func(subject string, data []byte) {
		if err := i.Handle(ctx, data); err != nil {
			slog.WarnContext(ctx, "handling world event", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to world events: %w", err)
	}
	defer unsubscribe()

	slog.InfoContext(ctx, "world event ingest subscribed", "subject", i.subject+".>")
	<-ctx.Done()
	return nil
}

// Handle decodes and applies one event.
func (i *Ingest) Handle(ctx context.Context, data []byte) error {
	var ev Event
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	return i.apply(ctx, ev)
}

func (i *Ingest) apply(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventParticipantUpsert:
		if ev.Participant == nil {
			return missing(ev.Type, "participant")
		}
		i.state.UpsertParticipant(*ev.Participant)

	case EventParticipantRemoved:
		i.state.RemoveParticipant(ev.ID)

	case EventCohortUpsert:
		if ev.Cohort == nil {
			return missing(ev.Type, "cohort")
		}
		i.state.UpsertCohort(*ev.Cohort)

	case EventCohortEnded:
		i.state.EndCohort(ev.ID)
		i.spawns.ClearSuppression(ev.ID)

	case EventHostileSpawned:
		if ev.Hostile == nil {
			return missing(ev.Type, "hostile")
		}
		if i.state.AddHostile(*ev.Hostile) {
			i.spawns.HostileSpawned(ev.Hostile.World)
		}

	case EventHostileRemoved:
		if h, ok := i.state.RemoveHostile(ev.ID); ok {
			i.spawns.HostileRemoved(h.World)
		}

	case EventTerrainColumn:
		if ev.Column == nil {
			return missing(ev.Type, "column")
		}
		i.state.SetColumn(ev.Column.World, ev.Column.X, ev.Column.Z, ev.Column.Column)

	case EventSurge, EventStageBoss:
		return i.scheduleSurge(ev)

	case EventRouteCohort:
		return i.route(ctx, ev.ID)

	case EventWorldPause:
		i.spawns.Pause(ev.World)
	case EventWorldResume:
		i.spawns.Resume(ev.World)

	case EventWorldEnable, EventWorldDisable:
		if i.router == nil {
			return fmt.Errorf("%s: routing not configured", ev.Type)
		}
		if ev.Type == EventWorldEnable {
			i.router.Enable(ev.World)
		} else {
			i.router.Disable(ev.World)
		}

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// scheduleSurge runs the request on the simulation goroutine.
func (i *Ingest) scheduleSurge(ev Event) error {
	if ev.Surge == nil {
		return missing(ev.Type, "surge")
	}
	req := *ev.Surge
	cohort, ok := i.state.Cohort(req.Cohort)
	if !ok {
		return fmt.Errorf("%s: cohort %s not found", ev.Type, req.Cohort)
	}

	task := func(ctx context.Context) {
		if ev.Type == EventStageBoss {
			i.spawns.SpawnStageBoss(ctx, cohort, req.Center, req.Archetypes)
			return
		}
		i.spawns.SpawnSurge(ctx, cohort, req.Center, req.Count)
	}
	if !i.scheduler.Submit(task) {
		return fmt.Errorf("%s: simulation queue full", ev.Type)
	}
	return nil
}

// route picks a world for a new cohort and publishes the assignment.
func (i *Ingest) route(ctx context.Context, cohort uuid.UUID) error {
	if i.router == nil || i.pub == nil {
		return fmt.Errorf("%s: routing not configured", EventRouteCohort)
	}

	r, err := i.router.Route(ctx)
	if err != nil {
		return fmt.Errorf("routing cohort %s: %w", cohort, err)
	}

	a := Assignment{
		Cohort:   cohort,
		World:    r.World.Name,
		Point:    r.Entry.Index,
		Position: r.Entry.Point.Position(),
		Yaw:      r.Entry.Point.Yaw,
		Pitch:    r.Entry.Point.Pitch,
	}
	data, err := msgpack.Marshal(&a)
	if err != nil {
		return fmt.Errorf("encoding assignment: %w", err)
	}
	if err := i.pub.Publish(i.assignSubject, data); err != nil {
		return fmt.Errorf("publishing assignment: %w", err)
	}

	slog.InfoContext(ctx, "cohort routed", "cohort", cohort, "world", a.World, "point", a.Point)
	return nil
}

func missing(t EventType, field string) error {
	return fmt.Errorf("%s event without %s", t, field)
}

type IngestOpt func(*Ingest)

// WithEventsSubject sets the subject prefix events arrive under.
func WithEventsSubject(subject string) IngestOpt {
	return func(i *Ingest) {
		if subject != "" {
			i.subject = subject
		}
	}
}

// WithRouting enables cohort routing. Assignments are published to subject.
func WithRouting(router Router, pub Publisher, subject string) IngestOpt {
	return func(i *Ingest) {
		i.router = router
		i.pub = pub
		if subject != "" {
			i.assignSubject = subject
		}
	}
}
