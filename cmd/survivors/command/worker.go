package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-survivors/internal/distributor"
	"github.com/pixil98/go-survivors/internal/driver"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/instructions"
	"github.com/pixil98/go-survivors/internal/messaging"
	"github.com/pixil98/go-survivors/internal/rng"
	"github.com/pixil98/go-survivors/internal/sampler"
	"github.com/pixil98/go-survivors/internal/spawner"
	"github.com/pixil98/go-survivors/internal/tracker"
	"github.com/pixil98/go-survivors/internal/tuning"
)

func BuildWorkers(config any) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	cfg.Logging.install()

	// Load the initial configuration; later reloads keep the last good one
	loader, err := cfg.Storage.BuildLoader(cfg.TuningPath)
	if err != nil {
		return nil, err
	}
	snap, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	provider := tuning.NewProvider(snap)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	slog.Info("configuration loaded",
		"archetypes", len(snap.Archetypes),
		"worlds", len(snap.Worlds),
		"seed", seed)

	state := game.NewWorldState()

	occupancy := tracker.NewTracker(state, rng.NewLabelled(seed, "tracker"),
		tracker.WithAggregateEvery(duration(cfg.Tracker.AggregateEvery, tracker.DefaultAggregateEvery)))
	occupancy.Rebuild(snap.Worlds)

	router := distributor.NewDistributor(provider, state, occupancy, rng.NewLabelled(seed, "distributor"))

	stepDriver := driver.NewStepDriver(nil,
		driver.WithStepLength(duration(cfg.StepInterval, driver.DefaultStepLength)))

	workers := service.WorkerList{}

	var sink instructions.Sink = instructions.LogSink{}
	var nats *messaging.NatsServer
	if cfg.Nats.Enabled {
		nats, err = cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		sink = cfg.Nats.buildSink(nats)
		workers["nats"] = nats
	}

	spawnerOpts := []spawner.SpawnerOpt{
		spawner.WithShutdownGrace(duration(cfg.Planner.ShutdownGrace, spawner.DefaultShutdownGrace)),
	}
	if cfg.Planner.QueueSize > 0 {
		spawnerOpts = append(spawnerOpts, spawner.WithPlannerQueue(cfg.Planner.QueueSize))
	}
	spawns := spawner.NewSpawner(
		state,
		provider,
		sampler.New(state, rng.NewLabelled(seed, "sampler")),
		sink,
		stepDriver,
		rng.NewLabelled(seed, "spawner"),
		spawnerOpts...,
	)

	// The tracker samples one spawn point per step alongside the spawner
	stepDriver.AddTicker(occupancy, spawns)

	reloader := tuning.NewReloader(loader, provider,
		tuning.WithReloadInterval(duration(cfg.ReloadInterval, tuning.DefaultReloadInterval)),
		tuning.OnWorldsChanged(occupancy.Rebuild),
		tuning.OnArchetypesChanged(func([]*game.Archetype) { spawns.ResetTemplates() }),
	)

	if nats != nil {
		workers["ingest"] = messaging.NewIngest(nats, state, spawns, stepDriver,
			messaging.WithEventsSubject(cfg.Nats.EventsSubject),
			messaging.WithRouting(router, nats, cfg.Nats.AssignmentsSubject),
		)
	}

	workers["driver"] = stepDriver
	workers["tracker"] = occupancy
	workers["reloader"] = reloader
	workers["planner"] = spawns

	return workers, nil
}
