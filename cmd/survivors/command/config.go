package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	StepInterval   string        `json:"step_interval"`
	Storage        StorageConfig `json:"storage"`
	TuningPath     string        `json:"tuning_path"`
	ReloadInterval string        `json:"reload_interval"`
	Tracker        TrackerConfig `json:"tracker"`
	Planner        PlannerConfig `json:"planner"`
	Nats           NatsConfig    `json:"nats"`
	Logging        LoggingConfig `json:"logging"`
	Seed           int64         `json:"seed"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.StepInterval != "" {
		d, err := time.ParseDuration(c.StepInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing step_interval: %w", err))
		} else if d < time.Millisecond {
			el.Add(fmt.Errorf("step_interval must be at least 1ms"))
		}
	}
	el.Add(validDuration("reload_interval", c.ReloadInterval))

	el.Add(c.Storage.validate())
	el.Add(c.Tracker.validate())
	el.Add(c.Planner.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Logging.validate())

	return el.Err()
}

type TrackerConfig struct {
	AggregateEvery string `json:"aggregate_every"`
}

func (c *TrackerConfig) validate() error {
	return validDuration("tracker.aggregate_every", c.AggregateEvery)
}

type PlannerConfig struct {
	QueueSize     int    `json:"queue_size"`
	ShutdownGrace string `json:"shutdown_grace"`
}

func (c *PlannerConfig) validate() error {
	el := errors.NewErrorList()
	if c.QueueSize < 0 {
		el.Add(fmt.Errorf("planner.queue_size must not be negative"))
	}
	el.Add(validDuration("planner.shutdown_grace", c.ShutdownGrace))
	return el.Err()
}

// validDuration accepts an empty value, meaning the default.
func validDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// duration parses a validated value, falling back to def when unset.
func duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
