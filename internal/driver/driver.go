package driver

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	DefaultStepLength = 50 * time.Millisecond
	DefaultQueueSize  = 256
)

// Ticker is called once per simulation step.
type Ticker interface {
	Tick(context.Context) error
}

// Task is work handed to the step goroutine from elsewhere.
type Task func(context.Context)

// StepDriver runs the fixed rate simulation loop. Tickers and submitted tasks
// all run on the driver's goroutine, so they never race with each other.
type StepDriver struct {
	stepLength time.Duration
	tickers    []Ticker
	tasks      chan Task
	step       atomic.Uint64
}

func NewStepDriver(tickers []Ticker, opts ...StepDriverOpt) *StepDriver {
	d := &StepDriver{
		stepLength: DefaultStepLength,
		tickers:    tickers,
		tasks:      make(chan Task, DefaultQueueSize),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *StepDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.stepLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-d.tasks:
			task(ctx)
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

// AddTicker appends tickers. It must be called before Start.
func (d *StepDriver) AddTicker(tickers ...Ticker) {
	d.tickers = append(d.tickers, tickers...)
}

// Tick advances the step counter and runs every ticker once.
func (d *StepDriver) Tick(ctx context.Context) error {
	d.step.Add(1)
	for _, t := range d.tickers {
		if err := t.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Submit queues a task for the step goroutine without waiting for it to run.
// It reports false when the queue is full and the task was dropped.
func (d *StepDriver) Submit(task Task) bool {
	select {
	case d.tasks <- task:
		return true
	default:
		slog.Warn("step task queue full, dropping task", "capacity", cap(d.tasks))
		return false
	}
}

// RunPending runs queued tasks on the calling goroutine until the queue is
// empty. Used when the caller already is the step goroutine.
func (d *StepDriver) RunPending(ctx context.Context) int {
	n := 0
	for {
		select {
		case task := <-d.tasks:
			task(ctx)
			n++
		default:
			return n
		}
	}
}

// Step returns the number of steps run so far.
func (d *StepDriver) Step() uint64 {
	return d.step.Load()
}
