package driver

import "time"

type StepDriverOpt func(*StepDriver)

func WithStepLength(stepLength time.Duration) StepDriverOpt {
	return func(d *StepDriver) {
		d.stepLength = stepLength
	}
}

// WithQueueSize sets how many submitted tasks may wait for the step goroutine.
func WithQueueSize(n int) StepDriverOpt {
	return func(d *StepDriver) {
		if n > 0 {
			d.tasks = make(chan Task, n)
		}
	}
}
