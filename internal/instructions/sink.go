package instructions

import (
	"context"
	"log/slog"
)

// Instruction is one fully expanded command for the external world.
type Instruction struct {
	Batch       string `msgpack:"batch"`
	World       string `msgpack:"world"`
	ArchetypeID string `msgpack:"archetype"`
	Level       int    `msgpack:"level"`
	Command     string `msgpack:"command"`
}

// Sink accepts instructions for execution. An error means this instruction
// was rejected; it says nothing about the ones before or after it.
type Sink interface {
	Submit(ctx context.Context, in Instruction) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, in Instruction) error

func (f SinkFunc) Submit(ctx context.Context, in Instruction) error {
	return f(ctx, in)
}

// LogSink writes every instruction to the default logger. It is used when no
// broker is configured.
type LogSink struct{}

func (LogSink) Submit(ctx context.Context, in Instruction) error {
	slog.InfoContext(ctx, "spawn instruction",
		"batch", in.Batch,
		"world", in.World,
		"archetype", in.ArchetypeID,
		"level", in.Level,
		"command", in.Command)
	return nil
}
