package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixil98/go-survivors/internal/instructions"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

const (
	DefaultSubjectPrefix = "survivors.instructions"
	DefaultPublishRate   = 500.0
	DefaultPublishBurst  = 100
)

var ErrRateLimited = errors.New("instruction publish rate exceeded")

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NatsSink publishes instructions as msgpack to <prefix>.<world>.
type NatsSink struct {
	pub     Publisher
	prefix  string
	limiter *rate.Limiter
}

func NewNatsSink(pub Publisher, opts ...NatsSinkOpt) *NatsSink {
	s := &NatsSink{
		pub:     pub,
		prefix:  DefaultSubjectPrefix,
		limiter: rate.NewLimiter(rate.Limit(DefaultPublishRate), DefaultPublishBurst),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *NatsSink) Submit(_ context.Context, in instructions.Instruction) error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}

	data, err := msgpack.Marshal(&in)
	if err != nil {
		return fmt.Errorf("encoding instruction: %w", err)
	}

	err = s.pub.Publish(s.Subject(in.World), data)
	if err != nil {
		return fmt.Errorf("publishing instruction: %w", err)
	}
	return nil
}

func (s *NatsSink) Subject(world string) string {
	return s.prefix + "." + world
}

type NatsSinkOpt func(*NatsSink)

func WithSubjectPrefix(prefix string) NatsSinkOpt {
	return func(s *NatsSink) {
		s.prefix = prefix
	}
}

// WithPublishRate limits publishing to perSecond instructions with the given
// burst. A non positive rate disables the limit.
func WithPublishRate(perSecond float64, burst int) NatsSinkOpt {
	return func(s *NatsSink) {
		if perSecond <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, burst))
	}
}
