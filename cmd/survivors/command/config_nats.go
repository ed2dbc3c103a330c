package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-survivors/internal/messaging"
)

// NatsConfig configures the embedded broker. Leaving it disabled logs
// instructions instead of publishing them.
type NatsConfig struct {
	Enabled            bool    `json:"enabled"`
	Host               string  `json:"host"`
	Port               int     `json:"port"`
	StartTimeout       string  `json:"start_timeout"`
	SubjectPrefix      string  `json:"subject_prefix"`
	EventsSubject      string  `json:"events_subject"`
	AssignmentsSubject string  `json:"assignments_subject"`
	PublishRate        float64 `json:"publish_rate"`
	PublishBurst       int     `json:"publish_burst"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(validDuration("nats.start_timeout", n.StartTimeout))
	if n.Port < 0 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats.port must be between 0 and 65535"))
	}
	if n.PublishRate < 0 {
		el.Add(fmt.Errorf("nats.publish_rate must not be negative"))
	}
	if n.PublishBurst < 0 {
		el.Add(fmt.Errorf("nats.publish_burst must not be negative"))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		opts = append(opts, messaging.WithStartTimeout(duration(c.StartTimeout, 0)))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *NatsConfig) buildSink(pub messaging.Publisher) *messaging.NatsSink {
	opts := []messaging.NatsSinkOpt{}
	if c.SubjectPrefix != "" {
		opts = append(opts, messaging.WithSubjectPrefix(c.SubjectPrefix))
	}
	if c.PublishRate != 0 || c.PublishBurst != 0 {
		opts = append(opts, messaging.WithPublishRate(c.PublishRate, c.PublishBurst))
	}
	return messaging.NewNatsSink(pub, opts...)
}
