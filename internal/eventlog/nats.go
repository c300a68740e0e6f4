package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

const natsSubjectPrefix = "trivia.rooms"

type NATSSink struct {
	nc *nats.Conn
}

func NewNATS(url string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("triviaroom"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return &NATSSink{nc: nc}, nil
}

// natsSubject is trivia.rooms.<code>.<event>.
func natsSubject(rec Record) string {
	return strings.Join([]string{natsSubjectPrefix, rec.Room, rec.Event}, ".")
}

func (s *NATSSink) Publish(_ context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.nc.Publish(natsSubject(rec), data)
}

func (s *NATSSink) Check(_ context.Context) error {
	if !s.nc.IsConnected() {
		return errors.New("nats not connected")
	}
	return nil
}

func (s *NATSSink) Close() error {
	return s.nc.Drain()
}
