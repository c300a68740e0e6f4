// Package eventlog mirrors room broadcasts to an external message bus so
// other services can follow games without holding a websocket.
package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/triviaroom/internal/config"
	"github.com/playperu/triviaroom/internal/game"
)

// Record is one mirrored broadcast.
type Record struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	At    time.Time       `json:"at"`
}

// Sink publishes records to a bus.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
	Check(ctx context.Context) error
	Close() error
}

// Open connects the sink named by cfg.EventSink. It returns a nil Sink for
// "none".
func Open(ctx context.Context, cfg *config.Config) (Sink, error) {
	var (
		sink Sink
		err  error
	)
	switch cfg.EventSink {
	case "", "none":
		return nil, nil
	case "nats":
		sink, err = NewNATS(cfg.NATSURL)
	case "kafka":
		sink, err = NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
	case "redis":
		sink, err = NewRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}

const (
	defaultBuffer  = 256
	publishTimeout = 2 * time.Second
	drainTimeout   = 5 * time.Second
)

// Mirror queues broadcasts from the engine and publishes them from a single
// background worker. It implements game.Journal.
type Mirror struct {
	logger *slog.Logger
	sink   Sink
	queue  chan Record
	now    func() time.Time
}

func NewMirror(logger *slog.Logger, sink Sink, buffer int) *Mirror {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Mirror{
		logger: logger,
		sink:   sink,
		queue:  make(chan Record, buffer),
		now:    time.Now,
	}
}

// Record never blocks: when the queue is full the record is dropped.
func (m *Mirror) Record(room string, ev game.Event) {
	rec := Record{Room: room, Event: ev.Name, At: m.now()}
	if ev.Data != nil {
		data, err := json.Marshal(ev.Data)
		if err != nil {
			m.logger.Error("encoding mirrored event", "room", room, "event", ev.Name, "error", err)
			return
		}
		rec.Data = data
	}

	select {
	case m.queue <- rec:
	default:
		m.logger.Warn("event mirror full, dropping record", "room", room, "event", ev.Name)
	}
}

// Run publishes queued records until ctx is done, then flushes what is
// left with a bounded timeout.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-m.queue:
			m.publish(ctx, rec)
		case <-ctx.Done():
			return m.drain()
		}
	}
}

func (m *Mirror) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case rec := <-m.queue:
			m.publish(ctx, rec)
		default:
			return nil
		}
	}
}

func (m *Mirror) publish(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := m.sink.Publish(ctx, rec); err != nil {
		m.logger.Error("publishing room event", "room", rec.Room, "event", rec.Event, "error", err)
	}
}
