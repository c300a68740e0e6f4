package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaSink writes every record to one topic, keyed by room code so a
// room's events stay ordered within a partition.
type KafkaSink struct {
	w       *kafka.Writer
	brokers []string
}

func NewKafka(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	s := &KafkaSink{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		brokers: brokers,
	}
	if err := s.Check(ctx); err != nil {
		s.w.Close()
		return nil, err
	}
	return s, nil
}

func (s *KafkaSink) Publish(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.Room),
		Value: data,
	})
}

func (s *KafkaSink) Check(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", s.brokers[0])
	if err != nil {
		return fmt.Errorf("dialing kafka: %w", err)
	}
	return conn.Close()
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
