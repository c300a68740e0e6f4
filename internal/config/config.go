package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     int        `env:"PORT" envDefault:"3000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"public"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	QuestionsFile string `env:"QUESTIONS_FILE"`
	QuestionsDB   string `env:"QUESTIONS_DB"`

	MessagesPerSecond float64 `env:"WS_MESSAGES_PER_SECOND" envDefault:"10"`
	MessageBurst      int     `env:"WS_MESSAGE_BURST" envDefault:"20"`

	Game Game

	EventSink    string   `env:"EVENT_SINK" envDefault:"none"`
	NATSURL      string   `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"trivia-room-events"`
	RedisURL     string   `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// Game holds the round timing and scoring knobs.
type Game struct {
	QuestionSeconds int           `env:"GAME_QUESTION_SECONDS" envDefault:"15"`
	StartDelay      time.Duration `env:"GAME_START_DELAY" envDefault:"1s"`
	NextRoundDelay  time.Duration `env:"GAME_NEXT_ROUND_DELAY" envDefault:"3s"`
	WinningScore    int           `env:"GAME_WINNING_SCORE" envDefault:"10"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	switch cfg.EventSink {
	case "none", "nats", "kafka", "redis":
	default:
		return nil, fmt.Errorf("unknown EVENT_SINK %q", cfg.EventSink)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
