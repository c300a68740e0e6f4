package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr() != ":3000" {
		t.Errorf("addr = %q, want %q", cfg.Addr(), ":3000")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v, want INFO", cfg.LogLevel)
	}
	if cfg.Game.QuestionSeconds != 15 {
		t.Errorf("question seconds = %d, want 15", cfg.Game.QuestionSeconds)
	}
	if cfg.Game.NextRoundDelay != 3*time.Second {
		t.Errorf("next round delay = %v, want 3s", cfg.Game.NextRoundDelay)
	}
	if cfg.Game.WinningScore != 10 {
		t.Errorf("winning score = %d, want 10", cfg.Game.WinningScore)
	}
	if cfg.EventSink != "none" {
		t.Errorf("event sink = %q, want none", cfg.EventSink)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GAME_START_DELAY", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("addr = %q, want :8081", cfg.Addr())
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want DEBUG", cfg.LogLevel)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("kafka brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.Game.StartDelay != 250*time.Millisecond {
		t.Errorf("start delay = %v, want 250ms", cfg.Game.StartDelay)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port out of range", "PORT", "70000"},
		{"port not a number", "PORT", "abc"},
		{"unknown sink", "EVENT_SINK", "carrier-pigeon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
