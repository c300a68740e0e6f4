package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/triviaroom/internal/config"
	"github.com/playperu/triviaroom/internal/database"
	"github.com/playperu/triviaroom/internal/eventlog"
	"github.com/playperu/triviaroom/internal/game"
	"github.com/playperu/triviaroom/internal/gateway"
	"github.com/playperu/triviaroom/internal/handler/health"
	"github.com/playperu/triviaroom/internal/migrations"
	"github.com/playperu/triviaroom/internal/questions"
	"github.com/playperu/triviaroom/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := map[string]health.Checker{}

	// --- Questions ---
	bank, err := loadBank(cfg)
	if err != nil {
		return err
	}

	if cfg.QuestionsDB != "" {
		db, err := database.Open(ctx, cfg.QuestionsDB)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		bank, err = syncBank(ctx, logger, db, bank)
		if err != nil {
			return err
		}
		checks["sqlite"] = dbChecker{db}
		logger.Info("serving questions from sqlite", "path", cfg.QuestionsDB)
	}
	checks["questions"] = health.CheckFunc(func(context.Context) error {
		if bank.Size() == 0 {
			return errors.New("question bank is empty")
		}
		return nil
	})
	logger.Info("question bank loaded", "grades", bank.Levels(), "questions", bank.Size())

	// --- Event mirror ---
	sink, err := eventlog.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s event sink: %w", cfg.EventSink, err)
	}
	var mirror *eventlog.Mirror
	if sink != nil {
		defer sink.Close()
		mirror = eventlog.NewMirror(logger, sink, 0)
		checks["events"] = sink
		logger.Info("mirroring room events", "sink", cfg.EventSink)
	}

	// --- Game ---
	hub := gateway.NewHub(logger)
	opts := []game.Option{}
	if mirror != nil {
		opts = append(opts, game.WithJournal(mirror))
	}
	engine := game.NewEngine(logger, bank, hub, game.Settings{
		QuestionSeconds: cfg.Game.QuestionSeconds,
		StartDelay:      cfg.Game.StartDelay,
		NextRoundDelay:  cfg.Game.NextRoundDelay,
		WinningScore:    cfg.Game.WinningScore,
	}, opts...)
	defer engine.Close()

	// --- HTTP Server ---
	srv := server.New(logger, server.Options{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		SPADir:         cfg.SPADir,
		Grades:         bank,
		Rooms:          engine,
		Conns:          hub,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
			r.Mount("/ws", gateway.NewHandler(logger, engine, hub, cfg.MessagesPerSecond, cfg.MessageBurst).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.Addr())
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	if mirror != nil {
		g.Go(func() error {
			return mirror.Run(gctx)
		})
	}

	return g.Wait()
}

func loadBank(cfg *config.Config) (*questions.Bank, error) {
	if cfg.QuestionsFile == "" {
		bank, err := questions.Default()
		if err != nil {
			return nil, fmt.Errorf("loading built-in question bank: %w", err)
		}
		return bank, nil
	}
	bank, err := questions.LoadFile(cfg.QuestionsFile)
	if err != nil {
		return nil, fmt.Errorf("loading question bank: %w", err)
	}
	return bank, nil
}

// syncBank seeds an empty store from bank and returns what the store holds.
func syncBank(ctx context.Context, logger *slog.Logger, db *sql.DB, bank *questions.Bank) (*questions.Bank, error) {
	if err := migrations.Run(ctx, db); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	n, err := questions.Count(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("counting stored questions: %w", err)
	}
	if n == 0 {
		if err := questions.Import(ctx, db, bank); err != nil {
			return nil, fmt.Errorf("importing question bank: %w", err)
		}
		logger.Info("imported question bank", "questions", bank.Size())
	}

	stored, err := questions.LoadDB(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading stored questions: %w", err)
	}
	return stored, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
