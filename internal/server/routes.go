package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Trivia Room API", "/openapi.json", "/docs"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/grades", handleGrades(opts.Grades))
		r.Get("/rooms/{code}", handleRoom(opts.Rooms))
		r.Get("/stats", handleStats(opts.Rooms, opts.Conns))
	})

	if opts.Mount != nil {
		opts.Mount(r)
	}

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
