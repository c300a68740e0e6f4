package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/triviaroom/internal/game"
	"github.com/playperu/triviaroom/internal/questions"
)

type fakeRooms map[string]game.RoomSummary

func (f fakeRooms) Room(code string) (game.RoomSummary, bool) {
	s, ok := f[code]
	return s, ok
}

func (f fakeRooms) RoomCount() int { return len(f) }

type fakeConns int

func (c fakeConns) Len() int { return int(c) }

func testRouter(t *testing.T, spaDir string) *chi.Mux {
	t.Helper()
	bank, err := questions.Default()
	if err != nil {
		t.Fatalf("loading default bank: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRouter(logger, Options{
		AllowedOrigins: []string{"https://play.example.com"},
		SPADir:         spaDir,
		Grades:         bank,
		Rooms: fakeRooms{
			"ABCD1234": {Code: "ABCD1234", Players: 2},
		},
		Conns: fakeConns(3),
		Mount: func(r chi.Router) {
			r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{})
			})
		},
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleGrades(t *testing.T) {
	rec := get(t, testRouter(t, ""), "/api/grades")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var grades []GradeInfo
	if err := json.NewDecoder(rec.Body).Decode(&grades); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(grades) != 3 {
		t.Fatalf("got %d grades, want 3", len(grades))
	}
	for _, g := range grades {
		if len(g.Strands) == 0 {
			t.Errorf("grade %s has no strands", g.Level)
		}
		for _, s := range g.Strands {
			if s.Questions == 0 {
				t.Errorf("grade %s strand %s has no questions", g.Level, s.Name)
			}
		}
	}
}

func TestHandleRoom(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/api/rooms/ABCD1234", http.StatusOK},
		{"lower case", "/api/rooms/abcd1234", http.StatusOK},
		{"missing", "/api/rooms/ZZZZ0000", http.StatusNotFound},
		{"bad code", "/api/rooms/abc", http.StatusBadRequest},
	}

	h := testRouter(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				var body ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error == "" {
					t.Errorf("error body = %+v, %v", body, err)
				}
				return
			}
			var s game.RoomSummary
			if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
				t.Fatal(err)
			}
			if s.Code != "ABCD1234" || s.Players != 2 {
				t.Errorf("summary = %+v", s)
			}
		})
	}
}

func TestHandleStats(t *testing.T) {
	rec := get(t, testRouter(t, ""), "/api/stats")

	var got StatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got != (StatsResponse{Rooms: 1, Connections: 3}) {
		t.Errorf("got %+v", got)
	}
}

func TestCORS(t *testing.T) {
	h := testRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "https://play.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://play.example.com" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}

func TestSPAFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>trivia</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := testRouter(t, dir)

	if rec := get(t, h, "/app.js"); !strings.Contains(rec.Body.String(), "console.log") {
		t.Errorf("static file body = %q", rec.Body.String())
	}
	if rec := get(t, h, "/room/ABCD1234"); !strings.Contains(rec.Body.String(), "trivia") {
		t.Errorf("fallback body = %q", rec.Body.String())
	}
	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("mounted route status = %d", rec.Code)
	}
}
