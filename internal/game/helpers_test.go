package game

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/playperu/triviaroom/internal/questions"
)

const (
	hostID   = "conn-host"
	playerID = "conn-alice"
	roomCode = "ABCD1234"
)

type testSource map[string][]questions.Strand

func (s testSource) Strands(level string) ([]questions.Strand, bool) {
	strands, ok := s[level]
	return strands, ok
}

func sampleSource() testSource {
	return testSource{
		"3": {
			{Name: "Number", Questions: []questions.Question{
				{Text: "2 + 2?", Answers: []string{"3", "4", "5", "6"}, Correct: 1},
				{Text: "3 x 3?", Answers: []string{"9", "6", "12", "33"}, Correct: 0},
				{Text: "10 - 7?", Answers: []string{"2", "4", "3", "17"}, Correct: 2},
			}},
			{Name: "Algebra", Questions: []questions.Question{
				{Text: "? + 1 = 5", Answers: []string{"3", "6", "5", "4"}, Correct: 3},
				{Text: "2, 4, 6, ?", Answers: []string{"8", "7", "10", "9"}, Correct: 0},
			}},
		},
		"empty": {{Name: "Nothing"}},
	}
}

// recorder captures events per connection.
type recorder struct {
	mu    sync.Mutex
	inbox map[string]chan Event
}

func newRecorder() *recorder {
	return &recorder{inbox: make(map[string]chan Event)}
}

func (r *recorder) ch(connID string) chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.inbox[connID]
	if !ok {
		c = make(chan Event, 4096)
		r.inbox[connID] = c
	}
	return c
}

func (r *recorder) Notify(connID string, ev Event) {
	r.ch(connID) <- ev
}

type harness struct {
	t      *testing.T
	engine *Engine
	clock  *clockwork.FakeClock
	rec    *recorder
}

func newHarness(t *testing.T, settings Settings) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := newRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(logger, sampleSource(), rec, settings,
		WithClock(clock),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	t.Cleanup(e.Close)
	return &harness{t: t, engine: e, clock: clock, rec: rec}
}

// lobby creates roomCode hosted by "Host" and joined by "Alice".
func (h *harness) lobby() {
	h.t.Helper()
	if _, err := h.engine.CreateRoom(hostID, roomCode); err != nil {
		h.t.Fatalf("CreateRoom: %v", err)
	}
	if err := h.engine.SetName(hostID, roomCode, "Host"); err != nil {
		h.t.Fatalf("SetName host: %v", err)
	}
	if _, err := h.engine.JoinRoom(playerID, roomCode); err != nil {
		h.t.Fatalf("JoinRoom: %v", err)
	}
	if err := h.engine.SetName(playerID, roomCode, "Alice"); err != nil {
		h.t.Fatalf("SetName alice: %v", err)
	}
	h.drain(hostID)
	h.drain(playerID)
}

// startRound starts the game and waits for the first question.
func (h *harness) startRound() NewQuestion {
	h.t.Helper()
	if err := h.engine.StartGame(hostID, roomCode, "3"); err != nil {
		h.t.Fatalf("StartGame: %v", err)
	}
	h.waitFor(playerID, EventGameStarted)
	h.advance(h.engine.settings.StartDelay)
	q := h.waitFor(playerID, EventNewQuestion).Data.(NewQuestion)
	h.drain(hostID)
	return q
}

// advance moves the fake clock once a room timer is pending.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		h.t.Fatalf("no pending timer: %v", err)
	}
	h.clock.Advance(d)
}

func (h *harness) next(connID string) Event {
	h.t.Helper()
	select {
	case ev := <-h.rec.ch(connID):
		return ev
	case <-time.After(2 * time.Second):
		h.t.Fatalf("%s: timed out waiting for event", connID)
		return Event{}
	}
}

func (h *harness) waitFor(connID, name string) Event {
	h.t.Helper()
	for {
		ev := h.next(connID)
		if ev.Name == name {
			return ev
		}
	}
}

// quiet collects everything delivered to connID until nothing arrives for d.
func (h *harness) quiet(connID string, d time.Duration) []Event {
	var out []Event
	for {
		select {
		case ev := <-h.rec.ch(connID):
			out = append(out, ev)
		case <-time.After(d):
			return out
		}
	}
}

func (h *harness) drain(connID string) {
	c := h.rec.ch(connID)
	for {
		select {
		case <-c:
		default:
			return
		}
	}
}

func (h *harness) room() *Room {
	h.t.Helper()
	r, ok := h.engine.rooms.Lookup(roomCode)
	if !ok {
		h.t.Fatalf("room %s not registered", roomCode)
	}
	return r
}

func (h *harness) correctIndex() int {
	h.t.Helper()
	r := h.room()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		h.t.Fatal("no current question")
	}
	return r.current.Correct
}

func (h *harness) setScore(connID string, score int) {
	r := h.room()
	r.mu.Lock()
	r.players[connID].Score = score
	r.mu.Unlock()
}

func scoreOf(scores []PlayerView, id string) int {
	for _, p := range scores {
		if p.ID == id {
			return p.Score
		}
	}
	return -1
}
