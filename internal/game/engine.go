// Package game runs trivia rooms: the room registry, player roster, question
// draw and the countdown-driven round state machine.
//
// Each room is guarded by its own mutex. Inbound operations and timer
// callbacks take that lock for their whole run, so a room is only ever
// mutated by one handler at a time. The answered latch decides the race
// between a correct answer and the countdown reaching zero.
package game

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/playperu/triviaroom/internal/questions"
)

const (
	maxNameLength = 20
	maxChatLength = 200
	codeAttempts  = 16
	codeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// QuestionSource supplies the ordered strands for a grade level.
type QuestionSource interface {
	Strands(level string) ([]questions.Strand, bool)
}

// Notifier delivers an event to a single connection. It must not block.
type Notifier interface {
	Notify(connID string, ev Event)
}

// Journal receives a copy of every room-wide broadcast. It must not block.
type Journal interface {
	Record(room string, ev Event)
}

type Settings struct {
	QuestionSeconds int
	StartDelay      time.Duration
	NextRoundDelay  time.Duration
	WinningScore    int
}

func DefaultSettings() Settings {
	return Settings{
		QuestionSeconds: 15,
		StartDelay:      time.Second,
		NextRoundDelay:  3 * time.Second,
		WinningScore:    10,
	}
}

type Option func(*Engine)

func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

type Engine struct {
	logger   *slog.Logger
	rooms    *Registry
	source   QuestionSource
	notifier Notifier
	journal  Journal
	clock    clockwork.Clock
	settings Settings

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewEngine(logger *slog.Logger, source QuestionSource, notifier Notifier, settings Settings, opts ...Option) *Engine {
	if settings.QuestionSeconds < 1 {
		settings.QuestionSeconds = 1
	}
	if settings.WinningScore < 1 {
		settings.WinningScore = 1
	}
	e := &Engine{
		logger:   logger,
		rooms:    NewRegistry(),
		source:   source,
		notifier: notifier,
		clock:    clockwork.NewRealClock(),
		settings: settings,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) intn(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.IntN(n)
}

func (e *Engine) randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[e.intn(len(codeAlphabet))]
	}
	return string(b)
}

// lockRoom returns the live room for code with its lock held, or nil.
func (e *Engine) lockRoom(code string) *Room {
	r, ok := e.rooms.Lookup(code)
	if !ok {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	return r
}

func (e *Engine) notify(connID string, ev Event) {
	e.notifier.Notify(connID, ev)
}

func (e *Engine) broadcast(r *Room, ev Event) {
	for _, id := range r.members {
		e.notifier.Notify(id, ev)
	}
	if e.journal != nil {
		e.journal.Record(r.code, ev)
	}
}

// CreateRoom registers a room hosted by connID and returns its normalized
// code. An empty code asks the engine to generate one.
func (e *Engine) CreateRoom(connID, code string) (string, error) {
	var (
		r   *Room
		err error
	)
	if code == "" {
		for range codeAttempts {
			r, err = e.rooms.Create(e.randomCode(), connID)
			if !errors.Is(err, ErrDuplicateCode) {
				break
			}
		}
	} else {
		r, err = e.rooms.Create(code, connID)
	}
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e.notify(connID, Event{Name: EventGameCreated, Data: RoomAssignment{Code: r.code, IsHost: true}})
	e.logger.Info("room created", "room", r.code, "host", connID)
	return r.code, nil
}

// JoinRoom subscribes connID to a room still in its lobby.
func (e *Engine) JoinRoom(connID, code string) (string, error) {
	r := e.lockRoom(code)
	if r == nil {
		return "", ErrRoomNotFound
	}
	defer r.mu.Unlock()

	if !r.isMember(connID) {
		if r.started {
			return "", ErrGameAlreadyStarted
		}
		r.members = append(r.members, connID)
	}

	e.notify(connID, Event{Name: EventGameJoined, Data: RoomAssignment{Code: r.code, IsHost: connID == r.hostID}})
	e.notify(connID, Event{Name: EventPlayerList, Data: r.roster()})
	e.logger.Debug("connection joined room", "room", r.code, "conn", connID)
	return r.code, nil
}

func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return name
}

// SetName creates or renames the player for connID.
func (e *Engine) SetName(connID, code, raw string) error {
	r := e.lockRoom(code)
	if r == nil {
		return nil
	}
	defer r.mu.Unlock()

	if !r.isMember(connID) {
		return nil
	}

	name := cleanName(raw)
	if name == "" {
		return ErrInvalidName
	}

	if p, ok := r.players[connID]; ok {
		p.Name = name
	} else {
		r.players[connID] = &Player{ID: connID, Name: name}
	}

	e.broadcast(r, Event{Name: EventPlayerList, Data: r.roster()})
	return nil
}

// Leave removes connID from the room. The host leaving closes the room.
func (e *Engine) Leave(connID, code string) {
	r := e.lockRoom(code)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	if !r.isMember(connID) {
		return
	}

	if connID == r.hostID {
		e.teardown(r)
		return
	}

	r.removeMember(connID)
	e.broadcast(r, Event{Name: EventPlayerList, Data: r.roster()})
	e.logger.Debug("connection left room", "room", r.code, "conn", connID)
}

func (e *Engine) teardown(r *Room) {
	r.closed = true
	e.cancelTimer(r)
	e.rooms.remove(r)

	r.removeMember(r.hostID)
	e.broadcast(r, Event{Name: EventHostLeft})
	r.members = nil

	e.logger.Info("room closed", "room", r.code, "reason", "host left")
}

// StartGame leaves the lobby and schedules the first question.
func (e *Engine) StartGame(connID, code, grade string) error {
	r := e.lockRoom(code)
	if r == nil {
		return nil
	}
	defer r.mu.Unlock()

	if !r.isMember(connID) {
		return nil
	}
	if connID != r.hostID {
		return ErrNotHost
	}
	strands, ok := e.source.Strands(grade)
	if !ok {
		return ErrInvalidGrade
	}
	if r.started {
		return ErrGameAlreadyStarted
	}
	if poolSize(strands) == 0 {
		return ErrNoQuestionsAvailable
	}

	r.started = true
	r.grade = grade

	e.schedule(r, e.settings.StartDelay, e.advanceRound)
	e.broadcast(r, Event{Name: EventGameStarted, Data: GameStarted{GradeLevel: grade}})
	e.logger.Info("game started", "room", r.code, "grade", grade, "players", len(r.players))
	return nil
}

// advanceRound draws the next question and starts its countdown. It runs
// from scheduled callbacks, so it re-checks that the game is still running.
func (e *Engine) advanceRound(r *Room) {
	if r.closed || !r.started || r.winner != nil {
		return
	}

	strands, _ := e.source.Strands(r.grade)
	q, err := drawQuestion(strands, r.used, e.intn)
	if err != nil {
		// Nothing left to ask: back to the lobby so the host can pick again.
		e.logger.Error("drawing question", "room", r.code, "grade", r.grade, "error", err)
		e.resetToLobby(r)
		e.broadcast(r, Event{Name: EventError, Data: ErrorMessage{Message: err.Error()}})
		e.broadcast(r, Event{Name: EventGameReset, Data: r.roster()})
		return
	}
	q.Answers, q.Correct = Shuffle(q.Answers, q.Correct, e.intn)

	r.answered = false
	r.current = &q
	r.questionIndex++
	r.timeRemaining = e.settings.QuestionSeconds

	e.schedule(r, time.Second, e.tick)
	e.broadcast(r, Event{Name: EventNewQuestion, Data: NewQuestion{
		Question:       q.Text,
		Answers:        q.Answers,
		Strand:         q.Strand,
		QuestionNumber: r.questionIndex,
	}})
}

func (e *Engine) tick(r *Room) {
	r.timeRemaining--
	if r.timeRemaining > 0 {
		e.schedule(r, time.Second, e.tick)
		e.broadcast(r, Event{Name: EventTimerUpdate, Data: TimerUpdate{SecondsRemaining: r.timeRemaining}})
		return
	}

	e.cancelTimer(r)
	expired := !r.answered && r.current != nil
	if expired {
		r.answered = true
		if r.winner == nil {
			e.schedule(r, e.settings.NextRoundDelay, e.advanceRound)
		}
	}

	e.broadcast(r, Event{Name: EventTimerUpdate, Data: TimerUpdate{SecondsRemaining: 0}})
	if expired {
		e.broadcast(r, Event{Name: EventTimeUp, Data: TimeUp{CorrectIndex: r.current.Correct, Scores: r.roster()}})
		e.logger.Debug("question timed out", "room", r.code, "question", r.questionIndex)
	}
}

// SubmitAnswer resolves the current question if answerIndex is correct and
// nobody beat connID to it. Wrong answers are dropped silently.
func (e *Engine) SubmitAnswer(connID, code string, answerIndex int) {
	r := e.lockRoom(code)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return
	}
	if !r.started || r.current == nil || r.answered {
		return
	}
	if answerIndex != r.current.Correct {
		return
	}

	r.answered = true
	e.cancelTimer(r)
	p.Score++

	won := p.Score >= e.settings.WinningScore
	if won {
		r.winner = p
	} else {
		e.schedule(r, e.settings.NextRoundDelay, e.advanceRound)
	}

	scores := r.roster()
	e.broadcast(r, Event{Name: EventQuestionResult, Data: QuestionResult{
		WinnerID:     p.ID,
		WinnerName:   p.Name,
		CorrectIndex: r.current.Correct,
		Scores:       scores,
	}})
	if won {
		e.broadcast(r, Event{Name: EventGameOver, Data: GameOver{Winner: r.view(p), Scores: scores}})
		e.logger.Info("game over", "room", r.code, "winner", p.Name, "questions", r.questionIndex)
	}
}

// PlayAgain returns a room to its lobby with every score reset.
func (e *Engine) PlayAgain(connID, code string) error {
	r := e.lockRoom(code)
	if r == nil {
		return nil
	}
	defer r.mu.Unlock()

	if !r.isMember(connID) {
		return nil
	}
	if connID != r.hostID {
		return ErrNotHost
	}

	e.resetToLobby(r)
	e.broadcast(r, Event{Name: EventGameReset, Data: r.roster()})
	e.logger.Info("game reset", "room", r.code)
	return nil
}

// resetToLobby cancels any pending callback and clears all game state,
// keeping the roster with zeroed scores. Callers must hold r.mu.
func (e *Engine) resetToLobby(r *Room) {
	e.cancelTimer(r)
	r.started = false
	r.grade = ""
	r.current = nil
	r.questionIndex = 0
	clear(r.used)
	r.answered = false
	r.timeRemaining = 0
	r.winner = nil
	for _, p := range r.players {
		p.Score = 0
	}
}

// Chat relays a message from a named player to the whole room.
func (e *Engine) Chat(connID, code, text string) {
	r := e.lockRoom(code)
	if r == nil {
		return
	}
	defer r.mu.Unlock()

	p, ok := r.players[connID]
	if !ok {
		return
	}
	msg := strings.TrimSpace(text)
	if msg == "" {
		return
	}
	if runes := []rune(msg); len(runes) > maxChatLength {
		msg = string(runes[:maxChatLength])
	}

	e.broadcast(r, Event{Name: EventChatMessage, Data: ChatMessage{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Message:    msg,
		Timestamp:  e.clock.Now().UnixMilli(),
	}})
}

// Room returns a snapshot of a live room.
func (e *Engine) Room(code string) (RoomSummary, bool) {
	r := e.lockRoom(code)
	if r == nil {
		return RoomSummary{}, false
	}
	defer r.mu.Unlock()
	return r.summary(), true
}

func (e *Engine) RoomCount() int {
	return e.rooms.Len()
}

// Close cancels every pending room timer. Used at shutdown.
func (e *Engine) Close() {
	for _, r := range e.rooms.all() {
		r.mu.Lock()
		r.closed = true
		e.cancelTimer(r)
		r.mu.Unlock()
		e.rooms.remove(r)
	}
}
