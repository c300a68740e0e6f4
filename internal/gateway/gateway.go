// Package gateway is the websocket session layer. It turns client frames
// into engine operations and forwards engine events back to the socket.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"

	"github.com/playperu/triviaroom/internal/game"
)

const writeTimeout = 5 * time.Second

// Engine is the set of room operations the gateway routes to.
type Engine interface {
	CreateRoom(connID, code string) (string, error)
	JoinRoom(connID, code string) (string, error)
	SetName(connID, code, name string) error
	StartGame(connID, code, grade string) error
	SubmitAnswer(connID, code string, answerIndex int)
	Chat(connID, code, text string)
	PlayAgain(connID, code string) error
	Leave(connID, code string)
}

type Handler struct {
	logger *slog.Logger
	engine Engine
	hub    *Hub
	limit  rate.Limit
	burst  int
}

func NewHandler(logger *slog.Logger, engine Engine, hub *Hub, perSecond float64, burst int) *Handler {
	return &Handler{
		logger: logger,
		engine: engine,
		hub:    hub,
		limit:  rate.Limit(perSecond),
		burst:  burst,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.serve)
	return r
}

// session is the connection-scoped state. It is only touched by the read
// loop and, after the loops stop, by the disconnect path.
type session struct {
	id      string
	room    string
	limiter *rate.Limiter
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s := &session{
		id:      uuid.NewString(),
		limiter: rate.NewLimiter(h.limit, h.burst),
	}
	out := h.hub.Register(s.id)
	defer h.hub.Unregister(s.id)
	h.logger.Debug("connection opened", "conn", s.id, "remote", r.RemoteAddr)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.writeLoop(ctx, conn, out) })
	g.Go(func() error { return h.readLoop(ctx, conn, s) })
	err = g.Wait()

	h.leave(s)
	h.logger.Debug("connection closed", "conn", s.id, "error", err)
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, s *session) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		if !s.limiter.Allow() {
			h.logger.Debug("rate limited", "conn", s.id)
			continue
		}
		h.dispatch(s, data)
	}
}

func (h *Handler) sendError(s *session, err error) {
	h.hub.Notify(s.id, game.Event{Name: game.EventError, Data: game.ErrorMessage{Message: err.Error()}})
}

// leave drops the session from its current room, if any.
func (h *Handler) leave(s *session) {
	if s.room == "" {
		return
	}
	h.engine.Leave(s.id, s.room)
	s.room = ""
}

// enter moves the session into a room. The previous room is left only once
// the new one has accepted the connection; a failed attempt changes nothing.
func (h *Handler) enter(s *session, code string, op func(connID, code string) (string, error)) {
	joined, err := op(s.id, code)
	if err != nil {
		h.sendError(s, err)
		return
	}
	if joined != s.room {
		h.leave(s)
	}
	s.room = joined
}

func (h *Handler) dispatch(s *session, data []byte) {
	var msg inbound
	if err := decode(data, &msg); err != nil || msg.Event == "" {
		h.logger.Debug("malformed frame", "conn", s.id, "error", err)
		return
	}

	var err error
	switch msg.Event {
	case eventCreateGame:
		var req codeRequest
		if err = decode(msg.Data, &req); err == nil {
			h.enter(s, req.Code, h.engine.CreateRoom)
		}
	case eventJoinGame:
		var req codeRequest
		if err = decode(msg.Data, &req); err == nil {
			h.enter(s, req.Code, h.engine.JoinRoom)
		}
	case eventSetName:
		var req nameRequest
		if err = decode(msg.Data, &req); err == nil {
			h.reply(s, h.engine.SetName(s.id, s.room, req.Name))
		}
	case eventStartGame:
		var req startRequest
		if err = decode(msg.Data, &req); err == nil {
			h.reply(s, h.engine.StartGame(s.id, s.room, string(req.GradeLevel)))
		}
	case eventSubmitAnswer:
		var req answerRequest
		if err = decode(msg.Data, &req); err == nil {
			h.engine.SubmitAnswer(s.id, s.room, req.AnswerIndex)
		}
	case eventChatMessage:
		var req chatRequest
		if err = decode(msg.Data, &req); err == nil {
			h.engine.Chat(s.id, s.room, req.Message)
		}
	case eventPlayAgain:
		h.reply(s, h.engine.PlayAgain(s.id, s.room))
	case eventLeaveGame:
		h.leave(s)
	default:
		err = errors.New("unknown event")
	}
	if err != nil {
		h.logger.Debug("dropping frame", "conn", s.id, "event", msg.Event, "error", err)
	}
}

func (h *Handler) reply(s *session, err error) {
	if err != nil {
		h.sendError(s, err)
	}
}
