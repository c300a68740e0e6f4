package game

import (
	"slices"
	"sync"

	"github.com/jonboulle/clockwork"
)

type Player struct {
	ID    string
	Name  string
	Score int
}

// Question is a drawn question with its answers already shuffled.
type Question struct {
	ID      string
	Strand  string
	Text    string
	Answers []string
	Correct int
}

// Room is one game session. All fields are guarded by mu.
type Room struct {
	mu sync.Mutex

	code   string
	hostID string

	// members are the subscribed connections in join order. Players are
	// the subset that registered a name.
	members []string
	players map[string]*Player

	started       bool
	grade         string
	current       *Question
	questionIndex int
	used          map[string]struct{}
	answered      bool
	timeRemaining int
	winner        *Player

	// timer is the single pending callback for the room: the start delay,
	// a countdown tick or the next-round delay. epoch invalidates callbacks
	// that were already firing when the timer was replaced.
	timer  clockwork.Timer
	epoch  uint64
	closed bool
}

func newRoom(code, hostID string) *Room {
	return &Room{
		code:    code,
		hostID:  hostID,
		members: []string{hostID},
		players: make(map[string]*Player),
		used:    make(map[string]struct{}),
	}
}

func (r *Room) Code() string { return r.code }

func (r *Room) isMember(connID string) bool {
	return slices.Contains(r.members, connID)
}

func (r *Room) removeMember(connID string) {
	r.members = slices.DeleteFunc(r.members, func(id string) bool { return id == connID })
	delete(r.players, connID)
}

// roster lists named players in join order.
func (r *Room) roster() []PlayerView {
	out := make([]PlayerView, 0, len(r.players))
	for _, id := range r.members {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		out = append(out, r.view(p))
	}
	return out
}

func (r *Room) view(p *Player) PlayerView {
	return PlayerView{ID: p.ID, Name: p.Name, Score: p.Score, IsHost: p.ID == r.hostID}
}

// RoomSummary is a read-only snapshot for the HTTP API.
type RoomSummary struct {
	Code          string `json:"code"`
	Started       bool   `json:"started"`
	GradeLevel    string `json:"gradeLevel,omitempty"`
	Players       int    `json:"players"`
	QuestionIndex int    `json:"questionIndex"`
	Finished      bool   `json:"finished"`
}

func (r *Room) summary() RoomSummary {
	return RoomSummary{
		Code:          r.code,
		Started:       r.started,
		GradeLevel:    r.grade,
		Players:       len(r.players),
		QuestionIndex: r.questionIndex,
		Finished:      r.winner != nil,
	}
}
