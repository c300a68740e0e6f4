package game

import (
	"strings"
	"sync"
)

const codeLength = 8

// NormalizeCode upper-cases code and checks it is exactly eight ASCII
// letters or digits.
func NormalizeCode(code string) (string, error) {
	if len(code) != codeLength {
		return "", ErrInvalidCode
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return "", ErrInvalidCode
		}
	}
	return strings.ToUpper(code), nil
}

// Registry maps room codes to live rooms.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create registers a new room whose only member is the host connection.
func (r *Registry) Create(code, hostID string) (*Room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; ok {
		return nil, ErrDuplicateCode
	}
	room := newRoom(code, hostID)
	r.rooms[code] = room
	return room, nil
}

func (r *Registry) Lookup(code string) (*Room, bool) {
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Destroy removes the room. Removing an unknown code is a no-op.
func (r *Registry) Destroy(code string) {
	code, err := NormalizeCode(code)
	if err != nil {
		return
	}

	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// remove deletes room only if it is still the one registered under its code.
func (r *Registry) remove(room *Room) {
	r.mu.Lock()
	if r.rooms[room.code] == room {
		delete(r.rooms, room.code)
	}
	r.mu.Unlock()
}

func (r *Registry) all() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}
