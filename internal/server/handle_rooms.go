package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/triviaroom/internal/game"
)

type RoomLister interface {
	Room(code string) (game.RoomSummary, bool)
	RoomCount() int
}

type ConnCounter interface {
	Len() int
}

type StatsResponse struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

func handleRoom(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := game.NormalizeCode(chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		summary, ok := rooms.Room(code)
		if !ok {
			writeError(w, http.StatusNotFound, game.ErrRoomNotFound.Error())
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func handleStats(rooms RoomLister, conns ConnCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatsResponse{
			Rooms:       rooms.RoomCount(),
			Connections: conns.Len(),
		})
	}
}
