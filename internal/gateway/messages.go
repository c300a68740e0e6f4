package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound event names.
const (
	eventCreateGame   = "createGame"
	eventJoinGame     = "joinGame"
	eventSetName      = "setName"
	eventStartGame    = "startGame"
	eventSubmitAnswer = "submitAnswer"
	eventChatMessage  = "chatMessage"
	eventPlayAgain    = "playAgain"
	eventLeaveGame    = "leaveGame"
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type startRequest struct {
	GradeLevel gradeLevel `json:"gradeLevel"`
}

type answerRequest struct {
	AnswerIndex int `json:"answerIndex"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// gradeLevel accepts either "3" or 3.
type gradeLevel string

func (g *gradeLevel) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*g = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*g = gradeLevel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("grade level must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*g = gradeLevel(strconv.FormatInt(i, 10))
		return nil
	}
	*g = gradeLevel(n.String())
	return nil
}

// decode unmarshals an optional payload. An absent payload leaves v zero.
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, v)
}
