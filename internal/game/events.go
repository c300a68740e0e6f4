package game

// Outbound event names.
const (
	EventGameCreated    = "gameCreated"
	EventGameJoined     = "gameJoined"
	EventError          = "error"
	EventPlayerList     = "playerList"
	EventGameStarted    = "gameStarted"
	EventNewQuestion    = "newQuestion"
	EventTimerUpdate    = "timerUpdate"
	EventQuestionResult = "questionResult"
	EventTimeUp         = "timeUp"
	EventGameOver       = "gameOver"
	EventGameReset      = "gameReset"
	EventChatMessage    = "chatMessage"
	EventHostLeft       = "hostLeft"
)

// Event is one outbound message. Data is JSON-encoded by the transport.
type Event struct {
	Name string
	Data any
}

type RoomAssignment struct {
	Code   string `json:"code"`
	IsHost bool   `json:"isHost"`
}

type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

type GameStarted struct {
	GradeLevel string `json:"gradeLevel"`
}

// NewQuestion never carries the correct index.
type NewQuestion struct {
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	Strand         string   `json:"strand"`
	QuestionNumber int      `json:"questionNumber"`
}

type TimerUpdate struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type QuestionResult struct {
	WinnerID     string       `json:"winnerId"`
	WinnerName   string       `json:"winnerName"`
	CorrectIndex int          `json:"correctIndex"`
	Scores       []PlayerView `json:"scores"`
}

type TimeUp struct {
	CorrectIndex int          `json:"correctIndex"`
	Scores       []PlayerView `json:"scores"`
}

type GameOver struct {
	Winner PlayerView   `json:"winner"`
	Scores []PlayerView `json:"scores"`
}

type ChatMessage struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
