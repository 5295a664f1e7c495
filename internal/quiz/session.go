package quiz

import (
	"time"

	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/round"
)

// DefaultSessionSize is the number of questions per session.
const DefaultSessionSize = 10

// Session is one player's run through the selected questions.
type Session struct {
	ID        string
	Username  string
	Questions []question.Question
	Index     int
	Score     int
	StartedAt time.Time
}

// Summary describes a finished session.
type Summary struct {
	SessionID  string    `json:"sessionId"`
	Username   string    `json:"username"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// State is what clients need to render the session.
type State struct {
	Active   bool        `json:"active"`
	ID       string      `json:"id,omitempty"`
	Username string      `json:"username,omitempty"`
	Index    int         `json:"index"`
	Total    int         `json:"total"`
	Score    int         `json:"score"`
	Round    round.State `json:"round"`
	Last     *Summary    `json:"last,omitempty"`
}

// EventKind identifies a session event.
type EventKind string

const (
	EventRound          EventKind = "round"
	EventQuestion       EventKind = "question"
	EventScore          EventKind = "score"
	EventSessionStarted EventKind = "session_started"
	EventSessionEnded   EventKind = "session_ended"
	EventSessionAborted EventKind = "session_aborted"
)

// Event is published to clients.
type Event struct {
	Kind     EventKind    `json:"kind"`
	Round    *round.Event `json:"round,omitempty"`
	Question string       `json:"question,omitempty"`
	Index    int          `json:"index"`
	Total    int          `json:"total"`
	Score    int          `json:"score"`
	Username string       `json:"username,omitempty"`
	Summary  *Summary     `json:"summary,omitempty"`
}
