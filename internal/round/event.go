package round

import (
	"time"

	"github.com/enescakir/emoji"
)

// Phase is the stage of the current round.
type Phase int

const (
	Idle Phase = iota
	Reading
	Answering
	Locked
	Feedback
)

func (p Phase) String() string {
	switch p {
	case Reading:
		return "reading"
	case Answering:
		return "answering"
	case Locked:
		return "locked"
	case Feedback:
		return "feedback"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// EventKind identifies what changed.
type EventKind string

const (
	EventPhase         EventKind = "phase"
	EventCountdown     EventKind = "countdown"
	EventAnswerTick    EventKind = "timer"
	EventLocked        EventKind = "locked"
	EventRevealFrame   EventKind = "reveal"
	EventRoundComplete EventKind = "complete"
)

// Outcome is the result of locking an answer.
// Selected is -1 when the pointer was outside every box or absent.
type Outcome struct {
	Selected     int    `json:"selected"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Status       string `json:"status"`
}

// Event is emitted on every state change of a round.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Round   uint64        `json:"round"`
	Phase   Phase         `json:"phase"`
	Seconds int           `json:"seconds"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Outcome *Outcome      `json:"outcome,omitempty"`
}

// StatusMessage returns the line shown above the grid after a lock.
func StatusMessage(correct bool) string {
	if correct {
		return emoji.ThumbsUp.String() + " Correct!"
	}
	return emoji.ThumbsDown.String() + " Wrong Answer - See the correct one!"
}
