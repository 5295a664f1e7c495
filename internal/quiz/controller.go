// Package quiz runs a session of timed rounds for one player and records the result.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/layout"
	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/round"
)

var (
	// ErrEmptyUsername is returned when the trimmed username is empty.
	ErrEmptyUsername = errors.New("username is required")
	// ErrSessionInProgress is returned when a session is already running.
	ErrSessionInProgress = errors.New("session in progress")
	// ErrNoSession is returned when an action needs a running session.
	ErrNoSession = errors.New("no session in progress")
)

// Supplier returns the question bank.
type Supplier func() ([]question.Record, error)

// Recorder persists a finished session's score.
type Recorder interface {
	Append(ctx context.Context, name string, score int) error
}

// Config configures a Controller.
type Config struct {
	SessionSize int
	Round       round.Config
	Shuffle     question.Shuffler
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		SessionSize: DefaultSessionSize,
		Round:       round.DefaultConfig(),
		Shuffle:     question.FastShuffle,
	}
}

// Controller owns the current session and the round machine.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	machine  *round.Machine
	sched    round.Scheduler
	supplier Supplier
	recorder Recorder
	emit     func(Event)
	logger   *zap.SugaredLogger
	onEnd    []func(Summary)

	session *Session
	round   uint64
	last    *Summary
}

// NewController wires a controller to its round machine.
func NewController(cfg Config, sched round.Scheduler, ptr round.PointerSource, supplier Supplier, recorder Recorder, emit func(Event), logger *zap.SugaredLogger) *Controller {
	if cfg.SessionSize <= 0 {
		cfg.SessionSize = DefaultSessionSize
	}
	if cfg.Shuffle == nil {
		cfg.Shuffle = question.FastShuffle
	}
	if emit == nil {
		emit = func(Event) {}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	c := &Controller{
		cfg:      cfg,
		sched:    sched,
		supplier: supplier,
		recorder: recorder,
		emit:     emit,
		logger:   logger,
	}
	c.machine = round.NewMachine(cfg.Round, sched, ptr, c.onRound, logger.Named("round"))
	return c
}

// OnSessionEnd registers a hook that runs after a session finishes.
func (c *Controller) OnSessionEnd(f func(Summary)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnd = append(c.onEnd, f)
}

// SetViewport forwards a viewport change to the round machine.
func (c *Controller) SetViewport(vp layout.Viewport) {
	c.machine.SetViewport(vp)
}

// Begin starts a new session for username.
func (c *Controller) Begin(ctx context.Context, username string) (State, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return State{}, ErrEmptyUsername
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return State{}, ErrSessionInProgress
	}
	c.mu.Unlock()

	records, err := c.supplier()
	if err != nil {
		return State{}, fmt.Errorf("failed to load questions: %w", err)
	}
	questions, err := question.Select(records, c.cfg.SessionSize, c.cfg.Shuffle)
	if err != nil {
		return State{}, err
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return State{}, ErrSessionInProgress
	}
	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		Questions: questions,
		StartedAt: c.sched.Now(),
	}
	c.session = s
	c.mu.Unlock()

	c.logger.Infow("session started", "session", s.ID, "username", username, "questions", len(questions))
	c.emit(Event{Kind: EventSessionStarted, Username: username, Total: len(questions)})

	c.startRound(s)
	return c.Snapshot(), nil
}

// startRound starts the round for the session's current index.
func (c *Controller) startRound(s *Session) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	q := s.Questions[s.Index]
	ev := Event{Kind: EventQuestion, Question: q.Text, Index: s.Index, Total: len(s.Questions), Score: s.Score}
	c.mu.Unlock()

	c.emit(ev)
	gen := c.machine.Start(q)

	c.mu.Lock()
	if c.session == s {
		c.round = gen
	}
	c.mu.Unlock()
}

// onRound receives every round event from the machine.
func (c *Controller) onRound(e round.Event) {
	ev := e
	c.emit(Event{Kind: EventRound, Round: &ev})

	switch e.Kind {
	case round.EventLocked:
		c.mu.Lock()
		s := c.session
		if s == nil || e.Round != c.round || e.Outcome == nil || !e.Outcome.Correct {
			c.mu.Unlock()
			return
		}
		s.Score++
		score := Event{Kind: EventScore, Index: s.Index, Total: len(s.Questions), Score: s.Score}
		c.mu.Unlock()
		c.emit(score)

	case round.EventRoundComplete:
		c.mu.Lock()
		s := c.session
		if s == nil || e.Round != c.round {
			c.mu.Unlock()
			return
		}
		s.Index++
		done := s.Index >= len(s.Questions)
		c.mu.Unlock()

		if done {
			c.end(s)
			return
		}
		c.startRound(s)
	}
}

// end records the finished session and notifies hooks.
func (c *Controller) end(s *Session) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.session = nil
	summary := Summary{
		SessionID:  s.ID,
		Username:   s.Username,
		Score:      s.Score,
		Total:      len(s.Questions),
		StartedAt:  s.StartedAt,
		FinishedAt: c.sched.Now(),
	}
	c.last = &summary
	hooks := append([]func(Summary){}, c.onEnd...)
	c.mu.Unlock()

	c.logger.Infow("session finished", "session", s.ID, "username", s.Username, "score", summary.Score, "total", summary.Total)

	if c.recorder != nil {
		if err := c.recorder.Append(context.Background(), s.Username, s.Score); err != nil {
			c.logger.Errorw("failed to save score", "session", s.ID, "error", err)
		}
	}
	for _, h := range hooks {
		h(summary)
	}

	c.emit(Event{Kind: EventSessionEnded, Username: s.Username, Score: summary.Score, Total: summary.Total, Summary: &summary})
}

// Lock locks the current answer. It reports false when no answer window is open.
func (c *Controller) Lock() (bool, error) {
	c.mu.Lock()
	active := c.session != nil
	c.mu.Unlock()

	if !active {
		return false, ErrNoSession
	}
	return c.machine.Lock(), nil
}

// Abort stops the current session without saving its score.
func (c *Controller) Abort() bool {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.round = 0
	c.mu.Unlock()

	c.machine.Cancel()
	if s == nil {
		return false
	}

	c.logger.Infow("session aborted", "session", s.ID, "username", s.Username)
	c.emit(Event{Kind: EventSessionAborted, Username: s.Username, Score: s.Score, Total: len(s.Questions)})
	return true
}

// Active reports whether a session is running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Round returns the round machine's state.
func (c *Controller) Round() round.State {
	return c.machine.Snapshot()
}

// Snapshot returns the session state.
func (c *Controller) Snapshot() State {
	rs := c.machine.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{Round: rs}
	if c.last != nil {
		last := *c.last
		st.Last = &last
	}
	if s := c.session; s != nil {
		st.Active = true
		st.ID = s.ID
		st.Username = s.Username
		st.Index = s.Index
		st.Total = len(s.Questions)
		st.Score = s.Score
	}
	return st
}
