// Package round runs the timed life cycle of a single quiz question:
// reading countdown, answering window, lock and feedback reveal.
package round

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/layout"
	"github.com/ayusman/fingerquiz/internal/pointer"
	"github.com/ayusman/fingerquiz/internal/question"
)

// Config holds round timings.
type Config struct {
	ReadingSeconds int
	AnswerSeconds  int
	Tick           time.Duration
	FeedbackTime   time.Duration
	RevealInterval time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		ReadingSeconds: 3,
		AnswerSeconds:  15,
		Tick:           time.Second,
		FeedbackTime:   2 * time.Second,
		RevealInterval: 16 * time.Millisecond,
	}
}

// PointerSource provides the latest fingertip position.
type PointerSource interface {
	Latest() (pointer.Sample, bool)
}

// State is a copy of the machine's state for rendering and reporting.
type State struct {
	Round     uint64            `json:"round"`
	Phase     Phase             `json:"phase"`
	Question  string            `json:"question"`
	Countdown int               `json:"countdown"`
	Remaining int               `json:"remaining"`
	Boxes     []layout.Box      `json:"boxes"`
	Viewport  layout.Viewport   `json:"viewport"`
	Outcome   *Outcome          `json:"outcome,omitempty"`
	Revealing bool              `json:"revealing"`
	Elapsed   time.Duration     `json:"-"`
	Current   question.Question `json:"-"`
}

// Machine drives one round at a time. Every scheduled callback carries the
// generation it was created for and is dropped once a newer round started.
type Machine struct {
	mu     sync.Mutex
	cfg    Config
	sched  Scheduler
	ptr    PointerSource
	emit   func(Event)
	logger *zap.SugaredLogger

	gen         uint64
	phase       Phase
	question    question.Question
	viewport    layout.Viewport
	boxes       []layout.Box
	countdown   int
	remaining   int
	outcome     *Outcome
	revealStart time.Time
	tasks       []Task
}

// NewMachine creates an idle machine. emit receives events outside the
// machine's lock and may call back into the machine.
func NewMachine(cfg Config, sched Scheduler, ptr PointerSource, emit func(Event), logger *zap.SugaredLogger) *Machine {
	if emit == nil {
		emit = func(Event) {}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Machine{
		cfg:    cfg,
		sched:  sched,
		ptr:    ptr,
		emit:   emit,
		logger: logger,
	}
}

func (m *Machine) dispatch(events []Event) {
	for _, e := range events {
		m.emit(e)
	}
}

func (m *Machine) event(kind EventKind) Event {
	return Event{Kind: kind, Round: m.gen, Phase: m.phase}
}

// stopTasks cancels every live task. Callers hold m.mu.
func (m *Machine) stopTasks() {
	for _, t := range m.tasks {
		t.Stop()
	}
	m.tasks = nil
}

// guard wraps a callback so it only runs for the generation and phase it was scheduled in.
func (m *Machine) guard(gen uint64, phase Phase, f func() []Event) func() {
	return func() {
		m.mu.Lock()
		if gen != m.gen || m.phase != phase {
			m.mu.Unlock()
			return
		}
		events := f()
		m.mu.Unlock()
		m.dispatch(events)
	}
}

// Start begins a new round with q, cancelling whatever was running.
func (m *Machine) Start(q question.Question) uint64 {
	m.mu.Lock()
	m.gen++
	m.stopTasks()

	m.phase = Reading
	m.question = q
	m.outcome = nil
	m.boxes = layout.Compute(m.viewport)
	m.countdown = m.cfg.ReadingSeconds
	m.remaining = 0

	gen := m.gen
	m.tasks = append(m.tasks, m.sched.Every(m.cfg.Tick, m.guard(gen, Reading, m.readingTick)))

	countdown := m.event(EventCountdown)
	countdown.Seconds = m.countdown
	events := []Event{m.event(EventPhase), countdown}
	m.mu.Unlock()

	m.logger.Debugw("round started", "round", gen, "question", q.Text)
	m.dispatch(events)
	return gen
}

// readingTick counts down to GO and then opens the answer window.
func (m *Machine) readingTick() []Event {
	m.countdown--
	if m.countdown >= 0 {
		e := m.event(EventCountdown)
		e.Seconds = m.countdown
		return []Event{e}
	}
	m.stopTasks()
	return m.enterAnswering()
}

func (m *Machine) enterAnswering() []Event {
	m.phase = Answering
	m.applyLabels()
	m.remaining = m.cfg.AnswerSeconds
	m.tasks = append(m.tasks, m.sched.Every(m.cfg.Tick, m.guard(m.gen, Answering, m.answerTick)))

	tick := m.event(EventAnswerTick)
	tick.Seconds = m.remaining
	return []Event{m.event(EventPhase), tick}
}

// applyLabels copies the question's answers onto the boxes. Callers hold m.mu.
func (m *Machine) applyLabels() {
	for i := range m.boxes {
		m.boxes[i].Label = ""
		m.boxes[i].IsCorrect = i == m.question.Correct
		if i < len(m.question.Answers) {
			m.boxes[i].Label = m.question.Answers[i]
		}
	}
}

func (m *Machine) answerTick() []Event {
	m.remaining--
	tick := m.event(EventAnswerTick)
	tick.Seconds = m.remaining
	events := []Event{tick}
	if m.remaining <= 0 {
		events = append(events, m.lock()...)
	}
	return events
}

// Lock ends the answer window early. It reports false outside Answering.
func (m *Machine) Lock() bool {
	m.mu.Lock()
	if m.phase != Answering {
		m.mu.Unlock()
		return false
	}
	events := m.lock()
	m.mu.Unlock()

	m.dispatch(events)
	return true
}

// lock hit-tests the latest pointer and moves on to feedback. Callers hold m.mu.
func (m *Machine) lock() []Event {
	m.stopTasks()
	m.phase = Locked

	selected := -1
	if m.ptr != nil {
		if s, ok := m.ptr.Latest(); ok {
			selected = layout.HitTest(m.boxes, s.X, s.Y)
		}
	}
	correct := selected >= 0 && m.boxes[selected].IsCorrect
	m.outcome = &Outcome{
		Selected:     selected,
		Correct:      correct,
		CorrectIndex: layout.CorrectIndex(m.boxes),
		Status:       StatusMessage(correct),
	}

	locked := m.event(EventLocked)
	locked.Outcome = m.outcome
	events := []Event{m.event(EventPhase), locked}

	m.logger.Debugw("answer locked", "round", m.gen, "selected", selected, "correct", correct)
	return append(events, m.enterFeedback()...)
}

func (m *Machine) enterFeedback() []Event {
	m.phase = Feedback
	m.revealStart = m.sched.Now()
	gen := m.gen

	events := []Event{m.event(EventPhase)}
	if m.outcome.CorrectIndex >= 0 {
		m.tasks = append(m.tasks, m.sched.Every(m.cfg.RevealInterval, m.guard(gen, Feedback, m.revealFrame)))
		frame := m.event(EventRevealFrame)
		frame.Outcome = m.outcome
		events = append(events, frame)
	}
	m.tasks = append(m.tasks, m.sched.AfterFunc(m.cfg.FeedbackTime, m.guard(gen, Feedback, m.finish)))
	return events
}

func (m *Machine) revealFrame() []Event {
	elapsed := m.sched.Now().Sub(m.revealStart)
	if elapsed >= m.cfg.FeedbackTime {
		return nil
	}
	e := m.event(EventRevealFrame)
	e.Elapsed = elapsed
	e.Outcome = m.outcome
	return []Event{e}
}

func (m *Machine) finish() []Event {
	m.stopTasks()
	m.phase = Idle
	e := m.event(EventRoundComplete)
	e.Outcome = m.outcome
	return []Event{m.event(EventPhase), e}
}

// Cancel stops the round and every pending callback.
func (m *Machine) Cancel() {
	m.mu.Lock()
	if m.phase == Idle && len(m.tasks) == 0 {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.stopTasks()
	m.phase = Idle
	m.outcome = nil
	m.boxes = layout.Compute(m.viewport)
	events := []Event{m.event(EventPhase)}
	m.mu.Unlock()

	m.dispatch(events)
}

// SetViewport recomputes the grid for a new viewport, keeping labels.
func (m *Machine) SetViewport(vp layout.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vp == m.viewport && m.boxes != nil {
		return
	}
	m.viewport = vp
	m.boxes = layout.Compute(vp)
	switch m.phase {
	case Answering, Locked, Feedback:
		m.applyLabels()
	}
}

// Viewport returns the viewport boxes are laid out for.
func (m *Machine) Viewport() layout.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	boxes := make([]layout.Box, len(m.boxes))
	copy(boxes, m.boxes)

	s := State{
		Round:     m.gen,
		Phase:     m.phase,
		Question:  m.question.Text,
		Countdown: m.countdown,
		Remaining: m.remaining,
		Boxes:     boxes,
		Viewport:  m.viewport,
		Current:   m.question,
	}
	if m.phase == Idle {
		s.Question = ""
	}
	if m.outcome != nil {
		o := *m.outcome
		s.Outcome = &o
	}
	if m.phase == Feedback && s.Outcome != nil && s.Outcome.CorrectIndex >= 0 {
		s.Elapsed = m.sched.Now().Sub(m.revealStart)
		s.Revealing = s.Elapsed < m.cfg.FeedbackTime
	}
	return s
}
