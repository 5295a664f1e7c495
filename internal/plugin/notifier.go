package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/fingerquiz/internal/quiz"
)

// maxConcurrent bounds how many plugins run at once.
const maxConcurrent = 4

// Notifier sends events to the subscribed plugins.
type Notifier struct {
	manager  *Manager
	executor *Executor
	logger   *zap.SugaredLogger
}

// NewNotifier creates a Notifier.
func NewNotifier(manager *Manager, executor *Executor, logger *zap.SugaredLogger) *Notifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Notifier{manager: manager, executor: executor, logger: logger}
}

// SessionEnded reports a finished session. Failures are logged.
func (n *Notifier) SessionEnded(s quiz.Summary) {
	if err := n.Dispatch(context.Background(), EventSessionEnd, &s); err != nil {
		n.logger.Warnw("session plugins failed", "session", s.SessionID, "error", err)
	}
}

// Dispatch runs every plugin subscribed to event and joins their errors.
// A plugin answering success=false counts as failed.
func (n *Notifier) Dispatch(ctx context.Context, event string, s *quiz.Summary) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrent)

	for _, p := range n.manager.Subscribers(event) {
		g.Go(func() error {
			resp, err := n.executor.Execute(ctx, p, &Request{Event: event, Session: s, Config: p.Manifest.Config})
			if err == nil && !resp.Success {
				err = errors.New(resp.Error)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.Manifest.Name, err))
				mu.Unlock()
				return nil
			}
			n.logger.Debugw("plugin ran", "plugin", p.Manifest.Name, "event", event)
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}
