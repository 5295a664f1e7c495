package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/cache"
	"github.com/ayusman/fingerquiz/internal/config"
	"github.com/ayusman/fingerquiz/internal/leaderboard"
	"github.com/ayusman/fingerquiz/internal/logging"
	"github.com/ayusman/fingerquiz/internal/plugin"
	"github.com/ayusman/fingerquiz/internal/question"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/server"
	"github.com/ayusman/fingerquiz/internal/store"
)

// Runtime is the wired application.
type Runtime struct {
	Config config.Config
	Logger *zap.SugaredLogger
	App    *app.App
	Board  *leaderboard.Board
	Server *server.Server

	closeStore func() error
}

// Build opens the store and wires the game and the HTTP server.
// Nil fields of deps get the production implementations.
func Build(cfg config.Config, deps app.Deps) (*Runtime, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewLogger(cfg.Debug).Named("fingerquiz")
	}

	board, history, closeStore, err := openBoard(cfg)
	if err != nil {
		return nil, err
	}

	if deps.Supplier == nil {
		records, qerr := loadQuestions(cfg.QuestionsPath(), cfg.SessionSize)
		if qerr != nil {
			logger.Warnw("question bank unavailable, sessions cannot start", "path", cfg.QuestionsPath(), "error", qerr)
		} else {
			logger.Infow("loaded question bank", "path", cfg.QuestionsPath(), "questions", len(records))
		}
		deps.Supplier = func() ([]question.Record, error) { return records, qerr }
	}
	if deps.Recorder == nil {
		deps.Recorder = board
	}
	if deps.History == nil && history != nil {
		deps.History = history
	}
	deps.Logger = logger.Named("app")

	a := app.New(cfg.App(), deps)

	plugins := plugin.NewManager(cfg.PluginsPath(), logger.Named("plugin"))
	if err := plugins.Discover(); err != nil {
		logger.Warnw("failed to discover plugins", "dir", cfg.PluginsPath(), "error", err)
	}
	if subs := plugins.Subscribers(plugin.EventSessionEnd); len(subs) > 0 {
		logger.Infow("session plugins loaded", "count", len(subs))
		notifier := plugin.NewNotifier(plugins, plugin.NewExecutor(cfg.PluginTimeout), logger.Named("plugin"))
		a.OnSessionEnd(func(s quiz.Summary) {
			go notifier.SessionEnded(s)
		})
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		logger.Infow("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Game:      a,
		Board:     board,
		Frames:    a.Frames(),
		Events:    a.Events(),
		Total:     cfg.SessionSize,
		PublicURL: cfg.PublicURL,
		Logger:    logger.Named("server"),
	})

	return &Runtime{
		Config:     cfg,
		Logger:     logger,
		App:        a,
		Board:      board,
		Server:     srv,
		closeStore: closeStore,
	}, nil
}

// Close stops the game and closes the store.
func (r *Runtime) Close() error {
	err := r.App.Close()
	if serr := r.closeStore(); serr != nil && err == nil {
		err = serr
	}
	return err
}

// openBoard opens the configured store. History is only kept by sqlite.
func openBoard(cfg config.Config) (*leaderboard.Board, app.History, func() error, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var c cache.Cache
	if cfg.CacheSize > 0 {
		arc, err := cache.NewARC(cfg.CacheSize)
		if err != nil {
			return nil, nil, nil, err
		}
		c = arc
	}

	if cfg.Store == config.StoreBolt {
		st, err := store.NewBolt(cfg.DBPath())
		if err != nil {
			return nil, nil, nil, err
		}
		return leaderboard.New(st, c), nil, st.Close, nil
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, nil, nil, err
	}
	return leaderboard.New(st.Settings(), c), st.Sessions(), st.Close, nil
}

// loadQuestions reads and checks the bank. A missing file means there is
// nothing to play, which is reported like a bank that is too small.
func loadQuestions(path string, n int) ([]question.Record, error) {
	records, err := question.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", question.ErrInsufficient, err)
	}
	if err != nil {
		return nil, err
	}
	if err := question.Validate(records, n); err != nil {
		return nil, err
	}
	return records, nil
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and the data directory.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
