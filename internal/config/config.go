// Package config loads the quiz settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/fingerquiz/internal/app"
	"github.com/ayusman/fingerquiz/internal/capture"
	"github.com/ayusman/fingerquiz/internal/quiz"
	"github.com/ayusman/fingerquiz/internal/round"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Debug     bool   `envconfig:"FINGERQUIZ_DEBUG" default:"false" yaml:"debug"`
	Addr      string `envconfig:"FINGERQUIZ_ADDR" default:":8080" yaml:"addr"`
	DataDir   string `envconfig:"FINGERQUIZ_DATA_DIR" yaml:"data_dir"`
	WebDir    string `envconfig:"FINGERQUIZ_WEB_DIR" yaml:"web_dir"`
	Questions string `envconfig:"FINGERQUIZ_QUESTIONS" default:"questions.json" yaml:"questions"`
	Store     string `envconfig:"FINGERQUIZ_STORE" default:"sqlite" yaml:"store"`
	CacheSize int    `envconfig:"FINGERQUIZ_CACHE_SIZE" default:"16" yaml:"cache_size"`
	PublicURL string `envconfig:"FINGERQUIZ_PUBLIC_URL" yaml:"public_url"`
	TLSCert   string `envconfig:"FINGERQUIZ_TLS_CERT" yaml:"tls_cert"`
	TLSKey    string `envconfig:"FINGERQUIZ_TLS_KEY" yaml:"tls_key"`
	Tray      bool   `envconfig:"FINGERQUIZ_TRAY" default:"false" yaml:"tray"`

	PluginDir     string        `envconfig:"FINGERQUIZ_PLUGIN_DIR" yaml:"plugin_dir"`
	PluginTimeout time.Duration `envconfig:"FINGERQUIZ_PLUGIN_TIMEOUT" default:"5s" yaml:"plugin_timeout"`

	CameraUser        int     `envconfig:"FINGERQUIZ_CAMERA_USER" default:"0" yaml:"camera_user"`
	CameraEnvironment int     `envconfig:"FINGERQUIZ_CAMERA_ENVIRONMENT" default:"1" yaml:"camera_environment"`
	Facing            string  `envconfig:"FINGERQUIZ_FACING" default:"user" yaml:"facing"`
	DPR               float64 `envconfig:"FINGERQUIZ_DPR" default:"1" yaml:"dpr"`
	MotionThreshold   float64 `envconfig:"FINGERQUIZ_MOTION_THRESHOLD" default:"1.0" yaml:"motion_threshold"`
	LockGesture       bool    `envconfig:"FINGERQUIZ_LOCK_GESTURE" default:"false" yaml:"lock_gesture"`
	HoldFrames        int     `envconfig:"FINGERQUIZ_HOLD_FRAMES" default:"5" yaml:"hold_frames"`

	SessionSize    int           `envconfig:"FINGERQUIZ_SESSION_SIZE" default:"10" yaml:"session_size"`
	ReadingSeconds int           `envconfig:"FINGERQUIZ_READING_SECONDS" default:"3" yaml:"reading_seconds"`
	AnswerSeconds  int           `envconfig:"FINGERQUIZ_ANSWER_SECONDS" default:"15" yaml:"answer_seconds"`
	FeedbackTime   time.Duration `envconfig:"FINGERQUIZ_FEEDBACK_TIME" default:"2s" yaml:"feedback_time"`
}

// Load reads .env from envFile when it exists, then the environment, then
// the YAML file at path when path is set. Values in the YAML file win over
// the environment.
func Load(envFile, path string) (Config, error) {
	var cfg Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("processing the environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("locating home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".fingerquiz")
	}

	return cfg, cfg.Validate()
}

// Validate checks settings that would only fail later at runtime.
func (c Config) Validate() error {
	if _, err := capture.ParseFacing(c.Facing); err != nil {
		return fmt.Errorf("%w: facing %q", ErrInvalid, c.Facing)
	}
	if c.Store != StoreSQLite && c.Store != StoreBolt {
		return fmt.Errorf("%w: store %q, want %s or %s", ErrInvalid, c.Store, StoreSQLite, StoreBolt)
	}
	if c.DPR <= 0 {
		return fmt.Errorf("%w: dpr must be positive", ErrInvalid)
	}
	if c.SessionSize <= 0 || c.ReadingSeconds < 0 || c.AnswerSeconds <= 0 || c.FeedbackTime <= 0 {
		return fmt.Errorf("%w: quiz timings must be positive", ErrInvalid)
	}
	if c.PluginTimeout <= 0 {
		return fmt.Errorf("%w: plugin_timeout must be positive", ErrInvalid)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("%w: tls_cert and tls_key go together", ErrInvalid)
	}
	return nil
}

// DBPath returns the database file for the configured store.
func (c Config) DBPath() string {
	if c.Store == StoreBolt {
		return filepath.Join(c.DataDir, "fingerquiz.bolt")
	}
	return filepath.Join(c.DataDir, "fingerquiz.db")
}

// PluginsPath returns the plugin directory, by default inside the data directory.
func (c Config) PluginsPath() string {
	if c.PluginDir != "" {
		return c.PluginDir
	}
	return filepath.Join(c.DataDir, "plugins")
}

// QuestionsPath resolves the question file against the data directory.
func (c Config) QuestionsPath() string {
	if filepath.IsAbs(c.Questions) {
		return c.Questions
	}
	if _, err := os.Stat(c.Questions); err == nil {
		return c.Questions
	}
	return filepath.Join(c.DataDir, c.Questions)
}

// Quiz returns the session settings.
func (c Config) Quiz() quiz.Config {
	q := quiz.DefaultConfig()
	q.SessionSize = c.SessionSize
	q.Round = round.DefaultConfig()
	q.Round.ReadingSeconds = c.ReadingSeconds
	q.Round.AnswerSeconds = c.AnswerSeconds
	q.Round.FeedbackTime = c.FeedbackTime
	return q
}

// App returns the game settings.
func (c Config) App() app.Config {
	facing, _ := capture.ParseFacing(c.Facing)
	return app.Config{
		Devices:      capture.Devices{User: c.CameraUser, Environment: c.CameraEnvironment},
		Facing:       facing,
		DPR:          c.DPR,
		MotionThresh: c.MotionThreshold,
		LockGesture:  c.LockGesture,
		HoldFrames:   c.HoldFrames,
		Quiz:         c.Quiz(),
	}
}
