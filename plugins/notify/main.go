// Package main provides a plugin that shows a desktop notification with the
// result of each finished quiz session.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request is the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Session *Session        `json:"session"`
	Config  json.RawMessage `json:"config"`
}

// Session is the finished session summary.
type Session struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config is read from the manifest.
type Config struct {
	Title string `json:"title"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Event != "session.end" || req.Session == nil {
		writeResponse(fmt.Errorf("unsupported event: %s", req.Event))
		return
	}

	cfg := Config{Title: "FingerQuiz"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(fmt.Errorf("failed to parse config: %w", err))
			return
		}
	}

	writeResponse(notify(cfg.Title, message(req.Session)))
}

func message(s *Session) string {
	return fmt.Sprintf("%s scored %d/%d", s.Username, s.Score, s.Total)
}

func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := "display notification " + strconv.Quote(body) + " with title " + strconv.Quote(title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
