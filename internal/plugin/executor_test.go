package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fingerquiz/internal/quiz"
)

// scriptPlugin writes a shell script plugin with its manifest into dir.
func scriptPlugin(t *testing.T, dir, name, script string, events ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	exe := filepath.Join(path, "run.sh")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	manifest := Manifest{Name: name, Version: "1.0.0", Executable: "run.sh", Events: events}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	return &Plugin{Manifest: manifest, Path: path, Executable: exe}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, t.TempDir(), "hello", `echo '{"success":true,"data":{"message":"hello world"}}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Event: EventSessionEnd})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("message = %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	// echo the request back as data
	p := scriptPlugin(t, t.TempDir(), "echo", `printf '{"success":true,"data":'
cat
printf '}'
`)

	req := &Request{
		Event:   EventSessionEnd,
		Session: &quiz.Summary{Username: "ana", Score: 7, Total: 10},
	}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Event != EventSessionEnd || got.Session == nil || got.Session.Username != "ana" || got.Session.Score != 7 {
		t.Errorf("echoed request = %+v", got)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := scriptPlugin(t, t.TempDir(), "slow", "sleep 5\n")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{name: "invalid json", script: "echo 'not json'\n", wantErr: "failed to parse plugin response"},
		{name: "non-zero exit", script: "echo broken >&2\nexit 1\n", wantErr: "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, t.TempDir(), "bad", tt.script)
			_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := scriptPlugin(t, t.TempDir(), "refuse", `echo '{"success":false,"error":"nope"}'
`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success || resp.Error != "nope" {
		t.Errorf("response = %+v", resp)
	}
}
