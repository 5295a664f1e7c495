package detector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMediaPipeDetector_Args(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig()}

	got := strings.Join(d.args(), " ")
	want := "--max-hands 1 --model-complexity 1 --min-detection-confidence 0.60 --min-tracking-confidence 0.60"
	if got != want {
		t.Errorf("args() = %q, want %q", got, want)
	}
}

func TestServiceScript_AcceptsArgs(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "scripts", scriptName))
	if err != nil {
		t.Fatalf("service script missing: %v", err)
	}
	script := string(data)

	for _, arg := range (&MediaPipeDetector{config: DefaultConfig()}).args() {
		if strings.HasPrefix(arg, "--") && !strings.Contains(script, `"`+arg+`"`) {
			t.Errorf("%s does not accept %s", scriptName, arg)
		}
	}
}
