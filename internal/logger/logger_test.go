package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"} {
		if _, err := ParseLevel(name); err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := ParseLevel(""); err == nil {
		t.Fatalf("expected error for empty level")
	}
}

func TestLevelFiltersOutput(t *testing.T) {
	t.Setenv("DOBBY_DEBUG", "")
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("json")
	SetLevel(WarnLevel)
	t.Cleanup(func() {
		SetLevel(InfoLevel)
		SetFormat("console")
		SetOutput(os.Stderr)
	})

	Info("[Test] hidden %d", 1)
	Warn("[Test] shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %s", out)
	}
	if !strings.Contains(out, "[Test] shown 2") {
		t.Fatalf("warn message missing: %s", out)
	}
}
