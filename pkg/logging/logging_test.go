package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)

	Debug("Test", "debug message")
	Info("Test", "info message")
	Warn("Test", "warn message")
	Error("Test", errors.New("boom"), "error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("debug message should be filtered at warn level")
	}
	if strings.Contains(out, "info message") {
		t.Errorf("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn message missing from output: %s", out)
	}
	if !strings.Contains(out, "error message") {
		t.Errorf("error message missing from output: %s", out)
	}
}

func TestSubsystemAndErrorAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("ConfigFS", errors.New("no such configuration"), "destroy of %s failed", "foo")

	out := buf.String()
	if !strings.Contains(out, "subsystem=ConfigFS") {
		t.Errorf("subsystem attribute missing: %s", out)
	}
	if !strings.Contains(out, "no such configuration") {
		t.Errorf("error attribute missing: %s", out)
	}
	if !strings.Contains(out, "destroy of foo failed") {
		t.Errorf("formatted message missing: %s", out)
	}
}

func TestFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Info("Test", "created %s with %d entries", "cfg1", 3)
	if !strings.Contains(buf.String(), "created cfg1 with 3 entries") {
		t.Errorf("format args not applied: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"":        LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Errorf("unexpected level strings: %s %s", LevelDebug, LevelError)
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("unexpected string for out-of-range level")
	}
}
