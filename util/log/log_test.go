package log

import (
	"testing"
	"os"
)

func TestLog(t *testing.T) {
	Debug("hello, world!", "num", 123)
	Error("hello, world!", "num", 123)

	logger := New(os.Stderr)
	logger = logger.With("module", "test")
	SetDefaultLogger(logger)

	SetLevel(LEVEL_TRACE)
	Debug("hello, world!", "num", 123)
	logger.Info("oh, my love, my darling", "who", "her")

}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		str string
		lvl Level
	}{
		{"", LEVEL_INFO},
		{"error", LEVEL_ERROR},
		{"Warn", LEVEL_WARN},
		{"warning", LEVEL_WARN},
		{"info", LEVEL_INFO},
		{"DEBUG", LEVEL_DEBUG},
		{"trace", LEVEL_TRACE},
	}

	for _, c := range cases {
		lvl, err := ParseLevel(c.str)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", c.str, err)
		}
		if lvl != c.lvl {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.str, lvl, c.lvl)
		}
	}

	if _, err := ParseLevel("bogus"); err == nil {
		t.Error("expected error for bogus level")
	}
}

