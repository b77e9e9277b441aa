package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects stdout for the duration of fn so test output stays clean.
func capture(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestLevels_NoPanic(t *testing.T) {
	out := capture(t, func() {
		Info("TAG", "message")
		Success("TAG", "message")
		Warn("TAG", "message")
		Error("TAG", "message")
	})
	if out == "" {
		t.Error("level helpers produced no output")
	}
}

func TestBanner_NoPanic(t *testing.T) {
	out := capture(t, func() {
		Banner("v1.0.0")
		Banner("")
	})
	if out == "" {
		t.Error("Banner produced no output")
	}
}

func TestServerSectionStats_NoPanic(t *testing.T) {
	capture(t, func() {
		Server("127.0.0.1:8089")
		Section("Test")
		Stats("key", 42)
	})
}
