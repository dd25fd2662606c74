package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewLoggerWithoutDirIsNop(t *testing.T) {
	t.Setenv("SLOG_DIR", "")
	if _, ok := NewLogger("/dev/ttyS0").(NopLogger); !ok {
		t.Fatal("expected NopLogger when SLOG_DIR is unset")
	}
}

func TestFileLoggerFlushesBufferedLines(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SLOG_DIR", dir)

	logger := NewLogger("/dev/ttyUSB0")
	logger.Log("port_open", "baud", 9600)
	id := uuid.New()
	logger.SetSessionID(id)
	logger.Log("rx_overflow", "dropped", 3)
	logger.Close()

	b, err := os.ReadFile(filepath.Join(dir, id.String()+".dev_ttyUSB0.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines want 2: %q", len(lines), b)
	}
	if !strings.Contains(lines[0], "event=port_open baud=9600") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "event=rx_overflow dropped=3") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"/dev/ttyS0":   "dev_ttyS0",
		`\\.\COM4`:     "COM4",
		"COM3":         "COM3",
		"/dev/tty.a:b": "dev_tty_a_b",
	} {
		if got := sanitize(in); got != want {
			t.Fatalf("sanitize(%q)=%q want %q", in, got, want)
		}
	}
}
