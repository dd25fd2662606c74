package log

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	SetSessionID(sessionID uuid.UUID)
	Log(event string, params ...any)
	Close()
}

type FileLogger struct {
	dir      string
	port     string
	file     *os.File
	writer   *bufio.Writer
	buffered []string
	mu       sync.Mutex
}

func (f *FileLogger) SetSessionID(sessionID uuid.UUID) {
	f.mu.Lock()
	file, err := os.OpenFile(path.Join(f.dir, fmt.Sprintf("%s.%s.log", sessionID, sanitize(f.port))), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err == nil {
		f.file = file
		f.writer = bufio.NewWriter(file)
		for _, buffered := range f.buffered {
			_, _ = f.writer.WriteString(buffered)
		}
		f.buffered = f.buffered[:0]
		f.buffered = nil
	}
	f.mu.Unlock()
}

func (f *FileLogger) Log(event string, params ...any) {
	var pairs []string
	for i := 0; i+1 < len(params); i += 2 {
		pairs = append(pairs, fmt.Sprintf("%v=%v", params[i], params[i+1]))
	}

	log := fmt.Sprintf("timestamp=%s event=%s %s\n", time.Now().Format(time.RFC3339), event, strings.Join(pairs, " "))
	f.mu.Lock()
	if f.writer != nil {
		_, _ = f.writer.WriteString(log)
	} else {
		f.buffered = append(f.buffered, log)
	}
	f.mu.Unlock()
}

func (f *FileLogger) Close() {
	f.mu.Lock()
	if f.writer != nil {
		_ = f.writer.Flush()
		_ = f.file.Close()
		f.writer = nil
	}
	f.mu.Unlock()
}

// NewLogger returns a FileLogger writing below $SLOG_DIR, or a NopLogger when
// the variable is unset or the directory cannot be created.
func NewLogger(port string) Logger {
	dir := os.Getenv("SLOG_DIR")
	if dir == "" {
		return NopLogger{}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return NopLogger{}
	}
	return &FileLogger{dir: dir, port: port}
}

type NopLogger struct{}

var _ Logger = NopLogger{}

func (NopLogger) SetSessionID(_ uuid.UUID) {}
func (NopLogger) Log(_ string, _ ...any)   {}
func (NopLogger) Close()                   {}

func sanitize(port string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, strings.TrimLeft(port, `/\.`))
}
