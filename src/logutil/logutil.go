package logutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logFileName  = "screen_tool.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

type Options struct {
	// EnableFileLogging writes JSON lines to screen_tool.log in Dir.
	EnableFileLogging bool
	// Verbose mirrors logs to stderr in console format.
	Verbose bool
	Level   string
	Dir     string
}

// Setup installs the global zerolog logger. File logging uses basic size-based
// rotation (10MB, max 3 files). With neither file logging nor verbose output,
// logs are discarded to keep stdout clean.
func Setup(opts Options) {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var writers []io.Writer
	if opts.Verbose {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	if opts.EnableFileLogging {
		w, err := NewRotatingWriter(filepath.Join(dirOrDot(opts.Dir), logFileName))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, w)
		}
	}

	switch len(writers) {
	case 0:
		log.Logger = zerolog.New(io.Discard)
	case 1:
		log.Logger = zerolog.New(writers[0]).With().Timestamp().Logger()
	default:
		log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	}
}

// ParseLevel maps LOG_LEVEL strings to zerolog levels, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// RotatingWriter appends to a log file and rotates it to .1, .2, .3 when it
// would grow past maxSizeBytes.
type RotatingWriter struct {
	mu   sync.Mutex
	path string
	max  int64
	f    *os.File
}

func NewRotatingWriter(path string) (*RotatingWriter, error) {
	return newRotatingWriter(path, maxSizeBytes)
}

func newRotatingWriter(path string, max int64) (*RotatingWriter, error) {
	rotateIfNeeded(path, max)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	return &RotatingWriter{path: path, max: max, f: f}, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size() > 0 && st.Size()+int64(len(p)) > w.max {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

func rotateIfNeeded(path string, max int64) {
	if st, err := os.Stat(path); err == nil && st.Size() > max {
		rotate(path)
	}
}

func rotate(path string) {
	// remove oldest, shift others, move current to .1
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

func dirOrDot(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "."
	}
	return dir
}

// SanitizeForLog truncates text and escapes control characters so file names
// and tool output cannot inject fake log lines.
func SanitizeForLog(text string) string {
	const maxLogLength = 100
	if len(text) > maxLogLength {
		text = text[:maxLogLength] + "..."
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
