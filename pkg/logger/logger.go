// Package logger holds the portal's process-wide zerolog logger.
//
// main calls Init once; everything else asks for a Component logger so each
// line carries the subsystem that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the portal logger is built.
type Options struct {
	// Level is the minimum level name. Unknown or empty names mean info.
	Level string
	// Pretty switches to console output for local runs.
	Pretty bool
	// Service and Environment are stamped on every entry when set.
	Service     string
	Environment string
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	once     sync.Once
	instance atomic.Pointer[zerolog.Logger]
)

// New builds a logger from opts without touching the singleton.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Environment != "" {
		fields = fields.Str("env", opts.Environment)
	}
	return fields.Logger()
}

// Init installs the process logger. Later calls return the first one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		zerolog.SetGlobalLevel(parseLevel(opts.Level))
		log := New(opts)
		instance.Store(&log)
	})
	return Get()
}

// Get returns the process logger and panics before Init.
func Get() zerolog.Logger {
	log := instance.Load()
	if log == nil {
		panic("logger: Get() called before Init()")
	}
	return *log
}

// Component tags the process logger with a subsystem name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the process logger. Tests only.
func Reset() {
	once = sync.Once{}
	instance.Store(nil)
}

func parseLevel(s string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
