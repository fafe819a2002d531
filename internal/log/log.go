// Package log is a small leveled logger, shaped after the
// github.com/saferwall/pe/log helper that file.go depends on: a
// Logger interface, a level-filtering wrapper, and a Helper exposing
// Debugf/Infof/Warnf/Errorf.
package log

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Level is a logging severity. Lower values are more verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the base logging sink: one log call with a level and a
// set of alternating key/value pairs.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes one line per Log call to w.
type stdLogger struct {
	w io.Writer
}

// NewStdLogger returns a Logger that writes plain text lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	line := fmt.Sprintf("%s %s", time.Now().UTC().Format(time.RFC3339), level)
	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	_, err := fmt.Fprintln(l.w, line)
	return err
}

// filterLogger drops any Log call below a minimum level.
type filterLogger struct {
	next Logger
	min  Level
}

// FilterOption configures NewFilter.
type FilterOption func(*filterLogger)

// FilterLevel sets the minimum level a wrapped Logger will emit.
func FilterLevel(level Level) FilterOption {
	return func(f *filterLogger) { f.min = level }
}

// NewFilter wraps logger so that Log calls below the configured
// minimum level (LevelWarn by default) are dropped.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filterLogger{next: logger, min: LevelWarn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filterLogger) Log(level Level, keyvals ...interface{}) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, keyvals...)
}

// Helper wraps a Logger with printf-style convenience methods.
type Helper struct {
	logger Logger
}

// NewHelper returns a Helper logging through logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, a ...interface{}) {
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, a...))
}

func (h *Helper) Debugf(format string, a ...interface{}) { h.log(LevelDebug, format, a...) }
func (h *Helper) Infof(format string, a ...interface{})  { h.log(LevelInfo, format, a...) }
func (h *Helper) Warnf(format string, a ...interface{})  { h.log(LevelWarn, format, a...) }
func (h *Helper) Errorf(format string, a ...interface{}) { h.log(LevelError, format, a...) }

// Default returns a Helper writing to stderr at LevelWarn, the
// editing session's logger when the caller supplies none.
func Default() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelWarn)))
}

// Verbose returns a Helper writing to stderr at LevelDebug, used when
// --verbose is set.
func Verbose() *Helper {
	return NewHelper(NewFilter(NewStdLogger(os.Stderr), FilterLevel(LevelDebug)))
}
