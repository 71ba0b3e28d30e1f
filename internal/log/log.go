package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

type Options struct {
	Mode Mode
	Out  io.Writer // defaults to stdout
	// Sink receives error entries in production. Optional.
	Sink      Sink
	QueueSize int
}

// Logger is the process-wide structured logger. Build one in main and pass it
// down; the zero value is not usable.
type Logger struct {
	mode Mode
	zl   zerolog.Logger
	fwd  *forwarder
	now  func() time.Time
}

// Entry is the structured form of one log call, also what external sinks receive.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	Error     *ErrorInfo     `json:"error,omitempty"`
	Request   *RequestInfo   `json:"request,omitempty"`
}

type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func New(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Mode == "" {
		opts.Mode = Production
	}

	l := &Logger{mode: opts.Mode, now: time.Now}
	if opts.Mode == Development {
		cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		l.zl = zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		l.zl = zerolog.New(out).Level(zerolog.InfoLevel)
	}
	if opts.Sink != nil && opts.Mode == Production {
		l.fwd = newForwarder(opts.Sink, opts.QueueSize, l.zl)
	}
	return l
}

// Nop discards everything. Handy in tests that don't inspect logs.
func Nop() *Logger {
	return &Logger{mode: Production, zl: zerolog.Nop(), now: time.Now}
}

func (l *Logger) Mode() Mode          { return l.mode }
func (l *Logger) IsDevelopment() bool { return l.mode == Development }

// Close drains the external sink queue, if any.
func (l *Logger) Close() {
	if l.fwd != nil {
		l.fwd.close()
	}
}

func (l *Logger) Info(c *fiber.Ctx, msg string, fields map[string]any) {
	l.write(zerolog.InfoLevel, c, msg, nil, fields)
}

func (l *Logger) Warn(c *fiber.Ctx, msg string, fields map[string]any) {
	l.write(zerolog.WarnLevel, c, msg, nil, fields)
}

func (l *Logger) Error(c *fiber.Ctx, msg string, err error, fields map[string]any) {
	l.write(zerolog.ErrorLevel, c, msg, err, fields)
}

// Debug is a no-op outside development.
func (l *Logger) Debug(c *fiber.Ctx, msg string, fields map[string]any) {
	l.write(zerolog.DebugLevel, c, msg, nil, fields)
}

func (l *Logger) write(level zerolog.Level, c *fiber.Ctx, msg string, err error, fields map[string]any) {
	if level == zerolog.DebugLevel && l.mode != Development {
		return
	}

	e := Entry{
		Timestamp: l.now().UTC(),
		Level:     level.String(),
		Message:   msg,
		Context:   fields,
		Request:   Request(c),
	}
	if err != nil {
		e.Error = l.describe(err)
	}

	ev := l.zl.WithLevel(level)
	if l.mode != Development {
		ev = ev.Str("timestamp", e.Timestamp.Format(time.RFC3339Nano))
	}
	if len(fields) > 0 {
		ev = ev.Dict("context", zerolog.Dict().Fields(fields))
	}
	if e.Error != nil {
		d := zerolog.Dict().Str("name", e.Error.Name).Str("message", e.Error.Message)
		if e.Error.Stack != "" {
			d = d.Str("stack", e.Error.Stack)
		}
		ev = ev.Dict("error", d)
	}
	if r := e.Request; r != nil {
		d := zerolog.Dict().
			Str("method", r.Method).
			Str("url", r.URL).
			Str("ip", r.IP).
			Str("user_agent", r.UserAgent)
		if r.UserID != "" {
			d = d.Str("user_id", r.UserID)
		}
		if r.RequestID != "" {
			d = d.Str("request_id", r.RequestID)
		}
		ev = ev.Dict("request", d)
	}
	ev.Msg(msg)

	if level == zerolog.ErrorLevel && l.fwd != nil {
		l.fwd.enqueue(e)
	}
}

func (l *Logger) describe(err error) *ErrorInfo {
	info := &ErrorInfo{Name: errorName(err), Message: err.Error()}
	if l.mode == Development {
		if st, ok := err.(interface{ Stack() string }); ok {
			info.Stack = st.Stack()
		}
	}
	return info
}

func errorName(err error) string {
	if n, ok := err.(interface{ Name() string }); ok {
		return n.Name()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
