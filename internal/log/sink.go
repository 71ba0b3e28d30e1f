package log

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Sink receives production error entries. Implementations may block; the
// logger calls them from a single background goroutine.
type Sink interface {
	Send(ctx context.Context, e Entry) error
}

const (
	defaultQueueSize = 256
	sendTimeout      = 5 * time.Second
)

type forwarder struct {
	sink  Sink
	local zerolog.Logger
	ch    chan Entry
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func newForwarder(sink Sink, size int, local zerolog.Logger) *forwarder {
	if size <= 0 {
		size = defaultQueueSize
	}
	f := &forwarder{
		sink:  sink,
		local: local,
		ch:    make(chan Entry, size),
		done:  make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *forwarder) run() {
	defer close(f.done)
	for e := range f.ch {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := f.sink.Send(ctx, e)
		cancel()
		if err != nil {
			f.local.Warn().Err(err).Str("message_dropped", e.Message).Msg("Failed to send log to external service")
		}
	}
}

// enqueue never blocks the caller. A full queue drops the entry.
func (f *forwarder) enqueue(e Entry) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- e:
	default:
		f.local.Warn().Str("message_dropped", e.Message).Msg("log sink queue full")
	}
}

func (f *forwarder) close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.ch)
		f.mu.Unlock()
		<-f.done
		if fl, ok := f.sink.(interface{ Flush(time.Duration) bool }); ok {
			fl.Flush(sendTimeout)
		}
	})
}

// WebhookSink posts each entry as JSON to URL.
type WebhookSink struct {
	URL     string
	Timeout time.Duration
}

func (w WebhookSink) Send(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = sendTimeout
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}

	a := fiber.Post(w.URL).JSON(e).Timeout(timeout)
	code, _, errs := a.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook %s: status %d", w.URL, code)
	}
	return nil
}

// SentrySink forwards entries to an error tracker through its own hub, so the
// process-global sentry client is never touched.
type SentrySink struct {
	hub *sentry.Hub
}

func NewSentrySink(dsn, environment, release string) (*SentrySink, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &SentrySink{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *SentrySink) Send(_ context.Context, e Entry) error {
	ev := sentry.NewEvent()
	ev.Level = sentry.LevelError
	ev.Message = e.Message
	ev.Timestamp = e.Timestamp
	ev.Extra = e.Context
	if e.Error != nil {
		ev.Exception = []sentry.Exception{{Type: e.Error.Name, Value: e.Error.Message}}
	}
	if r := e.Request; r != nil {
		ev.Request = &sentry.Request{
			URL:     r.URL,
			Method:  r.Method,
			Headers: map[string]string{"User-Agent": r.UserAgent},
		}
		ev.Tags = map[string]string{"ip": r.IP}
		if r.RequestID != "" {
			ev.Tags["request_id"] = r.RequestID
		}
	}
	if id := s.hub.CaptureEvent(ev); id == nil {
		return errors.New("sentry dropped event")
	}
	return nil
}

func (s *SentrySink) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}
