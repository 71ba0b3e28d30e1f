package log

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

func ms(d time.Duration) string { return fmt.Sprintf("%dms", d.Milliseconds()) }

func merge(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// APIRequest records one completed API call.
func (l *Logger) APIRequest(c *fiber.Ctx, status int, d time.Duration) {
	l.Info(c, "API Request", map[string]any{
		"method":   c.Method(),
		"path":     c.Path(),
		"status":   status,
		"duration": ms(d),
	})
}

// APIError records a failed API call. Client errors go out at warn so that
// only server faults reach the external sink.
func (l *Logger) APIError(c *fiber.Ctx, msg string, err error, status int, d time.Duration, fields map[string]any) {
	f := merge(fields, map[string]any{"status": status, "duration": ms(d)})
	if c != nil {
		f["method"] = c.Method()
		f["path"] = c.Path()
	}
	if status >= fiber.StatusInternalServerError {
		l.Error(c, "API Error: "+msg, err, f)
		return
	}
	f["error"] = err.Error()
	l.Warn(c, "API Error: "+msg, f)
}

func (l *Logger) AuthAttempt(c *fiber.Ctx, email string, success bool, reason string) {
	f := map[string]any{"email": email, "success": success}
	if reason != "" {
		f["reason"] = reason
	}
	if c != nil {
		f["ip"] = ClientIP(c)
	}
	l.Info(c, "Authentication Attempt", f)
}

// SecurityEvent is the warn-level trail for denials, throttling and suspicious input.
func (l *Logger) SecurityEvent(c *fiber.Ctx, event string, fields map[string]any) {
	f := merge(fields, map[string]any{"event": event})
	if c != nil {
		f["ip"] = ClientIP(c)
		f["user_agent"] = c.Get(fiber.HeaderUserAgent)
	}
	l.Warn(c, "Security Event: "+event, f)
}

func (l *Logger) DatabaseOperation(op, table string, ok bool, d time.Duration, err error) {
	f := map[string]any{"operation": op, "table": table, "duration": ms(d)}
	if ok {
		l.Debug(nil, "Database Operation", f)
		return
	}
	l.Error(nil, fmt.Sprintf("Database Operation Failed: %s on %s", op, table), err, f)
}

// Audit records an admin mutation.
func (l *Logger) Audit(c *fiber.Ctx, action string, fields map[string]any) {
	l.Info(c, action, merge(fields, map[string]any{"audit": true}))
}
