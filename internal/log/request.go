package log

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the fiber.Ctx local holding the authenticated user's id once
// the request pipeline has resolved it.
const UserIDLocal = "user_id"

type RequestInfo struct {
	Method    string `json:"method"`
	URL       string `json:"url"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	UserID    string `json:"user_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Request summarizes c for a log entry. It returns nil for a nil context.
func Request(c *fiber.Ctx) *RequestInfo {
	if c == nil {
		return nil
	}
	r := &RequestInfo{
		Method:    c.Method(),
		URL:       c.OriginalURL(),
		IP:        ClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		UserID:    userID(c),
	}
	if r.UserAgent == "" {
		r.UserAgent = "unknown"
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		r.RequestID = rid
	}
	return r
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

func userID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDLocal).(string); ok && id != "" {
		return id
	}
	if strings.HasPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ") {
		return "authenticated"
	}
	return ""
}
