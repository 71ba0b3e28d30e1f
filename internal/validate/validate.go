package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// UUID versions 1-5, RFC 4122 variant
	reUUID = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 255 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a resource identifier from a path segment.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return strings.ToLower(s), s != "" && reUUID.MatchString(s)
}

// Password enforces the login length window.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 128
}
