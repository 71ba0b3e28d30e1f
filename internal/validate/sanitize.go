package validate

import (
	"regexp"
	"strings"
)

var (
	reScriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	reJSScheme    = regexp.MustCompile(`(?i)javascript:`)
	reEventAttr   = regexp.MustCompile(`(?i)on\w+\s*=`)

	reSlugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSKUStrip   = regexp.MustCompile(`[^A-Z0-9\s_-]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reHyphens    = regexp.MustCompile(`-+`)
)

// HTML strips script blocks, javascript: schemes and inline event handlers,
// then trims. It is a blocklist, not a parser. Removal repeats until nothing
// matches so that fragments like "jajavascript:vascript:" cannot reassemble.
func HTML(s string) string {
	for {
		out := reScriptBlock.ReplaceAllString(s, "")
		out = reJSScheme.ReplaceAllString(out, "")
		out = reEventAttr.ReplaceAllString(out, "")
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}

// Slug lowercases s and reduces it to hyphen-separated [a-z0-9] runs.
func Slug(s string) string {
	s = strings.ToLower(s)
	s = reSlugStrip.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, "-")
	s = reHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SKU uppercases s, keeps [A-Z0-9_-] and turns whitespace runs into hyphens.
func SKU(s string) string {
	s = strings.ToUpper(s)
	s = reSKUStrip.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	return s
}

func htmlPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := HTML(*s)
	return &out
}
