// Package api is the request pipeline shared by every JSON route: rate limit,
// method check, bearer authentication, admin authorization, then the handler,
// with one envelope and one log entry per request.
package api

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/log"
	"voltcart/internal/ratelimit"
	"voltcart/internal/services"
)

type Access int

const (
	Public Access = iota
	// Optional resolves the user when a bearer token is sent; a bad token is
	// still a 401.
	Optional
	Authenticated
	Admin
)

const (
	startLocal = "api_start"
	userLocal  = "api_user"
)

// RouteOpts declares what a route accepts. An empty Methods list accepts any
// verb; a zero Limit skips the per-route counter.
type RouteOpts struct {
	Methods []string
	Limit   ratelimit.Policy
	Access  Access
}

// Endpoint is one verb of a path mounted with Pipeline.Mount.
type Endpoint struct {
	Limit   ratelimit.Policy
	Access  Access
	Handler fiber.Handler
}

type Pipeline struct {
	Limiter    *ratelimit.Limiter
	Auth       *services.AuthService
	Log        *log.Logger
	Production bool
	// Timeout bounds every store and identity call made by the handler.
	Timeout time.Duration
}

// Route wraps h in the pipeline. Errors from any step, h included, end in
// HandleError; success is logged as "API Request".
func (p *Pipeline) Route(o RouteOpts, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.Locals(startLocal, start)

		if p.Timeout > 0 {
			ctx, cancel := context.WithTimeout(c.UserContext(), p.Timeout)
			defer cancel()
			c.SetUserContext(ctx)
		}

		fields := map[string]any{}
		if err := p.run(c, o, h, fields); err != nil {
			return p.HandleError(c, err, fields)
		}
		p.Log.APIRequest(c, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

func (p *Pipeline) run(c *fiber.Ctx, o RouteOpts, h fiber.Handler, fields map[string]any) error {
	if o.Limit.Max > 0 && p.Limiter != nil {
		d := p.Limiter.Allow(log.ClientIP(c), o.Limit)
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Window", window(o.Limit.Window))
		if !d.Allowed {
			retry := int(time.Until(d.ResetAt).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			fields["security_event"] = "rate_limit_exceeded"
			fields["policy"] = o.Limit.Name
			return apperr.RateLimit("")
		}
	}

	if len(o.Methods) > 0 && !slices.Contains(o.Methods, c.Method()) {
		c.Set(fiber.HeaderAllow, strings.Join(o.Methods, ", "))
		return apperr.MethodNotAllowed(c.Method())
	}

	if o.Access >= Authenticated || (o.Access == Optional && c.Get(fiber.HeaderAuthorization) != "") {
		token, ok := BearerToken(c)
		if !ok {
			return apperr.Authentication("Missing or invalid authorization header")
		}
		u, err := p.Auth.GetUser(c.UserContext(), token)
		if err != nil {
			return err
		}
		if u == nil {
			return apperr.Authentication("Invalid or expired token")
		}
		c.Locals(log.UserIDLocal, u.ID)
		c.Locals(userLocal, u)

		if o.Access == Admin && !p.Auth.IsAdmin(u) {
			fields["security_event"] = "admin_access_denied"
			return apperr.Authorization("Admin access required")
		}
	}

	if h == nil {
		return apperr.MethodNotAllowed(c.Method())
	}
	return h(c)
}

// Mount serves every verb of path through one handler so that unlisted verbs
// get a pipeline 405 rather than the router's 404.
func (p *Pipeline) Mount(r fiber.Router, path string, eps map[string]Endpoint) {
	methods := make([]string, 0, len(eps))
	for m := range eps {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	byMethod := make(map[string]fiber.Handler, len(eps))
	for m, ep := range eps {
		byMethod[m] = p.Route(RouteOpts{Methods: methods, Limit: ep.Limit, Access: ep.Access}, ep.Handler)
	}
	reject := p.Route(RouteOpts{Methods: methods, Limit: ratelimit.Read}, nil)

	r.All(path, func(c *fiber.Ctx) error {
		if h, ok := byMethod[c.Method()]; ok {
			return h(c)
		}
		return reject(c)
	})
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUser is the user resolved by an authenticated route, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(userLocal).(*domain.User)
	return u
}

func elapsed(c *fiber.Ctx) time.Duration {
	if start, ok := c.Locals(startLocal).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}

// window renders 15*time.Minute as "15m".
func window(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}
