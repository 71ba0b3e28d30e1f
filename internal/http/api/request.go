package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"voltcart/internal/apperr"
	"voltcart/internal/log"
	"voltcart/internal/validate"
)

// ParseBody checks the body is well-formed JSON, then runs fn over it.
// Malformed JSON is a BadRequest; a schema failure is a Validation error.
func ParseBody[T any](c *fiber.Ctx, fn func([]byte) validate.Result[T]) (T, error) {
	var zero T
	raw := bytes.TrimSpace(c.Body())
	if len(raw) == 0 || !json.Valid(raw) {
		return zero, apperr.InvalidJSON()
	}
	res := fn(raw)
	if err := res.Err(); err != nil {
		return zero, err
	}
	return res.Data, nil
}

// ParseQuery collects query parameters, keeping repeated keys.
func ParseQuery(c *fiber.Ctx) map[string][]string {
	q := map[string][]string{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		q[key] = append(q[key], string(v))
	})
	return q
}

// PathID validates a UUID path parameter, failing with "Invalid <resource> ID format".
func PathID(c *fiber.Ctx, param, resource string) (string, error) {
	id, ok := validate.ID(c.Params(param))
	if !ok {
		return "", apperr.BadRequest(fmt.Sprintf("Invalid %s ID format", resource))
	}
	return id, nil
}

// Measure times fn, logging at debug on success and at error on failure.
func Measure[T any](l *log.Logger, op string, fields map[string]any, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	f := map[string]any{"operation": op, "duration": fmt.Sprintf("%dms", time.Since(start).Milliseconds())}
	for k, val := range fields {
		f[k] = val
	}
	if err != nil {
		l.Error(nil, "Performance: "+op+" failed", err, f)
		return v, err
	}
	l.Debug(nil, "Performance: "+op, f)
	return v, nil
}
