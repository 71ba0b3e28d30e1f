package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"voltcart/internal/apperr"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message    string              `json:"message"`
	Code       string              `json:"code"`
	StatusCode int                 `json:"statusCode"`
	Timestamp  string              `json:"timestamp"`
	Path       string              `json:"path"`
	Fields     []apperr.FieldError `json:"fields,omitempty"`
	Details    *ErrorDetails       `json:"details,omitempty"`
}

// ErrorDetails is only sent outside production.
type ErrorDetails struct {
	Stack   string         `json:"stack"`
	Context map[string]any `json:"context,omitempty"`
}

func Success(c *fiber.Ctx, status int, data any, msg string) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data, Message: msg})
}

// HandleError logs err once and writes the failure envelope. Non-operational
// errors are reported as "Internal server error" in production.
func (p *Pipeline) HandleError(c *fiber.Ctx, err error, fields map[string]any) error {
	e := apperr.From(err)
	status := e.Status()

	p.Log.APIError(c, e.Message, e, status, elapsed(c), fields)

	body := ErrorBody{
		Message:    e.Message,
		Code:       e.Code(),
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(timestampLayout),
		Path:       c.Path(),
		Fields:     e.Fields,
	}
	if p.Production {
		if !e.Operational {
			body.Message = "Internal server error"
		}
	} else {
		body.Details = &ErrorDetails{Stack: e.Stack(), Context: fields}
	}
	return c.Status(status).JSON(errorEnvelope{Error: body})
}

// ErrorHandler plugs HandleError into fiber.Config for errors raised outside
// a pipeline route, such as the router's own 404.
func (p *Pipeline) ErrorHandler(c *fiber.Ctx, err error) error {
	return p.HandleError(c, err, nil)
}
