// Package apperr is the application error taxonomy. Every failure that reaches
// the HTTP layer is an *Error whose Kind decides status and code.
package apperr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindMethodNotAllowed
	KindConflict
	KindRateLimit
	KindDatabase
)

func (k Kind) Status() int {
	switch k {
	case KindValidation, KindBadRequest:
		return fiber.StatusBadRequest
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindMethodNotAllowed:
		return fiber.StatusMethodNotAllowed
	case KindConflict:
		return fiber.StatusConflict
	case KindRateLimit:
		return fiber.StatusTooManyRequests
	case KindDatabase, KindInternal:
		return fiber.StatusInternalServerError
	}
	return fiber.StatusInternalServerError
}

func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case KindAuthorization:
		return "AUTHORIZATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindConflict:
		return "CONFLICT"
	case KindRateLimit:
		return "RATE_LIMIT_EXCEEDED"
	case KindDatabase:
		return "DATABASE_ERROR"
	case KindInternal:
		return "INTERNAL_ERROR"
	}
	return "INTERNAL_ERROR"
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindBadRequest:
		return "BadRequestError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindMethodNotAllowed:
		return "MethodNotAllowedError"
	case KindConflict:
		return "ConflictError"
	case KindRateLimit:
		return "RateLimitError"
	case KindDatabase:
		return "DatabaseError"
	case KindInternal:
		return "InternalError"
	}
	return "InternalError"
}

// FieldError names one violated input field by dotted path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type Error struct {
	Kind        Kind
	Message     string
	Operational bool
	Cause       error
	Fields      []FieldError

	stack []uintptr
}

func newErr(k Kind, msg string, operational bool, cause error) *Error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	return &Error{Kind: k, Message: msg, Operational: operational, Cause: cause, stack: pcs[:n]}
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }
func (e *Error) Status() int   { return e.Kind.Status() }
func (e *Error) Code() string  { return e.Kind.Code() }
func (e *Error) Name() string  { return e.Kind.String() }

// Stack renders the frames captured at construction. For Database errors the
// cause's own stack, when it carries one, is appended.
func (e *Error) Stack() string {
	var b strings.Builder
	b.WriteString(e.Name() + ": " + e.Message)
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "\n    at %s (%s:%d)", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	var inner interface{ Stack() string }
	if e.Cause != nil && errors.As(e.Cause, &inner) {
		b.WriteString("\nCaused by: " + inner.Stack())
	}
	return b.String()
}

// Is makes errors.Is match on kind and message, so two mappings of the same
// raw error compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func Validation(msg string, fields ...FieldError) *Error {
	e := newErr(KindValidation, msg, true, nil)
	e.Fields = fields
	return e
}

func BadRequest(msg string) *Error { return newErr(KindBadRequest, msg, true, nil) }

func InvalidJSON() *Error { return newErr(KindBadRequest, "Invalid JSON in request body", true, nil) }

func Authentication(msg string) *Error {
	if msg == "" {
		msg = "Authentication required"
	}
	return newErr(KindAuthentication, msg, true, nil)
}

func Authorization(msg string) *Error {
	if msg == "" {
		msg = "Insufficient permissions"
	}
	return newErr(KindAuthorization, msg, true, nil)
}

// NotFound reports "<resource> not found".
func NotFound(resource string) *Error {
	if resource == "" {
		resource = "Resource"
	}
	return newErr(KindNotFound, resource+" not found", true, nil)
}

func MethodNotAllowed(method string) *Error {
	return newErr(KindMethodNotAllowed, fmt.Sprintf("Method %s not allowed", method), true, nil)
}

func Conflict(msg string) *Error { return newErr(KindConflict, msg, true, nil) }

func RateLimit(msg string) *Error {
	if msg == "" {
		msg = "Too many requests"
	}
	return newErr(KindRateLimit, msg, true, nil)
}

func Database(msg string, cause error) *Error {
	if msg == "" {
		msg = "Database operation failed"
	}
	return newErr(KindDatabase, msg, true, cause)
}

// Internal marks a defect. Its message never reaches a production client.
func Internal(cause error) *Error {
	msg := "Internal server error"
	if cause != nil {
		msg = cause.Error()
	}
	return newErr(KindInternal, msg, false, cause)
}

// From returns err as an *Error, treating anything foreign as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fromFiber(fe)
	}
	return Internal(err)
}

func fromFiber(fe *fiber.Error) *Error {
	var k Kind
	switch fe.Code {
	case fiber.StatusBadRequest:
		k = KindBadRequest
	case fiber.StatusUnauthorized:
		k = KindAuthentication
	case fiber.StatusForbidden:
		k = KindAuthorization
	case fiber.StatusNotFound:
		k = KindNotFound
	case fiber.StatusMethodNotAllowed:
		k = KindMethodNotAllowed
	case fiber.StatusConflict:
		k = KindConflict
	case fiber.StatusTooManyRequests:
		k = KindRateLimit
	case fiber.StatusRequestEntityTooLarge, fiber.StatusUnsupportedMediaType:
		k = KindBadRequest
	default:
		return newErr(KindInternal, fe.Message, false, fe)
	}
	return newErr(k, fe.Message, true, nil)
}

func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
