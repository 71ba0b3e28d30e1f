package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"voltcart/internal/apperr"
)

var (
	reSlug  = regexp.MustCompile(`^[a-z0-9-]+$`)
	reSKU   = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	rePhone = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

	maxMoney = decimal.RequireFromString("999999.99")
)

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	tags := map[string]validator.Func{
		"slug":     matches(reSlug),
		"sku":      matches(reSKU),
		"phone":    matches(rePhone),
		"positive": money(func(d decimal.Decimal) bool { return d.IsPositive() }),
		"nonneg":   money(func(d decimal.Decimal) bool { return !d.IsNegative() }),
		"maxmoney": money(func(d decimal.Decimal) bool { return d.LessThanOrEqual(maxMoney) }),
		"cents":    money(IsCents),
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool { return re.MatchString(fl.Field().String()) }
}

func money(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ok(d)
	}
}

// IsCents reports whether d is a whole number of cents. The check is exact;
// decimals carry no binary rounding error.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Result is the outcome of running a schema over untyped input. It never
// panics and never returns a Go error; callers branch on Success.
type Result[T any] struct {
	Success bool
	Data    T
	Issues  []apperr.FieldError
}

// Error joins every issue as "path: message".
func (r Result[T]) Error() string {
	if len(r.Issues) == 0 {
		return "Invalid request data"
	}
	parts := make([]string, len(r.Issues))
	for i, is := range r.Issues {
		if is.Path == "" {
			parts[i] = is.Message
			continue
		}
		parts[i] = is.Path + ": " + is.Message
	}
	return strings.Join(parts, ", ")
}

// Err is nil on success, otherwise a Validation error carrying every issue.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}
	return apperr.Validation(r.Error(), r.Issues...)
}

type normalizer interface{ normalize() }

// schema holds the human wording for one input type.
type schema struct {
	labels   map[string]string // path (indices as "*") -> label
	messages map[string]string // "path|tag" -> full message
}

func run[T any, PT interface {
	*T
	normalizer
}](raw []byte, s schema) Result[T] {
	var in T
	if err := json.Unmarshal(raw, &in); err != nil {
		return Result[T]{Issues: []apperr.FieldError{s.decodeIssue(err)}}
	}
	return check[T, PT](in, s)
}

func check[T any, PT interface {
	*T
	normalizer
}](in T, s schema) Result[T] {
	PT(&in).normalize()
	if err := engine.Struct(&in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Result[T]{Issues: []apperr.FieldError{{Message: err.Error()}}}
		}
		issues := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			issues = append(issues, apperr.FieldError{Path: path, Message: s.describe(fe, path)})
		}
		return Result[T]{Issues: issues}
	}
	return Result[T]{Success: true, Data: in}
}

// fieldPath turns "ProductInput.images[2]" into "images.2". Segments named
// after Go types (the root, embedded structs) are dropped.
func fieldPath(ns string) string {
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	var keep []string
	for _, seg := range strings.Split(ns, ".") {
		if seg == "" || (seg[0] >= 'A' && seg[0] <= 'Z') {
			continue
		}
		keep = append(keep, seg)
	}
	return strings.Join(keep, ".")
}

func labelKey(path string) string {
	segs := strings.Split(path, ".")
	for i, s := range segs {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			segs[i] = "*"
		}
	}
	return strings.Join(segs, ".")
}

func (s schema) label(path string) string {
	key := labelKey(path)
	if l, ok := s.labels[key]; ok {
		return l
	}
	last := key[strings.LastIndex(key, ".")+1:]
	if l, ok := s.labels[last]; ok {
		return l
	}
	if l, ok := commonLabels[last]; ok {
		return l
	}
	h := strings.ReplaceAll(last, "_", " ")
	if h == "" {
		return "Value"
	}
	return strings.ToUpper(h[:1]) + h[1:]
}

var commonLabels = map[string]string{
	"slug":    "Slug",
	"sku":     "SKU",
	"street":  "Street address",
	"zip":     "ZIP code",
	"email":   "Email",
	"comment": "Comment",
}

func lowerFirst(s string) string {
	if s == "" || (len(s) > 1 && strings.ToUpper(s[:2]) == s[:2]) {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func (s schema) describe(fe validator.FieldError, path string) string {
	if m, ok := s.messages[labelKey(path)+"|"+fe.Tag()]; ok {
		return m
	}
	label := s.label(path)
	p := fe.Param()
	switch fe.Tag() {
	case "required", "required_with":
		return label + " is required"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			if p == "1" {
				return label + " is required"
			}
			return fmt.Sprintf("%s must be at least %s characters", label, p)
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("%s must contain at least %s items", label, p)
		}
		if p == "0" {
			return label + " cannot be negative"
		}
		return fmt.Sprintf("%s must be at least %s", label, p)
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be less than %s characters", label, p)
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("%s can contain at most %s items", label, p)
		}
		return fmt.Sprintf("%s cannot exceed %s", label, commaInt(p))
	case "positive":
		return label + " must be positive"
	case "nonneg":
		return label + " cannot be negative"
	case "maxmoney":
		return label + " cannot exceed $999,999.99"
	case "cents":
		return label + " must have at most 2 decimal places"
	case "slug":
		return label + " must contain only lowercase letters, numbers, and hyphens"
	case "sku":
		return label + " must contain only uppercase letters, numbers, hyphens, and underscores"
	case "phone":
		return "Invalid phone number format"
	case "email":
		return "Invalid email address"
	case "url", "uuid":
		return "Invalid " + lowerFirst(label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(p), ", "))
	}
	return label + " is invalid"
}

func commaInt(p string) string {
	var n int64
	if _, err := fmt.Sscan(p, &n); err != nil {
		return p
	}
	return humanize.Comma(n)
}

func (s schema) decodeIssue(err error) apperr.FieldError {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		if te.Field == "" {
			return apperr.FieldError{Message: "Expected object, received " + te.Value}
		}
		path := te.Field
		label := s.label(path)
		switch te.Type.Kind() {
		case reflect.Int, reflect.Int64, reflect.Int32:
			if strings.HasPrefix(te.Value, "number") {
				return apperr.FieldError{Path: path, Message: label + " must be a whole number"}
			}
			return apperr.FieldError{Path: path, Message: "Expected number, received " + te.Value}
		case reflect.String:
			return apperr.FieldError{Path: path, Message: "Expected string, received " + te.Value}
		case reflect.Bool:
			return apperr.FieldError{Path: path, Message: "Expected boolean, received " + te.Value}
		case reflect.Slice:
			return apperr.FieldError{Path: path, Message: "Expected array, received " + te.Value}
		}
		return apperr.FieldError{Path: path, Message: "Invalid value, received " + te.Value}
	}
	return apperr.FieldError{Message: "Invalid input: " + err.Error()}
}
