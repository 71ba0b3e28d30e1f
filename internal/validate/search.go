package validate

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"voltcart/internal/apperr"
)

type SearchInput struct {
	Search   string           `json:"search" validate:"max=255"`
	Category string           `json:"category" validate:"max=255"`
	Brand    string           `json:"brand" validate:"max=255"`
	MinPrice *decimal.Decimal `json:"min_price" validate:"omitempty,nonneg,maxmoney"`
	MaxPrice *decimal.Decimal `json:"max_price" validate:"omitempty,nonneg,maxmoney"`
	Sort     string           `json:"sort" validate:"oneof=name price created_at rating"`
	Order    string           `json:"order" validate:"oneof=asc desc"`
	Limit    int              `json:"limit" validate:"min=1,max=100"`
	Offset   int              `json:"offset" validate:"min=0"`
	Featured *bool            `json:"featured"`
}

func (s *SearchInput) normalize() {
	s.Search = strings.TrimSpace(s.Search)
	s.Category = strings.TrimSpace(s.Category)
	s.Brand = strings.TrimSpace(s.Brand)
	if s.Sort == "" {
		s.Sort = "created_at"
	}
	if s.Order == "" {
		s.Order = "desc"
	}
}

var searchSchema = schema{
	labels: map[string]string{
		"search":    "Search term",
		"min_price": "Minimum price",
		"max_price": "Maximum price",
	},
}

// ValidateProductSearch reads query parameters. Absent or empty values take
// their defaults; a key given more than once is rejected.
func ValidateProductSearch(q map[string][]string) Result[SearchInput] {
	in := SearchInput{Limit: 20}
	var issues []apperr.FieldError
	get := func(key string) (string, bool) {
		vals := q[key]
		switch {
		case len(vals) == 0:
			return "", false
		case len(vals) > 1:
			issues = append(issues, apperr.FieldError{Path: key, Message: "Expected a single value"})
			return "", false
		}
		v := strings.TrimSpace(vals[0])
		return v, v != ""
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	dec := func(key string, dst **decimal.Decimal) {
		v, ok := get(key)
		if !ok {
			return
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			issues = append(issues, apperr.FieldError{Path: key, Message: "Expected number, received string"})
			return
		}
		*dst = &d
	}
	integer := func(key string, dst *int) {
		v, ok := get(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			msg := "Expected number, received string"
			if _, ferr := strconv.ParseFloat(v, 64); ferr == nil {
				msg = searchSchema.label(key) + " must be a whole number"
			}
			issues = append(issues, apperr.FieldError{Path: key, Message: msg})
			return
		}
		*dst = n
	}

	str("search", &in.Search)
	str("category", &in.Category)
	str("brand", &in.Brand)
	dec("min_price", &in.MinPrice)
	dec("max_price", &in.MaxPrice)
	str("sort", &in.Sort)
	str("order", &in.Order)
	integer("limit", &in.Limit)
	integer("offset", &in.Offset)
	if v, ok := get("featured"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			issues = append(issues, apperr.FieldError{Path: "featured", Message: "Expected boolean, received string"})
		} else {
			in.Featured = &b
		}
	}

	if len(issues) > 0 {
		return Result[SearchInput]{Issues: issues}
	}
	return check[SearchInput](in, searchSchema)
}
