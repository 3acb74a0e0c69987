package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/movedex/internal/model"
	"github.com/maxviazov/movedex/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxWarmKeys      = 100
)

// upstream names are lowercase slugs; a few categories use '+', e.g. damage+ailment
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resource_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	return v
}

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// normalizeIdentifier canonicalizes an id-or-name argument. Any integer is an
// id, 0 and negatives included (move-ailment 0 is "none", -1 is "unknown").
// Leading zeros are dropped so "007" and "7" share one cache entry.
func normalizeIdentifier(field, raw string) (string, *FieldError) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", &FieldError{Field: field, Message: "must not be empty"}
	}
	if isInteger(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", &FieldError{Field: field, Message: "must be an integer id within range"}
		}
		return strconv.Itoa(n), nil
	}
	if err := validate.Var(s, "max=100"); err != nil {
		return "", &FieldError{Field: field, Message: "length must be at most 100"}
	}
	if err := validate.Var(s, "resource_name"); err != nil {
		return "", &FieldError{Field: field, Message: "must be a numeric id or a lowercase resource name"}
	}
	return s, nil
}

// isInteger reports whether s is an optional '-' followed by digits only.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateKind(kind model.Kind) *FieldError {
	if _, ok := model.ParseKind(string(kind)); !ok {
		return &FieldError{Field: "kind", Message: "unknown resource kind"}
	}
	return nil
}
