package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"freshtrack/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'&.,-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// maxQuantity bounds quantities and thresholds.
var maxQuantity = decimal.NewFromInt(1_000_000)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, reQ.MatchString(s)
}

// ID validates a resource identifier (uuids and seeded slugs).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > 80 {
		return "", false
	}
	return s, true
}

// Password enforces length and character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// Date parses an optional YYYY-MM-DD. Empty input is a nil date.
func Date(s string) (*domain.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// Quantity parses a decimal in [0, 1e6].
func Quantity(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThan(maxQuantity) {
		return decimal.Zero, false
	}
	return d, true
}

// Color accepts an empty string or #RRGGBB.
func Color(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || reColor.MatchString(s)
}

// Status validates an item lifecycle status filter.
func Status(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	return s, domain.ValidStatus(s)
}

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// decimals are validated through their string form
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		switch d := f.Interface().(type) {
		case decimal.Decimal:
			return d.String()
		case decimal.NullDecimal:
			if d.Valid {
				return d.Decimal.String()
			}
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		_, ok := Quantity(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, ok := Date(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		_, ok := Color(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	})
	return v
}

// Struct runs the `validate` tags of a request body and flattens the first
// failure into a client-safe message.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("%s: failed %q", lowerFirst(fe.Field()), fe.Tag())
	}
	return err
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
