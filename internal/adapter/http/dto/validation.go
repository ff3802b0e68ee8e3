package dto

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/cambio/internal/domain"
)

// ErrValidationFailed wraps every request validation failure.
var ErrValidationFailed = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
	validateErr  error
)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Amounts travel as strings so that "10.00" keeps its scale.
	if err := v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := decimal.NewFromString(s)
		return err == nil && d.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("register positive_amount: %w", err)
	}

	if err := v.RegisterValidation("nonnegative_amount", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		d, err := decimal.NewFromString(s)
		return err == nil && !d.IsNegative()
	}); err != nil {
		return nil, fmt.Errorf("register nonnegative_amount: %w", err)
	}

	if err := v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return domain.ValidateCurrencyCode(fl.Field().String()) == nil
	}); err != nil {
		return nil, fmt.Errorf("register currency_code: %w", err)
	}

	// document checks the CPF/CNPJ digits against the sibling DocumentType field.
	if err := v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
		docType := fl.Parent().FieldByName("DocumentType")
		if !docType.IsValid() {
			return false
		}
		return domain.ValidateDocument(fl.Field().String(), domain.DocumentType(strings.ToUpper(docType.String()))) == nil
	}); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	return v, nil
}

// Validate checks the struct tags of a request payload.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate, validateErr = newValidator()
	})
	if validateErr != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, validateErr)
	}

	if err := validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return formatFieldError(fieldErrs[0])
		}
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return nil
}

func formatFieldError(fe validator.FieldError) error {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s' is required", ErrValidationFailed, field)
	case "min":
		return fmt.Errorf("%w: '%s' must be at least %s", ErrValidationFailed, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s", ErrValidationFailed, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: '%s' must be one of [%s]", ErrValidationFailed, field, fe.Param())
	case "email":
		return fmt.Errorf("%w: '%s' must be a valid email", ErrValidationFailed, field)
	case "positive_amount":
		return fmt.Errorf("%w: '%s' must be a positive amount", ErrValidationFailed, field)
	case "nonnegative_amount":
		return fmt.Errorf("%w: '%s' must not be negative", ErrValidationFailed, field)
	case "currency_code":
		return fmt.Errorf("%w: '%s' must be a three letter currency code", ErrValidationFailed, field)
	case "document":
		return fmt.Errorf("%w: '%s' is not a valid CPF or CNPJ", ErrValidationFailed, field)
	default:
		return fmt.Errorf("%w: '%s' failed on '%s'", ErrValidationFailed, field, fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
