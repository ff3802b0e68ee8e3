package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCustomerName  = errors.New("invalid customer name")
	ErrInvalidCurrency      = errors.New("invalid currency code")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrInvalidPhone         = errors.New("invalid phone format")
	ErrPasswordTooWeak      = errors.New("password does not meet requirements")
	ErrInvalidDocument      = errors.New("invalid document")
	ErrDocumentTypeMismatch = fmt.Errorf("%w: companies use CNPJ and individuals use CPF", ErrInvalidDocument)
	ErrInvalidStatus        = errors.New("invalid operation status")
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidDateRange     = errors.New("start date must not be after end date")
	ErrInvalidPage          = errors.New("page out of range")
)

// Validation constants
const (
	MaxCustomerNameLength = 80
	MaxCurrencyNameLength = 50
	MaxOperationAmount    = "1000000000000" // 1 trillion
	MinPasswordLength     = 8
	MaxPasswordLength     = 128
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	phoneRegex        = regexp.MustCompile(`^\(\d{2}\)\d{4,5}-\d{4}$`)
)

// NormalizeCurrencyCode trims and upper-cases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCurrencyCode validates a three-letter currency code
func ValidateCurrencyCode(code string) error {
	if !currencyCodeRegex.MatchString(NormalizeCurrencyCode(code)) {
		return fmt.Errorf("%w: %q must be three letters", ErrInvalidCurrency, code)
	}
	return nil
}

// ValidateRate validates a currency rate against the base currency
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrInvalidRate
	}
	return nil
}

// ValidateAmount validates an operation or limit amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxOperationAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxOperationAmount)
	}

	return nil
}

// ValidateBalance validates a limit balance, which may be zero
func ValidateBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	return ValidateAmount(amount)
}

// ValidateCustomerName validates a customer name
func ValidateCustomerName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCustomerName)
	}

	if len([]rune(name)) > MaxCustomerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidCustomerName, MaxCustomerNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePhone validates a Brazilian phone number such as (11)98765-4321
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}

// NormalizeDocument strips punctuation from a CPF or CNPJ.
func NormalizeDocument(document string) string {
	var b strings.Builder
	for _, r := range document {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateDocument checks the check digits of a CPF or CNPJ.
func ValidateDocument(document string, docType DocumentType) error {
	digits := NormalizeDocument(document)

	var ok bool
	switch docType {
	case DocumentTypeCPF:
		ok = validCPF(digits)
	case DocumentTypeCNPJ:
		ok = validCNPJ(digits)
	default:
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidDocument, docType)
	}

	if !ok {
		return fmt.Errorf("%w: %s check digits do not match", ErrInvalidDocument, docType)
	}
	return nil
}

func validCPF(digits string) bool {
	if len(digits) != 11 || allSame(digits) {
		return false
	}

	first := checkDigit(digits[:9], []int{10, 9, 8, 7, 6, 5, 4, 3, 2})
	second := checkDigit(digits[:10], []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})

	return int(digits[9]-'0') == first && int(digits[10]-'0') == second
}

func validCNPJ(digits string) bool {
	if len(digits) != 14 || allSame(digits) {
		return false
	}

	first := checkDigit(digits[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	second := checkDigit(digits[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})

	return int(digits[12]-'0') == first && int(digits[13]-'0') == second
}

// checkDigit computes a modulo-11 check digit.
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}

	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
