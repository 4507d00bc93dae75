package models

import (
	"regexp"
	"strings"
	"unicode/utf8"

	dErrors "pixkeys/pkg/domain-errors"
)

// KeyType names the kind of identifier a PIX key carries.
type KeyType string

const (
	KeyTypeCPF   KeyType = "cpf"
	KeyTypeEmail KeyType = "email"
	KeyTypePhone KeyType = "phone"
)

const (
	cpfLength      = 11
	maxEmailLength = 77
)

// phonePattern is "+" country(1-2) area(2-3) subscriber(9), no separators.
var phonePattern = regexp.MustCompile(`^\+\d{1,2}\d{2,3}\d{9}$`)

// ParseKeyType normalizes s and rejects anything outside the closed set.
func ParseKeyType(s string) (KeyType, error) {
	t := KeyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := t.Format(); !ok {
		return "", dErrors.New(dErrors.CodeInvalidKeyType, "invalid key type")
	}
	return t, nil
}

func (t KeyType) String() string { return string(t) }

func (t KeyType) IsValid() bool {
	_, ok := t.Format()
	return ok
}

// Format returns the validation rules for t. The switch is the single place a
// new key type has to be registered.
func (t KeyType) Format() (KeyFormat, bool) {
	switch t {
	case KeyTypeCPF:
		return cpfFormat{}, true
	case KeyTypeEmail:
		return emailFormat{}, true
	case KeyTypePhone:
		return phoneFormat{}, true
	default:
		return nil, false
	}
}

// ValidateKeyValue dispatches value to the format rules of t.
func ValidateKeyValue(t KeyType, value string) error {
	format, ok := t.Format()
	if !ok {
		return dErrors.New(dErrors.CodeInvalidKeyType, "invalid key type")
	}
	return format.Validate(value)
}

// KeyFormat is the per-type validation rule. The interface is sealed: only the
// variants in this file implement it.
type KeyFormat interface {
	Type() KeyType
	Validate(value string) error
	sealed()
}

type cpfFormat struct{}

func (cpfFormat) Type() KeyType { return KeyTypeCPF }

// Validate checks length, digits only, and rejects repeated-digit values. It
// does not compute CPF check digits.
func (cpfFormat) Validate(value string) error {
	if len(value) != cpfLength || !allDigits(value) {
		return dErrors.New(dErrors.CodeInvalidKeyFormat, "cpf must have exactly 11 digits")
	}
	if strings.Count(value, value[:1]) == cpfLength {
		return dErrors.New(dErrors.CodeInvalidKeyFormat, "cpf cannot repeat a single digit")
	}
	return nil
}

func (cpfFormat) sealed() {}

type emailFormat struct{}

func (emailFormat) Type() KeyType { return KeyTypeEmail }

func (emailFormat) Validate(value string) error {
	if !strings.Contains(value, "@") {
		return dErrors.New(dErrors.CodeInvalidKeyFormat, "email must contain '@'")
	}
	if utf8.RuneCountInString(value) > maxEmailLength {
		return dErrors.New(dErrors.CodeInvalidKeyFormat, "email must be at most 77 characters")
	}
	return nil
}

func (emailFormat) sealed() {}

type phoneFormat struct{}

func (phoneFormat) Type() KeyType { return KeyTypePhone }

func (phoneFormat) Validate(value string) error {
	if !phonePattern.MatchString(value) {
		return dErrors.New(dErrors.CodeInvalidKeyFormat, "phone must be '+' followed by country code, area code and 9-digit number")
	}
	return nil
}

func (phoneFormat) sealed() {}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
