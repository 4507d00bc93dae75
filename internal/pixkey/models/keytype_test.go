package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pixkeys/pkg/domain-errors"
)

func TestValidateKeyValue(t *testing.T) {
	tests := []struct {
		name    string
		keyType KeyType
		value   string
		code    dErrors.Code
	}{
		{"cpf with 11 distinct digits", KeyTypeCPF, "12345678901", ""},
		{"cpf scenario value", KeyTypeCPF, "12345678909", ""},
		{"cpf all identical digits", KeyTypeCPF, "11111111111", dErrors.CodeInvalidKeyFormat},
		{"cpf too short", KeyTypeCPF, "123", dErrors.CodeInvalidKeyFormat},
		{"cpf too long", KeyTypeCPF, "123456789012", dErrors.CodeInvalidKeyFormat},
		{"cpf with punctuation", KeyTypeCPF, "123.456.789-0", dErrors.CodeInvalidKeyFormat},
		{"email", KeyTypeEmail, "user@example.com", ""},
		{"email without at sign", KeyTypeEmail, "userexample.com", dErrors.CodeInvalidKeyFormat},
		{"email at max length", KeyTypeEmail, strings.Repeat("a", 65) + "@example.com", ""},
		{"email over max length", KeyTypeEmail, strings.Repeat("a", 66) + "@example.com", dErrors.CodeInvalidKeyFormat},
		{"email at max length in characters, over in bytes", KeyTypeEmail, strings.Repeat("é", 65) + "@example.com", ""},
		{"accented email over max length", KeyTypeEmail, strings.Repeat("é", 66) + "@example.com", dErrors.CodeInvalidKeyFormat},
		{"phone with country and area code", KeyTypePhone, "+5511999999999", ""},
		{"phone with one-digit country and three-digit area", KeyTypePhone, "+1212999999999", ""},
		{"phone without plus", KeyTypePhone, "11999999999", dErrors.CodeInvalidKeyFormat},
		{"phone with separators", KeyTypePhone, "+55 11 999999999", dErrors.CodeInvalidKeyFormat},
		{"phone too short", KeyTypePhone, "+55119999", dErrors.CodeInvalidKeyFormat},
		{"unknown type", KeyType("cnpj"), "12345678000199", dErrors.CodeInvalidKeyType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKeyValue(tt.keyType, tt.value)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestParseKeyType(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		kt, err := ParseKeyType("  EMAIL ")
		require.NoError(t, err)
		assert.Equal(t, KeyTypeEmail, kt)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := ParseKeyType("random")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidKeyType))
	})

	t.Run("every known type has a format reporting itself", func(t *testing.T) {
		for _, kt := range []KeyType{KeyTypeCPF, KeyTypeEmail, KeyTypePhone} {
			format, ok := kt.Format()
			require.True(t, ok)
			assert.Equal(t, kt, format.Type())
		}
	})
}
