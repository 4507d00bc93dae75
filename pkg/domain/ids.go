package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "pixkeys/pkg/domain-errors"
)

// PixKeyID identifies a registered PIX key. It is a distinct type so a key id
// cannot be confused with other uuids (event ids, request ids) at compile time.
type PixKeyID uuid.UUID

// NewPixKeyID returns a fresh random key id.
func NewPixKeyID() PixKeyID {
	return PixKeyID(uuid.New())
}

// ParsePixKeyID validates s as a non-nil UUID.
func ParsePixKeyID(s string) (PixKeyID, error) {
	parsed, err := parseUUID(s, "pix key id")
	if err != nil {
		return PixKeyID{}, err
	}
	return PixKeyID(parsed), nil
}

func (id PixKeyID) String() string { return uuid.UUID(id).String() }

func (id PixKeyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id PixKeyID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *PixKeyID) UnmarshalText(data []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return err
	}
	*id = PixKeyID(u)
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}
