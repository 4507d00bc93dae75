package models

import (
	"time"

	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
)

// PixKey is the aggregate root for a registered PIX key.
//
// Invariants:
//   - ID, KeyType, KeyValue and CreatedAt are immutable after construction
//   - KeyValue satisfies the format of KeyType
//   - DeactivatedAt is nil while active and set exactly once, never before CreatedAt
//   - Inactive is terminal: no amendment, no reactivation
type PixKey struct {
	ID            id.PixKeyID `json:"id"`
	KeyType       KeyType     `json:"key_type"`
	KeyValue      string      `json:"key_value"`
	AccountType   AccountType `json:"account_type"`
	Account       Account     `json:"account"`
	Owner         Owner       `json:"owner"`
	CreatedAt     time.Time   `json:"created_at"`
	DeactivatedAt *time.Time  `json:"deactivated_at,omitempty"`
}

// NewPixKey validates every field and returns an active key.
func NewPixKey(keyID id.PixKeyID, keyType KeyType, keyValue string, accountType AccountType, account Account, owner Owner, now time.Time) (*PixKey, error) {
	if keyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "pix key id cannot be nil")
	}
	if err := ValidateKeyValue(keyType, keyValue); err != nil {
		return nil, err
	}
	if !accountType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account type must be 'checking' or 'savings'")
	}
	if err := account.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	if err := owner.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	return &PixKey{
		ID:          keyID,
		KeyType:     keyType,
		KeyValue:    keyValue,
		AccountType: accountType,
		Account:     account,
		Owner:       owner,
		CreatedAt:   Timestamp(now),
	}, nil
}

// Timestamp normalizes t to UTC at microsecond precision, the resolution every
// store can round-trip.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (k *PixKey) IsActive() bool {
	return k.DeactivatedAt == nil
}

// CanAmend reports whether the key accepts changes to its account or owner.
func (k *PixKey) CanAmend() error {
	if !k.IsActive() {
		return dErrors.New(dErrors.CodeInactiveKey, "pix key is inactive and cannot be amended")
	}
	return nil
}

// ApplyAmendment overwrites the mutable fields present in a.
// Call CanAmend first.
func (k *PixKey) ApplyAmendment(a Amendment) {
	if a.AccountType != nil {
		k.AccountType = *a.AccountType
	}
	if a.Branch != nil {
		k.Account.Branch = *a.Branch
	}
	if a.AccountNumber != nil {
		k.Account.Number = *a.AccountNumber
	}
	if a.OwnerFirstName != nil {
		k.Owner.FirstName = *a.OwnerFirstName
	}
	if a.OwnerLastName != nil {
		k.Owner.LastName = *a.OwnerLastName
	}
}

// CanDeactivate checks the Active -> Inactive transition.
func (k *PixKey) CanDeactivate() error {
	if !k.IsActive() {
		return dErrors.New(dErrors.CodeAlreadyInactive, "pix key is already inactive")
	}
	return nil
}

// ApplyDeactivation stamps the deactivation time. A clock that runs behind
// CreatedAt is clamped so the timestamps stay ordered.
// Call CanDeactivate first.
func (k *PixKey) ApplyDeactivation(now time.Time) {
	now = Timestamp(now)
	if now.Before(k.CreatedAt) {
		now = k.CreatedAt
	}
	k.DeactivatedAt = &now
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (k *PixKey) Clone() *PixKey {
	if k == nil {
		return nil
	}
	c := *k
	if k.DeactivatedAt != nil {
		t := *k.DeactivatedAt
		c.DeactivatedAt = &t
	}
	return &c
}

// Amendment lists the mutable fields of a key; nil means "leave unchanged".
// Key type and value are deliberately absent.
type Amendment struct {
	AccountType    *AccountType
	Branch         *int
	AccountNumber  *int
	OwnerFirstName *string
	OwnerLastName  *string
}

// IsEmpty reports whether the amendment changes nothing.
func (a Amendment) IsEmpty() bool {
	return a.AccountType == nil && a.Branch == nil && a.AccountNumber == nil &&
		a.OwnerFirstName == nil && a.OwnerLastName == nil
}

// TargetAccount returns the account the key would be bound to after applying a.
func (a Amendment) TargetAccount(current Account) Account {
	target := current
	if a.Branch != nil {
		target.Branch = *a.Branch
	}
	if a.AccountNumber != nil {
		target.Number = *a.AccountNumber
	}
	return target
}

// Validate checks the fields present in a against the same rules as creation.
func (a Amendment) Validate() error {
	if a.AccountType != nil && !a.AccountType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "account type must be 'checking' or 'savings'")
	}
	if a.Branch != nil && (*a.Branch < MinBranch || *a.Branch > MaxBranch) {
		return dErrors.New(dErrors.CodeValidation, "branch must be between 1 and 9999")
	}
	if a.AccountNumber != nil && (*a.AccountNumber < MinAccount || *a.AccountNumber > MaxAccount) {
		return dErrors.New(dErrors.CodeValidation, "account number must be between 1 and 99999999")
	}
	if a.OwnerFirstName != nil {
		owner := Owner{FirstName: *a.OwnerFirstName}
		if err := owner.Validate(); err != nil {
			return err
		}
	}
	if a.OwnerLastName != nil && len([]rune(*a.OwnerLastName)) > MaxOwnerLastNameLength {
		return dErrors.New(dErrors.CodeValidation, "owner last name must be at most 45 characters")
	}
	return nil
}
