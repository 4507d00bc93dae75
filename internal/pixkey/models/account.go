package models

import (
	"strings"

	dErrors "pixkeys/pkg/domain-errors"
)

// AccountType is the kind of bank account a key is bound to.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

const (
	MinBranch  = 1
	MaxBranch  = 9999
	MinAccount = 1
	MaxAccount = 99999999

	MaxOwnerFirstNameLength = 30
	MaxOwnerLastNameLength  = 45
)

func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "account type must be 'checking' or 'savings'")
	}
	return t, nil
}

func (t AccountType) IsValid() bool {
	return t == AccountTypeChecking || t == AccountTypeSavings
}

func (t AccountType) String() string { return string(t) }

// Account identifies a bank account by branch and number. Keys are counted
// against the limit per Account.
type Account struct {
	Branch int `json:"branch"`
	Number int `json:"number"`
}

// Validate enforces the numeric ranges of branch and account number.
func (a Account) Validate() error {
	if a.Branch < MinBranch || a.Branch > MaxBranch {
		return dErrors.New(dErrors.CodeValidation, "branch must be between 1 and 9999")
	}
	if a.Number < MinAccount || a.Number > MaxAccount {
		return dErrors.New(dErrors.CodeValidation, "account number must be between 1 and 99999999")
	}
	return nil
}

// Owner is the account holder a key is registered to.
type Owner struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

func (o Owner) Validate() error {
	if o.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "owner first name is required")
	}
	if len([]rune(o.FirstName)) > MaxOwnerFirstNameLength {
		return dErrors.New(dErrors.CodeValidation, "owner first name must be at most 30 characters")
	}
	if len([]rune(o.LastName)) > MaxOwnerLastNameLength {
		return dErrors.New(dErrors.CodeValidation, "owner last name must be at most 45 characters")
	}
	return nil
}
