package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
)

type PixKeySuite struct {
	suite.Suite
	now time.Time
}

func TestPixKeySuite(t *testing.T) {
	suite.Run(t, new(PixKeySuite))
}

func (s *PixKeySuite) SetupTest() {
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *PixKeySuite) newKey() *PixKey {
	k, err := NewPixKey(id.NewPixKeyID(), KeyTypeCPF, "12345678909", AccountTypeChecking,
		Account{Branch: 1, Number: 100}, Owner{FirstName: "Ana", LastName: "Silva"}, s.now)
	s.Require().NoError(err)
	return k
}

func (s *PixKeySuite) TestConstruction() {
	s.Run("new key is active", func() {
		k := s.newKey()
		s.True(k.IsActive())
		s.Nil(k.DeactivatedAt)
		s.Equal(s.now, k.CreatedAt)
	})

	s.Run("rejects invalid key value", func() {
		_, err := NewPixKey(id.NewPixKeyID(), KeyTypeEmail, "nope", AccountTypeChecking,
			Account{Branch: 1, Number: 100}, Owner{FirstName: "Ana"}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidKeyFormat))
	})

	s.Run("rejects out of range branch", func() {
		_, err := NewPixKey(id.NewPixKeyID(), KeyTypeEmail, "a@b.c", AccountTypeChecking,
			Account{Branch: 10000, Number: 100}, Owner{FirstName: "Ana"}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects missing owner first name", func() {
		_, err := NewPixKey(id.NewPixKeyID(), KeyTypeEmail, "a@b.c", AccountTypeSavings,
			Account{Branch: 1, Number: 100}, Owner{}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects nil id", func() {
		_, err := NewPixKey(id.PixKeyID{}, KeyTypeEmail, "a@b.c", AccountTypeSavings,
			Account{Branch: 1, Number: 100}, Owner{FirstName: "Ana"}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *PixKeySuite) TestLifecycle() {
	s.Run("deactivation is one-way", func() {
		k := s.newKey()
		s.Require().NoError(k.CanDeactivate())
		k.ApplyDeactivation(s.now.Add(time.Hour))

		s.False(k.IsActive())
		s.Equal(s.now.Add(time.Hour), *k.DeactivatedAt)
		s.True(dErrors.HasCode(k.CanDeactivate(), dErrors.CodeAlreadyInactive))
		s.True(dErrors.HasCode(k.CanAmend(), dErrors.CodeInactiveKey))
	})

	s.Run("deactivation never precedes creation", func() {
		k := s.newKey()
		k.ApplyDeactivation(s.now.Add(-time.Minute))
		s.Equal(k.CreatedAt, *k.DeactivatedAt)
	})

	s.Run("amendment touches only present fields", func() {
		k := s.newKey()
		k.ApplyAmendment(Amendment{
			AccountType:    Ptr(AccountTypeSavings),
			AccountNumber:  Ptr(200),
			OwnerFirstName: Ptr("Maria"),
		})

		s.Equal(AccountTypeSavings, k.AccountType)
		s.Equal(Account{Branch: 1, Number: 200}, k.Account)
		s.Equal(Owner{FirstName: "Maria", LastName: "Silva"}, k.Owner)
		s.Equal(KeyTypeCPF, k.KeyType)
		s.Equal("12345678909", k.KeyValue)
		s.Equal(s.now, k.CreatedAt)
	})

	s.Run("clone does not share the deactivation timestamp", func() {
		k := s.newKey()
		k.ApplyDeactivation(s.now)
		c := k.Clone()
		*c.DeactivatedAt = s.now.Add(time.Hour)
		s.Equal(s.now, *k.DeactivatedAt)
	})
}

func (s *PixKeySuite) TestAmendmentValidation() {
	s.Run("empty amendment is valid and empty", func() {
		s.True(Amendment{}.IsEmpty())
		s.NoError(Amendment{}.Validate())
	})

	s.Run("rejects invalid account type", func() {
		err := Amendment{AccountType: Ptr(AccountType("business"))}.Validate()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects account number out of range", func() {
		err := Amendment{AccountNumber: Ptr(0)}.Validate()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects blank first name", func() {
		err := Amendment{OwnerFirstName: Ptr("")}.Validate()
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("target account reflects branch and number changes", func() {
		a := Amendment{Branch: Ptr(7)}
		s.Equal(Account{Branch: 7, Number: 100}, a.TargetAccount(Account{Branch: 1, Number: 100}))
	})
}
