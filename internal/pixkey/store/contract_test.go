package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	"pixkeys/pkg/platform/sentinel"
)

// keyStore is the full contract every backend satisfies.
type keyStore interface {
	Create(ctx context.Context, key *models.PixKey, policy models.LimitPolicy) error
	Save(ctx context.Context, key *models.PixKey) error
	Execute(ctx context.Context, keyID id.PixKeyID, policy models.LimitPolicy, validate func(*models.PixKey) error, mutate func(*models.PixKey)) (*models.PixKey, error)
	DeleteByID(ctx context.Context, keyID id.PixKeyID) error
	FindByID(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error)
	FindByKeyValue(ctx context.Context, value string) (*models.PixKey, error)
	FindByType(ctx context.Context, keyType models.KeyType) ([]*models.PixKey, error)
	FindByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error)
	FindByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error)
	FindByCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error)
	FindByDeactivatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error)
	FindByFilters(ctx context.Context, f models.Filter) ([]*models.PixKey, error)
	CountActiveByAccount(ctx context.Context, account models.Account) (int, error)
	CountByAccount(ctx context.Context, account models.Account) (int, error)
}

var (
	_ keyStore = (*InMemory)(nil)
	_ keyStore = (*SQLStore)(nil)
)

// contractSuite exercises the store contract. Backends embed it and provide
// newStore; it is called before every test.
type contractSuite struct {
	suite.Suite
	newStore func() keyStore
	store    keyStore
	ctx      context.Context
	base     time.Time
	seq      atomic.Int64
}

func (s *contractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

// newKey builds a valid email key; each call gets a distinct value and a
// creation time one minute after the previous one.
func (s *contractSuite) newKey(account models.Account) *models.PixKey {
	n := s.seq.Add(1)
	return &models.PixKey{
		ID:          id.NewPixKeyID(),
		KeyType:     models.KeyTypeEmail,
		KeyValue:    fmt.Sprintf("user%d@example.com", n),
		AccountType: models.AccountTypeChecking,
		Account:     account,
		Owner:       models.Owner{FirstName: "Maria", LastName: "Silva"},
		CreatedAt:   s.base.Add(time.Duration(n) * time.Minute),
	}
}

func (s *contractSuite) mustCreate(key *models.PixKey) {
	s.Require().NoError(s.store.Create(s.ctx, key, models.DefaultLimitPolicy()))
}

func (s *contractSuite) deactivate(keyID id.PixKeyID, at time.Time) {
	_, err := s.store.Execute(s.ctx, keyID, models.DefaultLimitPolicy(),
		func(k *models.PixKey) error { return k.CanDeactivate() },
		func(k *models.PixKey) { k.ApplyDeactivation(at) },
	)
	s.Require().NoError(err)
}

var acct = models.Account{Branch: 1234, Number: 56789}

func (s *contractSuite) TestCreateAndLookups() {
	key := s.newKey(acct)
	s.mustCreate(key)

	byID, err := s.store.FindByID(s.ctx, key.ID)
	s.Require().NoError(err)
	s.Equal(key, byID)

	byValue, err := s.store.FindByKeyValue(s.ctx, key.KeyValue)
	s.Require().NoError(err)
	s.Equal(key.ID, byValue.ID)

	_, err = s.store.FindByID(s.ctx, id.NewPixKeyID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByKeyValue(s.ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestReturnedKeysAreCopies() {
	key := s.newKey(acct)
	s.mustCreate(key)

	found, err := s.store.FindByID(s.ctx, key.ID)
	s.Require().NoError(err)
	found.Owner.FirstName = "Mutated"

	again, err := s.store.FindByID(s.ctx, key.ID)
	s.Require().NoError(err)
	s.Equal("Maria", again.Owner.FirstName)
}

func (s *contractSuite) TestKeyValueIsUnique() {
	first := s.newKey(acct)
	s.mustCreate(first)

	dup := s.newKey(models.Account{Branch: 1, Number: 1})
	dup.KeyValue = first.KeyValue
	err := s.store.Create(s.ctx, dup, models.DefaultLimitPolicy())
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	s.deactivate(first.ID, s.base.Add(time.Hour))
	err = s.store.Create(s.ctx, dup, models.DefaultLimitPolicy())
	s.ErrorIs(err, sentinel.ErrAlreadyUsed, "inactive keys keep their value reserved")
}

func (s *contractSuite) TestLimitCountsActiveKeys() {
	var keys []*models.PixKey
	for range models.DefaultKeyLimit {
		k := s.newKey(acct)
		s.mustCreate(k)
		keys = append(keys, k)
	}

	err := s.store.Create(s.ctx, s.newKey(acct), models.DefaultLimitPolicy())
	s.ErrorIs(err, sentinel.ErrLimitReached)

	s.deactivate(keys[0].ID, s.base.Add(time.Hour))
	s.NoError(s.store.Create(s.ctx, s.newKey(acct), models.DefaultLimitPolicy()), "deactivation frees a slot")

	active, err := s.store.CountActiveByAccount(s.ctx, acct)
	s.Require().NoError(err)
	s.Equal(5, active)
	total, err := s.store.CountByAccount(s.ctx, acct)
	s.Require().NoError(err)
	s.Equal(6, total)

	countAll := models.LimitPolicy{Max: 6, CountInactive: true}
	s.ErrorIs(s.store.Create(s.ctx, s.newKey(acct), countAll), sentinel.ErrLimitReached)
}

func (s *contractSuite) TestLimitIsPerAccount() {
	for range models.DefaultKeyLimit {
		s.mustCreate(s.newKey(acct))
	}
	s.NoError(s.store.Create(s.ctx, s.newKey(models.Account{Branch: acct.Branch, Number: acct.Number + 1}), models.DefaultLimitPolicy()))
	s.NoError(s.store.Create(s.ctx, s.newKey(models.Account{Branch: acct.Branch + 1, Number: acct.Number}), models.DefaultLimitPolicy()))
}

// TestConcurrentCreateSameValue verifies exactly one of many racing creates
// for one key value wins.
func (s *contractSuite) TestConcurrentCreateSameValue() {
	const goroutines = 20
	value := "race@example.com"

	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := s.newKey(models.Account{Branch: 1, Number: i + 1})
			k.KeyValue = value
			err := s.store.Create(s.ctx, k, models.DefaultLimitPolicy())
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

// TestConcurrentCreateSameAccount verifies racing creates on one account never
// exceed the cap.
func (s *contractSuite) TestConcurrentCreateSameAccount() {
	const goroutines = 20

	var wg sync.WaitGroup
	var success, limited atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(s.ctx, s.newKey(acct), models.DefaultLimitPolicy())
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, sentinel.ErrLimitReached):
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(models.DefaultKeyLimit), success.Load())
	s.Equal(int32(goroutines-models.DefaultKeyLimit), limited.Load())
	n, err := s.store.CountActiveByAccount(s.ctx, acct)
	s.Require().NoError(err)
	s.Equal(models.DefaultKeyLimit, n)
}

func (s *contractSuite) TestExecute() {
	s.Run("validation failure leaves the record unchanged", func() {
		key := s.newKey(acct)
		s.mustCreate(key)
		sentinelErr := errors.New("rejected")

		_, err := s.store.Execute(s.ctx, key.ID, models.DefaultLimitPolicy(),
			func(*models.PixKey) error { return sentinelErr },
			func(k *models.PixKey) { k.Owner.FirstName = "Never" },
		)
		s.ErrorIs(err, sentinelErr)

		found, err := s.store.FindByID(s.ctx, key.ID)
		s.Require().NoError(err)
		s.Equal("Maria", found.Owner.FirstName)
	})

	s.Run("mutation is persisted", func() {
		key := s.newKey(acct)
		s.mustCreate(key)

		updated, err := s.store.Execute(s.ctx, key.ID, models.DefaultLimitPolicy(),
			func(k *models.PixKey) error { return k.CanAmend() },
			func(k *models.PixKey) {
				k.ApplyAmendment(models.Amendment{
					AccountType:    models.Ptr(models.AccountTypeSavings),
					Branch:         models.Ptr(42),
					OwnerFirstName: models.Ptr("Joana"),
					OwnerLastName:  models.Ptr(""),
				})
			},
		)
		s.Require().NoError(err)
		s.Equal(42, updated.Account.Branch)

		found, err := s.store.FindByID(s.ctx, key.ID)
		s.Require().NoError(err)
		s.Equal(models.AccountTypeSavings, found.AccountType)
		s.Equal(models.Account{Branch: 42, Number: acct.Number}, found.Account)
		s.Equal(models.Owner{FirstName: "Joana"}, found.Owner)
		s.Equal(key.CreatedAt, found.CreatedAt)
		s.Nil(found.DeactivatedAt)
	})

	s.Run("moving into a full account is refused under the lock", func() {
		full := models.Account{Branch: 77, Number: 7700}
		for range models.DefaultKeyLimit {
			s.mustCreate(s.newKey(full))
		}
		mover := s.newKey(models.Account{Branch: 77, Number: 7701})
		s.mustCreate(mover)

		_, err := s.store.Execute(s.ctx, mover.ID, models.DefaultLimitPolicy(),
			func(k *models.PixKey) error { return k.CanAmend() },
			func(k *models.PixKey) { k.ApplyAmendment(models.Amendment{AccountNumber: models.Ptr(full.Number)}) },
		)
		s.ErrorIs(err, sentinel.ErrLimitReached)

		found, err := s.store.FindByID(s.ctx, mover.ID)
		s.Require().NoError(err)
		s.Equal(7701, found.Account.Number)
		n, err := s.store.CountActiveByAccount(s.ctx, full)
		s.Require().NoError(err)
		s.Equal(models.DefaultKeyLimit, n)

		// an amendment that keeps the account is not charged again
		_, err = s.store.Execute(s.ctx, mover.ID, models.LimitPolicy{Max: 1},
			func(k *models.PixKey) error { return k.CanAmend() },
			func(k *models.PixKey) { k.Owner.LastName = "Costa" },
		)
		s.NoError(err)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.Execute(s.ctx, id.NewPixKeyID(), models.DefaultLimitPolicy(),
			func(*models.PixKey) error { return nil },
			func(*models.PixKey) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestSaveAndDelete() {
	key := s.newKey(acct)
	s.mustCreate(key)

	key.Owner.LastName = "Souza"
	s.Require().NoError(s.store.Save(s.ctx, key))
	found, err := s.store.FindByID(s.ctx, key.ID)
	s.Require().NoError(err)
	s.Equal("Souza", found.Owner.LastName)

	s.ErrorIs(s.store.Save(s.ctx, s.newKey(acct)), sentinel.ErrNotFound)

	s.Require().NoError(s.store.DeleteByID(s.ctx, key.ID))
	_, err = s.store.FindByKeyValue(s.ctx, key.KeyValue)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.DeleteByID(s.ctx, key.ID), sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, key, models.DefaultLimitPolicy()), "purged value can be registered again")
}

func ids(keys []*models.PixKey) []id.PixKeyID {
	out := make([]id.PixKeyID, len(keys))
	for i, k := range keys {
		out[i] = k.ID
	}
	return out
}

func (s *contractSuite) TestFilters() {
	other := models.Account{Branch: 1, Number: 2}
	a := s.newKey(acct)
	b := s.newKey(acct)
	b.KeyType = models.KeyTypePhone
	b.KeyValue = "+5511987654321"
	b.Owner.FirstName = "JOÃO"
	c := s.newKey(other)
	c.Owner.FirstName = "MARIANA"
	d := s.newKey(other)
	d.Owner.FirstName = "50%_off"
	for _, k := range []*models.PixKey{d, c, b, a} {
		s.mustCreate(k)
	}
	s.deactivate(c.ID, s.base.Add(2*time.Hour))

	s.Run("no predicate returns everything ordered by creation", func() {
		got, err := s.store.FindByFilters(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{a.ID, b.ID, c.ID, d.ID}, ids(got))
	})

	s.Run("predicates combine with AND", func() {
		got, err := s.store.FindByFilters(s.ctx, models.Filter{
			KeyType: models.Ptr(models.KeyTypeEmail),
			Branch:  models.Ptr(acct.Branch),
		})
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{a.ID}, ids(got))
	})

	s.Run("no match is an empty result", func() {
		got, err := s.store.FindByFilters(s.ctx, models.Filter{KeyValue: models.Ptr("ghost@example.com")})
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})

	s.Run("created after is inclusive", func() {
		got, err := s.store.FindByFilters(s.ctx, models.Filter{CreatedAfter: &c.CreatedAt})
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{c.ID, d.ID}, ids(got))
	})

	s.Run("deactivated after excludes active keys", func() {
		got, err := s.store.FindByFilters(s.ctx, models.Filter{DeactivatedAfter: &s.base})
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{c.ID}, ids(got))
	})

	s.Run("convenience lookups", func() {
		byType, err := s.store.FindByType(s.ctx, models.KeyTypePhone)
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{b.ID}, ids(byType))

		byAccount, err := s.store.FindByAccount(s.ctx, other)
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{c.ID, d.ID}, ids(byAccount))

		byOwner, err := s.store.FindByOwnerName(s.ctx, "mari")
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{a.ID, c.ID}, ids(byOwner))

		for _, name := range []string{"JOÃO", "joão", "João", "ÃO"} {
			accented, err := s.store.FindByOwnerName(s.ctx, name)
			s.Require().NoError(err)
			s.Equal([]id.PixKeyID{b.ID}, ids(accented), "owner search for %q folds non-ASCII letters", name)
		}

		literal, err := s.store.FindByOwnerName(s.ctx, "%_")
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{d.ID}, ids(literal), "LIKE wildcards are matched literally")

		created, err := s.store.FindByCreatedBetween(s.ctx, a.CreatedAt, c.CreatedAt)
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{a.ID, b.ID}, ids(created), "end bound is exclusive")

		deactivated, err := s.store.FindByDeactivatedBetween(s.ctx, s.base.Add(2*time.Hour), s.base.Add(3*time.Hour))
		s.Require().NoError(err)
		s.Equal([]id.PixKeyID{c.ID}, ids(deactivated))
	})
}
