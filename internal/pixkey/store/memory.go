package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	"pixkeys/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded key store. Every value handed in or out is a
// copy, so callers can never mutate stored state without going through the
// store.
type InMemory struct {
	mu      sync.RWMutex
	keys    map[id.PixKeyID]*models.PixKey
	byValue map[string]id.PixKeyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		keys:    make(map[id.PixKeyID]*models.PixKey),
		byValue: make(map[string]id.PixKeyID),
	}
}

// Create inserts key if its value is free and the account is under the cap.
// Both checks and the insert happen under the write lock.
func (s *InMemory) Create(_ context.Context, key *models.PixKey, policy models.LimitPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byValue[key.KeyValue]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if !policy.Allows(s.countLocked(key.Account, policy)) {
		return sentinel.ErrLimitReached
	}
	s.keys[key.ID] = key.Clone()
	s.byValue[key.KeyValue] = key.ID
	return nil
}

func (s *InMemory) Save(_ context.Context, key *models.PixKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.keys[key.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.KeyValue != key.KeyValue {
		if _, taken := s.byValue[key.KeyValue]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byValue, existing.KeyValue)
		s.byValue[key.KeyValue] = key.ID
	}
	s.keys[key.ID] = key.Clone()
	return nil
}

// Execute runs validate then mutate on a copy under the write lock and stores
// the copy only when validation passes and, for a key moved to another
// account, the target account is under policy.
func (s *InMemory) Execute(_ context.Context, keyID id.PixKeyID, policy models.LimitPolicy, validate func(*models.PixKey) error, mutate func(*models.PixKey)) (*models.PixKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.keys[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := existing.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	if working.Account != existing.Account && !policy.Allows(s.countLocked(working.Account, policy)) {
		return nil, sentinel.ErrLimitReached
	}
	s.keys[keyID] = working
	return working.Clone(), nil
}

// countLocked counts the keys policy charges to account. Callers hold mu.
func (s *InMemory) countLocked(account models.Account, policy models.LimitPolicy) int {
	count := 0
	for _, k := range s.keys {
		if k.Account == account && policy.Counts(k) {
			count++
		}
	}
	return count
}

func (s *InMemory) DeleteByID(_ context.Context, keyID id.PixKeyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.keys[keyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byValue, existing.KeyValue)
	delete(s.keys, keyID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, keyID id.PixKeyID) (*models.PixKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[keyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return k.Clone(), nil
}

func (s *InMemory) FindByKeyValue(_ context.Context, value string) (*models.PixKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyID, ok := s.byValue[value]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.keys[keyID].Clone(), nil
}

func (s *InMemory) FindByType(ctx context.Context, keyType models.KeyType) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{KeyType: &keyType})
}

func (s *InMemory) FindByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{Branch: &account.Branch, Account: &account.Number})
}

func (s *InMemory) FindByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{OwnerName: &name})
}

func (s *InMemory) FindByCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{CreatedAfter: &start, CreatedBefore: &end})
}

func (s *InMemory) FindByDeactivatedBetween(ctx context.Context, start, end time.Time) ([]*models.PixKey, error) {
	return s.FindByFilters(ctx, models.Filter{DeactivatedAfter: &start, DeactivatedBefore: &end})
}

// FindByFilters returns copies of every key matching f, oldest first.
func (s *InMemory) FindByFilters(_ context.Context, f models.Filter) ([]*models.PixKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.PixKey, 0)
	for _, k := range s.keys {
		if f.Matches(k) {
			out = append(out, k.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) CountActiveByAccount(_ context.Context, account models.Account) (int, error) {
	return s.count(account, models.DefaultLimitPolicy()), nil
}

func (s *InMemory) CountByAccount(_ context.Context, account models.Account) (int, error) {
	return s.count(account, models.LimitPolicy{CountInactive: true}), nil
}

func (s *InMemory) count(account models.Account, policy models.LimitPolicy) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, k := range s.keys {
		if k.Account == account && policy.Counts(k) {
			n++
		}
	}
	return n
}

// sortByCreation orders keys by creation time, breaking ties by id.
func sortByCreation(keys []*models.PixKey) {
	slices.SortFunc(keys, func(a, b *models.PixKey) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
