package models

// DefaultKeyLimit caps the keys counted against a single account.
const DefaultKeyLimit = 5

// LimitPolicy decides which keys count toward an account's cap.
//
// The default counts only active keys, so deactivating a key frees a slot.
// With CountInactive set, every key ever registered to the account counts.
type LimitPolicy struct {
	Max           int
	CountInactive bool
}

// DefaultLimitPolicy is active-only, capped at DefaultKeyLimit.
func DefaultLimitPolicy() LimitPolicy {
	return LimitPolicy{Max: DefaultKeyLimit}
}

// Allows reports whether one more key fits given the current count.
func (p LimitPolicy) Allows(count int) bool {
	return count < p.Max
}

// Counts reports whether k is counted against its account under p.
func (p LimitPolicy) Counts(k *PixKey) bool {
	return p.CountInactive || k.IsActive()
}
