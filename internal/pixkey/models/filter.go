package models

import (
	"strings"
	"time"

	dErrors "pixkeys/pkg/domain-errors"
)

// Filter is a set of optional predicates over PIX keys. Present predicates are
// combined with AND; nil fields are wildcards.
//
// CreatedAfter and DeactivatedAfter are inclusive lower bounds and may not be
// used together. CreatedBefore and DeactivatedBefore are exclusive upper bounds
// used by the range lookups; OwnerName matches the owner's first name as a
// case-insensitive substring.
type Filter struct {
	KeyType          *KeyType
	KeyValue         *string
	Branch           *int
	Account          *int
	CreatedAfter     *time.Time
	DeactivatedAfter *time.Time

	CreatedBefore     *time.Time
	DeactivatedBefore *time.Time
	OwnerName         *string
}

// IsEmpty reports whether no predicate is present.
func (f Filter) IsEmpty() bool {
	return f.KeyType == nil && f.KeyValue == nil && f.Branch == nil && f.Account == nil &&
		f.CreatedAfter == nil && f.DeactivatedAfter == nil &&
		f.CreatedBefore == nil && f.DeactivatedBefore == nil && f.OwnerName == nil
}

// Validate enforces the filter contract: at least one predicate, and at most
// one of the creation/deactivation date families.
func (f Filter) Validate() error {
	if f.IsEmpty() {
		return dErrors.New(dErrors.CodeEmptyFilterSet, "at least one filter must be provided")
	}
	created := f.CreatedAfter != nil || f.CreatedBefore != nil
	deactivated := f.DeactivatedAfter != nil || f.DeactivatedBefore != nil
	if created && deactivated {
		return dErrors.New(dErrors.CodeConflictingDateFilters, "creation and deactivation date filters cannot be combined")
	}
	return nil
}

// Matches evaluates every present predicate against k.
func (f Filter) Matches(k *PixKey) bool {
	if f.KeyType != nil && k.KeyType != *f.KeyType {
		return false
	}
	if f.KeyValue != nil && k.KeyValue != *f.KeyValue {
		return false
	}
	if f.Branch != nil && k.Account.Branch != *f.Branch {
		return false
	}
	if f.Account != nil && k.Account.Number != *f.Account {
		return false
	}
	if f.CreatedAfter != nil && k.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && !k.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if f.DeactivatedAfter != nil && (k.DeactivatedAt == nil || k.DeactivatedAt.Before(*f.DeactivatedAfter)) {
		return false
	}
	if f.DeactivatedBefore != nil && (k.DeactivatedAt == nil || !k.DeactivatedAt.Before(*f.DeactivatedBefore)) {
		return false
	}
	if f.OwnerName != nil && !strings.Contains(FoldName(k.Owner.FirstName), FoldName(*f.OwnerName)) {
		return false
	}
	return true
}

// FoldName is the case folding owner-name search applies to both the stored
// name and the search text. Stores that search in SQL persist the folded form
// rather than relying on the database's LOWER, which on SQLite is ASCII only.
func FoldName(s string) string {
	return strings.ToLower(s)
}

// DayBounds returns [start of day, start of next day) for t in UTC.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Ptr returns a pointer to v; handy when building filters and amendments.
func Ptr[T any](v T) *T {
	return &v
}
