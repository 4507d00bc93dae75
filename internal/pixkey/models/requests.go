package models

import "strings"

// CreateRequest is the command to register a new key. Key type is kept as the
// caller's raw string so an unknown type surfaces as InvalidKeyType from the
// engine rather than as a decoding failure.
type CreateRequest struct {
	KeyType     string
	KeyValue    string
	AccountType AccountType
	Account     Account
	Owner       Owner
}

// Normalize trims surrounding whitespace from free-text fields.
func (r *CreateRequest) Normalize() {
	r.KeyType = strings.ToLower(strings.TrimSpace(r.KeyType))
	r.KeyValue = strings.TrimSpace(r.KeyValue)
	r.Owner.FirstName = strings.TrimSpace(r.Owner.FirstName)
	r.Owner.LastName = strings.TrimSpace(r.Owner.LastName)
}
