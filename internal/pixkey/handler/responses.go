package handler

import (
	"time"

	"pixkeys/internal/pixkey/models"
)

// KeyResponse is the wire form of a PIX key. deactivated_at is omitted while
// the key is active; an absent last name is rendered as "".
type KeyResponse struct {
	ID             string  `json:"id"`
	KeyType        string  `json:"key_type"`
	KeyValue       string  `json:"key_value"`
	AccountType    string  `json:"account_type"`
	Branch         int     `json:"branch"`
	Account        int     `json:"account"`
	OwnerFirstName string  `json:"owner_first_name"`
	OwnerLastName  string  `json:"owner_last_name"`
	Active         bool    `json:"active"`
	CreatedAt      string  `json:"created_at"`
	DeactivatedAt  *string `json:"deactivated_at,omitempty"`
}

type KeyListResponse struct {
	Keys  []KeyResponse `json:"keys"`
	Count int           `json:"count"`
}

func toKeyResponse(k *models.PixKey) KeyResponse {
	resp := KeyResponse{
		ID:             k.ID.String(),
		KeyType:        k.KeyType.String(),
		KeyValue:       k.KeyValue,
		AccountType:    k.AccountType.String(),
		Branch:         k.Account.Branch,
		Account:        k.Account.Number,
		OwnerFirstName: k.Owner.FirstName,
		OwnerLastName:  k.Owner.LastName,
		Active:         k.IsActive(),
		CreatedAt:      k.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if k.DeactivatedAt != nil {
		ts := k.DeactivatedAt.UTC().Format(time.RFC3339Nano)
		resp.DeactivatedAt = &ts
	}
	return resp
}

func toKeyListResponse(keys []*models.PixKey) KeyListResponse {
	out := KeyListResponse{Keys: make([]KeyResponse, 0, len(keys)), Count: len(keys)}
	for _, k := range keys {
		out.Keys = append(out.Keys, toKeyResponse(k))
	}
	return out
}
