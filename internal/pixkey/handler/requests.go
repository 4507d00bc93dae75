package handler

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"pixkeys/internal/pixkey/models"
	dErrors "pixkeys/pkg/domain-errors"
)

// MaxKeyValueLength bounds key values at the input layer. The longest
// accepted format is an email of 77 characters.
const MaxKeyValueLength = 77

// CreateKeyRequest is the body of POST /pix/keys.
type CreateKeyRequest struct {
	KeyType        string `json:"key_type"`
	KeyValue       string `json:"key_value"`
	AccountType    string `json:"account_type"`
	Branch         int    `json:"branch"`
	Account        int    `json:"account"`
	OwnerFirstName string `json:"owner_first_name"`
	OwnerLastName  string `json:"owner_last_name"`

	accountType models.AccountType
}

// Validate trims the request and checks presence, sizes and ranges. Key type
// and format are left to the engine so they surface as business errors.
func (r *CreateKeyRequest) Validate() error {
	r.KeyType = strings.TrimSpace(r.KeyType)
	r.KeyValue = strings.TrimSpace(r.KeyValue)
	r.OwnerFirstName = strings.TrimSpace(r.OwnerFirstName)
	r.OwnerLastName = strings.TrimSpace(r.OwnerLastName)

	if r.KeyType == "" {
		return dErrors.New(dErrors.CodeValidation, "key_type is required")
	}
	if r.KeyValue == "" {
		return dErrors.New(dErrors.CodeValidation, "key_value is required")
	}
	if len([]rune(r.KeyValue)) > MaxKeyValueLength {
		return dErrors.New(dErrors.CodeValidation, "key_value must be at most 77 characters")
	}
	accountType, err := models.ParseAccountType(r.AccountType)
	if err != nil {
		return err
	}
	r.accountType = accountType
	if err := (models.Account{Branch: r.Branch, Number: r.Account}).Validate(); err != nil {
		return err
	}
	return models.Owner{FirstName: r.OwnerFirstName, LastName: r.OwnerLastName}.Validate()
}

// Command converts a validated request into the engine's create command.
func (r *CreateKeyRequest) Command() models.CreateRequest {
	return models.CreateRequest{
		KeyType:     r.KeyType,
		KeyValue:    r.KeyValue,
		AccountType: r.accountType,
		Account:     models.Account{Branch: r.Branch, Number: r.Account},
		Owner:       models.Owner{FirstName: r.OwnerFirstName, LastName: r.OwnerLastName},
	}
}

// AmendKeyRequest is the body of PUT /pix/keys/{id}. Absent fields are left
// unchanged. Key type and value are accepted only to reject them explicitly.
type AmendKeyRequest struct {
	KeyType        *string `json:"key_type,omitempty"`
	KeyValue       *string `json:"key_value,omitempty"`
	AccountType    *string `json:"account_type,omitempty"`
	Branch         *int    `json:"branch,omitempty"`
	Account        *int    `json:"account,omitempty"`
	OwnerFirstName *string `json:"owner_first_name,omitempty"`
	OwnerLastName  *string `json:"owner_last_name,omitempty"`

	amendment models.Amendment
}

func (r *AmendKeyRequest) Validate() error {
	if r.KeyType != nil || r.KeyValue != nil {
		return dErrors.New(dErrors.CodeValidation, "key type and value cannot be amended")
	}

	var a models.Amendment
	if r.AccountType != nil {
		t, err := models.ParseAccountType(*r.AccountType)
		if err != nil {
			return err
		}
		a.AccountType = &t
	}
	a.Branch = r.Branch
	a.AccountNumber = r.Account
	if r.OwnerFirstName != nil {
		a.OwnerFirstName = models.Ptr(strings.TrimSpace(*r.OwnerFirstName))
	}
	if r.OwnerLastName != nil {
		a.OwnerLastName = models.Ptr(strings.TrimSpace(*r.OwnerLastName))
	}

	if a.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be amended")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	r.amendment = a
	return nil
}

func (r *AmendKeyRequest) Amendment() models.Amendment {
	return r.amendment
}

var searchParams = map[string]bool{
	"type":              true,
	"value":             true,
	"branch":            true,
	"account":           true,
	"created_after":     true,
	"deactivated_after": true,
	"created_on":        true,
	"deactivated_on":    true,
}

// parseFilter builds a Filter from search query parameters. Unknown
// parameters are rejected so a typo is not silently treated as a wildcard.
func parseFilter(q url.Values) (models.Filter, error) {
	var f models.Filter
	for name := range q {
		if !searchParams[name] {
			return f, dErrors.New(dErrors.CodeBadRequest, "unknown query parameter: "+name)
		}
	}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t, err := models.ParseKeyType(v)
		if err != nil {
			return f, err
		}
		f.KeyType = &t
	}
	if v := strings.TrimSpace(q.Get("value")); v != "" {
		f.KeyValue = &v
	}

	var err error
	if f.Branch, err = intParam(q, "branch"); err != nil {
		return f, err
	}
	if f.Account, err = intParam(q, "account"); err != nil {
		return f, err
	}
	if f.CreatedAfter, err = timeParam(q, "created_after"); err != nil {
		return f, err
	}
	if f.DeactivatedAfter, err = timeParam(q, "deactivated_after"); err != nil {
		return f, err
	}

	createdOn, err := timeParam(q, "created_on")
	if err != nil {
		return f, err
	}
	if createdOn != nil {
		if f.CreatedAfter != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "created_on cannot be combined with created_after")
		}
		start, end := models.DayBounds(*createdOn)
		f.CreatedAfter, f.CreatedBefore = &start, &end
	}
	deactivatedOn, err := timeParam(q, "deactivated_on")
	if err != nil {
		return f, err
	}
	if deactivatedOn != nil {
		if f.DeactivatedAfter != nil {
			return f, dErrors.New(dErrors.CodeBadRequest, "deactivated_on cannot be combined with deactivated_after")
		}
		start, end := models.DayBounds(*deactivatedOn)
		f.DeactivatedAfter, f.DeactivatedBefore = &start, &end
	}
	return f, nil
}

func intParam(q url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return &v, nil
}

// timeParam accepts RFC 3339 timestamps or plain dates (midnight UTC).
func timeParam(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, name+" must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	return &t, nil
}

func parseAccountPath(branch, account string) (models.Account, error) {
	b, err := strconv.Atoi(branch)
	if err != nil {
		return models.Account{}, dErrors.New(dErrors.CodeBadRequest, "branch must be an integer")
	}
	n, err := strconv.Atoi(account)
	if err != nil {
		return models.Account{}, dErrors.New(dErrors.CodeBadRequest, "account must be an integer")
	}
	return models.Account{Branch: b, Number: n}, nil
}
