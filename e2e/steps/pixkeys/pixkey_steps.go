package pixkeys

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	DELETE(path string) error
	GET(path string, headers map[string]string) error
	Status() int
	GetResponseField(field string) (any, error)
	Account() (int, int)
	RememberKey(alias, keyID, value string)
	KeyID(alias string) (string, error)
	KeyValue(alias string) (string, error)
}

// RegisterSteps registers PIX key lifecycle and query steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &pixKeySteps{tc: tc}

	ctx.Step(`^I register a new (cpf|email|phone) key as "([^"]*)"$`, steps.registerKey)
	ctx.Step(`^I register (\d+) new email keys$`, steps.registerEmailKeys)
	ctx.Step(`^I register a key of type "([^"]*)" with value "([^"]*)"$`, steps.registerRaw)
	ctx.Step(`^I register the value of "([^"]*)" again on another account$`, steps.registerDuplicate)
	ctx.Step(`^I fetch key "([^"]*)"$`, steps.fetchKey)
	ctx.Step(`^I fetch key "([^"]*)" filtering by type "([^"]*)"$`, steps.fetchKeyWithFilter)
	ctx.Step(`^I amend key "([^"]*)" setting owner first name "([^"]*)"$`, steps.amendOwner)
	ctx.Step(`^I deactivate key "([^"]*)"$`, steps.deactivateKey)
	ctx.Step(`^I search keys by the value of "([^"]*)"$`, steps.searchByValue)
	ctx.Step(`^I list the keys of my account$`, steps.listAccount)
}

type pixKeySteps struct {
	tc TestContext
}

func randomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rand.IntN(10))
	}
	b[0] = '1' + byte(rand.IntN(9))
	return string(b)
}

func randomValue(keyType string) string {
	switch keyType {
	case "cpf":
		return randomDigits(11)
	case "phone":
		return "+55" + randomDigits(2) + randomDigits(9)
	default:
		return "e2e." + randomDigits(12) + "@example.com"
	}
}

func (s *pixKeySteps) create(keyType, value string) error {
	branch, account := s.tc.Account()
	return s.tc.POST("/pix/keys", map[string]any{
		"key_type":         keyType,
		"key_value":        value,
		"account_type":     "checking",
		"branch":           branch,
		"account":          account,
		"owner_first_name": "Maria",
	})
}

func (s *pixKeySteps) registerKey(_ context.Context, keyType, alias string) error {
	value := randomValue(keyType)
	if err := s.create(keyType, value); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("expected 201 registering %s key, got %d", keyType, s.tc.Status())
	}
	keyID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.RememberKey(alias, fmt.Sprint(keyID), value)
	return nil
}

func (s *pixKeySteps) registerEmailKeys(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := s.registerKey(ctx, "email", fmt.Sprintf("email-%d", i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *pixKeySteps) registerRaw(_ context.Context, keyType, value string) error {
	return s.create(keyType, value)
}

func (s *pixKeySteps) registerDuplicate(_ context.Context, alias string) error {
	value, err := s.tc.KeyValue(alias)
	if err != nil {
		return err
	}
	branch, account := s.tc.Account()
	return s.tc.POST("/pix/keys", map[string]any{
		"key_type":         "cpf",
		"key_value":        value,
		"account_type":     "savings",
		"branch":           branch%9999 + 1,
		"account":          account%99999999 + 1,
		"owner_first_name": "Joao",
	})
}

func (s *pixKeySteps) fetchKey(_ context.Context, alias string) error {
	keyID, err := s.tc.KeyID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/pix/keys/"+keyID, nil)
}

func (s *pixKeySteps) fetchKeyWithFilter(_ context.Context, alias, keyType string) error {
	keyID, err := s.tc.KeyID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/pix/keys/"+keyID+"?type="+url.QueryEscape(keyType), nil)
}

func (s *pixKeySteps) amendOwner(_ context.Context, alias, name string) error {
	keyID, err := s.tc.KeyID(alias)
	if err != nil {
		return err
	}
	return s.tc.PUT("/pix/keys/"+keyID, map[string]any{"owner_first_name": name})
}

func (s *pixKeySteps) deactivateKey(_ context.Context, alias string) error {
	keyID, err := s.tc.KeyID(alias)
	if err != nil {
		return err
	}
	return s.tc.DELETE("/pix/keys/" + keyID)
}

func (s *pixKeySteps) searchByValue(_ context.Context, alias string) error {
	value, err := s.tc.KeyValue(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/pix/keys?value="+url.QueryEscape(value), nil)
}

func (s *pixKeySteps) listAccount(_ context.Context) error {
	branch, account := s.tc.Account()
	return s.tc.GET(fmt.Sprintf("/pix/accounts/%d/%d/keys", branch, account), nil)
}
