package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// TestContext carries one scenario's HTTP state against a running server.
type TestContext struct {
	baseURL string
	token   string
	client  *http.Client

	lastStatus int
	lastBody   []byte

	account [2]int
	keys    map[string]string
	values  map[string]string
}

func NewTestContext(baseURL, token string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		keys:    map[string]string{},
		values:  map[string]string{},
	}
}

// Reset clears per-scenario state and picks an account no earlier run used,
// so scenarios stay independent against a long-lived server.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.keys = map[string]string{}
	tc.values = map[string]string{}
	tc.account = [2]int{1 + rand.IntN(9999), 1 + rand.IntN(99999999)}
}

func (tc *TestContext) Account() (int, int) { return tc.account[0], tc.account[1] }

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" && method != http.MethodGet {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(path string, body any) error { return tc.do(http.MethodPost, path, body, nil) }

func (tc *TestContext) PUT(path string, body any) error { return tc.do(http.MethodPut, path, body, nil) }

func (tc *TestContext) DELETE(path string) error { return tc.do(http.MethodDelete, path, nil, nil) }

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) Status() int { return tc.lastStatus }

// GetResponseField returns a top-level field of the last JSON object response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}

func (tc *TestContext) RememberKey(alias, keyID, value string) {
	tc.keys[alias] = keyID
	tc.values[alias] = value
}

func (tc *TestContext) KeyID(alias string) (string, error) {
	keyID, ok := tc.keys[alias]
	if !ok {
		return "", fmt.Errorf("no key remembered as %q", alias)
	}
	return keyID, nil
}

func (tc *TestContext) KeyValue(alias string) (string, error) {
	v, ok := tc.values[alias]
	if !ok {
		return "", fmt.Errorf("no key remembered as %q", alias)
	}
	return v, nil
}
