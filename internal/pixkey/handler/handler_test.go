package handler_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	jwttoken "pixkeys/internal/jwt_token"
	"pixkeys/internal/pixkey/events"
	"pixkeys/internal/pixkey/handler"
	"pixkeys/internal/pixkey/service"
	"pixkeys/internal/pixkey/store"
	authmw "pixkeys/pkg/platform/middleware/auth"
	request "pixkeys/pkg/platform/middleware/request"
	"pixkeys/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	recorder *events.Recorder
	clock    time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	st := store.NewInMemory()
	s.recorder = events.NewRecorder()
	logger := slog.New(slog.DiscardHandler)

	engine, err := service.NewEngine(st, service.WithLogger(logger), service.WithPublisher(s.recorder))
	s.Require().NoError(err)
	resolver, err := service.NewResolver(st, service.WithLogger(logger))
	s.Require().NoError(err)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	handler.New(engine, resolver, logger).Register(r)
	s.router = r
	s.clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func cpfBody(value string, branch, account int) map[string]any {
	return map[string]any{
		"key_type":         "cpf",
		"key_value":        value,
		"account_type":     "checking",
		"branch":           branch,
		"account":          account,
		"owner_first_name": "Maria",
	}
}

func (s *HandlerSuite) create(body map[string]any) *httptest.ResponseRecorder {
	s.clock = s.clock.Add(time.Second)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/pix/keys", body)
	return testutil.DoRequest(s.router, testutil.WithRequestTime(req, s.clock))
}

func (s *HandlerSuite) mustCreate(body map[string]any) handler.KeyResponse {
	rr := s.create(body)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	return *testutil.UnmarshalResponse[handler.KeyResponse](s.T(), rr)
}

func (s *HandlerSuite) TestCreate() {
	s.Run("registers a key", func() {
		resp := s.mustCreate(cpfBody("12345678909", 1, 1001))

		s.NotEmpty(resp.ID)
		s.Equal("cpf", resp.KeyType)
		s.Equal("12345678909", resp.KeyValue)
		s.True(resp.Active)
		s.Nil(resp.DeactivatedAt)
		s.Empty(resp.OwnerLastName)
		s.Len(s.recorder.Events(), 1)
	})

	s.Run("duplicate value is unprocessable", func() {
		rr := s.create(cpfBody("12345678909", 2, 2002))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "duplicate_key")
	})

	s.Run("invalid type is unprocessable", func() {
		body := cpfBody("abc", 1, 1001)
		body["key_type"] = "random"
		rr := s.create(body)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "invalid_key_type")
	})

	s.Run("invalid format is unprocessable", func() {
		rr := s.create(cpfBody("1234567890", 1, 1001))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "invalid_key_format")
	})

	s.Run("request validation is a bad request", func() {
		body := cpfBody("98765432100", 0, 1001)
		rr := s.create(body)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed json is a bad request", func() {
		req := httptest.NewRequest(http.MethodPost, "/pix/keys", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestLimitPerAccount() {
	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"}
	for _, e := range emails {
		body := cpfBody(e, 7, 777)
		body["key_type"] = "email"
		s.mustCreate(body)
	}

	body := cpfBody("f@x.com", 7, 777)
	body["key_type"] = "email"
	rr := s.create(body)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "limit_exceeded")
}

func (s *HandlerSuite) TestAmend() {
	key := s.mustCreate(cpfBody("12345678909", 1, 1001))

	s.Run("updates mutable fields", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/pix/keys/"+key.ID, map[string]any{
			"owner_first_name": "Ana",
			"owner_last_name":  "Souza",
		})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		resp := testutil.UnmarshalResponse[handler.KeyResponse](s.T(), rr)
		s.Equal("Ana", resp.OwnerFirstName)
		s.Equal("Souza", resp.OwnerLastName)
		s.Equal(key.CreatedAt, resp.CreatedAt)
	})

	s.Run("key value cannot change", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/pix/keys/"+key.ID, map[string]any{
			"key_value": "98765432100",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown key is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/pix/keys/"+uuid.NewString(), map[string]any{
			"owner_first_name": "Ana",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/pix/keys/not-a-uuid", map[string]any{
			"owner_first_name": "Ana",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestDeactivate() {
	key := s.mustCreate(cpfBody("12345678909", 1, 1001))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/pix/keys/"+key.ID))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	resp := testutil.UnmarshalResponse[handler.KeyResponse](s.T(), rr)
	s.False(resp.Active)
	s.Require().NotNil(resp.DeactivatedAt)

	s.Run("second deactivation is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/pix/keys/"+key.ID))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "already_inactive")
	})

	s.Run("inactive key cannot be amended", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/pix/keys/"+key.ID, map[string]any{
			"owner_first_name": "Ana",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "inactive_key")
	})

	s.Run("value stays taken", func() {
		rr := s.create(cpfBody("12345678909", 3, 3003))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "duplicate_key")
	})
}

func (s *HandlerSuite) TestGet() {
	key := s.mustCreate(cpfBody("12345678909", 1, 1001))

	s.Run("by id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys/"+key.ID))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal(key, *testutil.UnmarshalResponse[handler.KeyResponse](s.T(), rr))
	})

	s.Run("active key omits deactivated_at", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys/"+key.ID))
		s.NotContains(rr.Body.String(), "deactivated_at")
	})

	s.Run("id combined with filters", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys/"+key.ID+"?type=cpf"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "invalid_filter_combination")
	})

	s.Run("unknown id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys/"+uuid.NewString()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestSearch() {
	s.mustCreate(cpfBody("12345678909", 1, 1001))
	email := cpfBody("maria@example.com", 1, 1001)
	email["key_type"] = "email"
	s.mustCreate(email)
	s.mustCreate(cpfBody("98765432100", 2, 2002))

	s.Run("filters are combined with AND", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys?type=cpf&branch=1&account=1001"))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		list := testutil.UnmarshalResponse[handler.KeyListResponse](s.T(), rr)
		s.Require().Equal(1, list.Count)
		s.Equal("12345678909", list.Keys[0].KeyValue)
	})

	s.Run("results ordered by creation", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys?type=cpf"))
		list := testutil.UnmarshalResponse[handler.KeyListResponse](s.T(), rr)
		s.Require().Equal(2, list.Count)
		s.Equal("12345678909", list.Keys[0].KeyValue)
		s.Equal("98765432100", list.Keys[1].KeyValue)
	})

	s.Run("no match is not found", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys?type=phone"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("no filters", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "empty_filter_set")
	})

	s.Run("conflicting date filters", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
			"/pix/keys?created_after=2024-01-01&deactivated_after=2024-01-01"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "conflicting_date_filters")
	})

	s.Run("by owner name", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/keys/by-owner?name=ARI"))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal(3, testutil.UnmarshalResponse[handler.KeyListResponse](s.T(), rr).Count)
	})

	s.Run("by account", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/accounts/1/1001/keys"))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal(2, testutil.UnmarshalResponse[handler.KeyListResponse](s.T(), rr).Count)
	})

	s.Run("empty account is an empty list", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/pix/accounts/9/9/keys"))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal(0, testutil.UnmarshalResponse[handler.KeyListResponse](s.T(), rr).Count)
	})
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	st := store.NewInMemory()
	engine, err := service.NewEngine(st)
	if err != nil {
		t.Fatal(err)
	}
	resolver, err := service.NewResolver(st)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.DiscardHandler)
	tokens := jwttoken.NewJWTService("secret", "pixkeys")
	auth := authmw.RequireAuth(jwttoken.NewJWTServiceAdapter(tokens), logger)

	r := chi.NewRouter()
	handler.New(engine, resolver, logger, handler.WithAuth(auth)).Register(r)

	testutil.Given(t, "no bearer token", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/pix/keys", cpfBody("12345678909", 1, 1)))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	testutil.Given(t, "a valid bearer token", func(t *testing.T) {
		token, err := tokens.IssueToken("ops", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/pix/keys", cpfBody("12345678909", 1, 1))
		req.Header.Set("Authorization", "Bearer "+token)

		testutil.Then(t, "the key is created", func(t *testing.T) {
			testutil.AssertStatus(t, testutil.DoRequest(r, req), http.StatusCreated)
		})
	})

	testutil.Given(t, "a read request without token", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/pix/accounts/1/1/keys"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}
