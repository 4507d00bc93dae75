package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
	"pixkeys/pkg/platform/httputil"
	request "pixkeys/pkg/platform/middleware/request"
)

// Engine is the write side consumed by the handler.
type Engine interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.PixKey, error)
	Amend(ctx context.Context, keyID id.PixKeyID, change models.Amendment) (*models.PixKey, error)
	Deactivate(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error)
}

// Resolver is the read side consumed by the handler.
type Resolver interface {
	ByID(ctx context.Context, keyID id.PixKeyID, others models.Filter) (*models.PixKey, error)
	ByFilters(ctx context.Context, filter models.Filter) ([]*models.PixKey, error)
	ByOwnerName(ctx context.Context, name string) ([]*models.PixKey, error)
	ByAccount(ctx context.Context, account models.Account) ([]*models.PixKey, error)
}

// Handler serves the PIX key HTTP API.
type Handler struct {
	logger   *slog.Logger
	engine   Engine
	resolver Resolver
	auth     func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithAuth guards the mutating routes with mw.
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.auth = mw
	}
}

func New(engine Engine, resolver Resolver, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{logger: logger, engine: engine, resolver: resolver}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the PIX key routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/pix", func(r chi.Router) {
		r.Get("/keys", h.handleSearch)
		r.Get("/keys/by-owner", h.handleByOwner)
		r.Get("/keys/{id}", h.handleGet)
		r.Get("/accounts/{branch}/{account}/keys", h.handleByAccount)

		r.Group(func(r chi.Router) {
			if h.auth != nil {
				r.Use(h.auth)
			}
			r.Post("/keys", h.handleCreate)
			r.Put("/keys/{id}", h.handleAmend)
			r.Delete("/keys/{id}", h.handleDeactivate)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateKeyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, err := h.engine.Create(ctx, req.Command())
	if err != nil {
		h.logFailure(ctx, "create pix key", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toKeyResponse(key))
}

func (h *Handler) handleAmend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	keyID, err := id.ParsePixKeyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AmendKeyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, err := h.engine.Amend(ctx, keyID, req.Amendment())
	if err != nil {
		h.logFailure(ctx, "amend pix key", err, "key_id", keyID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyResponse(key))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyID, err := id.ParsePixKeyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	key, err := h.engine.Deactivate(ctx, keyID)
	if err != nil {
		h.logFailure(ctx, "deactivate pix key", err, "key_id", keyID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyResponse(key))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyID, err := id.ParsePixKeyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	others, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	key, err := h.resolver.ByID(ctx, keyID, others)
	if err != nil {
		h.logFailure(ctx, "get pix key", err, "key_id", keyID.String())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyResponse(key))
}

// handleSearch answers 404 when nothing matches, unlike the other list
// endpoints which return an empty list.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	keys, err := h.resolver.ByFilters(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "search pix keys", err)
		httputil.WriteError(w, err)
		return
	}
	if len(keys) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no pix keys match the given filters"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyListResponse(keys))
}

func (h *Handler) handleByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := h.resolver.ByOwnerName(ctx, r.URL.Query().Get("name"))
	if err != nil {
		h.logFailure(ctx, "search pix keys by owner", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyListResponse(keys))
}

func (h *Handler) handleByAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := parseAccountPath(chi.URLParam(r, "branch"), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	keys, err := h.resolver.ByAccount(ctx, account)
	if err != nil {
		h.logFailure(ctx, "list pix keys by account", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toKeyListResponse(keys))
}

// logFailure logs rejected requests at warn and server faults at error.
func (h *Handler) logFailure(ctx context.Context, action string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", request.GetRequestID(ctx))
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "failed to "+action, attrs...)
		return
	}
	h.logger.WarnContext(ctx, action+" rejected", attrs...)
}
