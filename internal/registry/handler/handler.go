// Package handler exposes token locators over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/transport/http/shared"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Service is the locator surface the handler delegates to.
type Service interface {
	BaseLocator(ctx context.Context) (string, error)
	TokenLocator(ctx context.Context, id domain.TokenID) (string, error)
	SetBaseLocator(ctx context.Context, base string) error
}

type Handler struct {
	locators Service
	logger   *slog.Logger
}

func New(locators Service, logger *slog.Logger) *Handler {
	return &Handler{locators: locators, logger: logger}
}

// RegisterPublic mounts the locator reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/tokens/{id}/locator", h.handleTokenLocator)
	r.Get("/v1/config/base-locator", h.handleBaseLocator)
}

// RegisterProtected mounts the administrator configuration route.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Put("/v1/config/base-locator", h.handleSetBaseLocator)
}

func (h *Handler) handleTokenLocator(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid token id"))
		return
	}

	locator, err := h.locators.TokenLocator(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"locator": locator})
}

func (h *Handler) handleBaseLocator(w http.ResponseWriter, r *http.Request) {
	base, err := h.locators.BaseLocator(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"base_locator": base})
}

type setBaseRequest struct {
	BaseLocator string `json:"base_locator"`
}

func (h *Handler) handleSetBaseLocator(w http.ResponseWriter, r *http.Request) {
	var req setBaseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.locators.SetBaseLocator(r.Context(), req.BaseLocator); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
