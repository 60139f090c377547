// Package handler exposes the administrator slot over HTTP: a public read
// and the signer-authenticated transfer and renounce operations.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/transport/http/shared"
	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

// Service is the authority surface the handler delegates to.
type Service interface {
	Administrator(ctx context.Context) (domain.Address, error)
	TransferAdministrator(ctx context.Context, newAdmin domain.Address) error
	RenounceAdministrator(ctx context.Context) error
}

type Handler struct {
	authority Service
	logger    *slog.Logger
}

func New(authority Service, logger *slog.Logger) *Handler {
	return &Handler{authority: authority, logger: logger}
}

// RegisterPublic mounts the administrator read.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/admin", h.handleGet)
}

// RegisterProtected mounts the administrator mutations.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/v1/admin/transfer", h.handleTransfer)
	r.Post("/v1/admin/renounce", h.handleRenounce)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	admin, err := h.authority.Administrator(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]domain.Address{"administrator": admin})
}

type transferRequest struct {
	NewAdministrator domain.Address `json:"new_administrator"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.authority.TransferAdministrator(r.Context(), req.NewAdministrator); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenounce(w http.ResponseWriter, r *http.Request) {
	if err := h.authority.RenounceAdministrator(r.Context()); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.WarnContext(r.Context(), "administrator renounced over http",
		"request_id", requestcontext.RequestID(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}
