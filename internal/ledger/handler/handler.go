// Package handler exposes the token ledger over HTTP: ownership and
// supply queries publicly, transfers, burns, and approvals behind the
// signer token.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soulbound/internal/ledger/models"
	"soulbound/internal/transport/http/shared"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/requestcontext"
)

// Service is the ledger surface the handler delegates to.
type Service interface {
	GetToken(ctx context.Context, id domain.TokenID) (models.Token, error)
	OwnerOf(ctx context.Context, id domain.TokenID) (domain.Address, error)
	BalanceOf(ctx context.Context, addr domain.Address) (uint64, error)
	TotalIssued(ctx context.Context) (uint64, error)
	TransferFrom(ctx context.Context, from, to domain.Address, id domain.TokenID) error
	SafeTransferFrom(ctx context.Context, from, to domain.Address, id domain.TokenID) error
	Burn(ctx context.Context, id domain.TokenID) error
	Approve(ctx context.Context, id domain.TokenID, spender domain.Address) error
	SetApprovalForAll(ctx context.Context, operator domain.Address, approved bool) error
	ApprovedFor(ctx context.Context, id domain.TokenID) (domain.Address, error)
	IsOperatorFor(ctx context.Context, owner, operator domain.Address) (bool, error)
}

// Locators resolves the token locator shown alongside ownership.
type Locators interface {
	TokenLocator(ctx context.Context, id domain.TokenID) (string, error)
}

type Handler struct {
	ledger   Service
	locators Locators
	logger   *slog.Logger
}

func New(ledger Service, locators Locators, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, locators: locators, logger: logger}
}

// RegisterPublic mounts the unauthenticated query routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/tokens/{id}", h.handleGetToken)
	r.Get("/v1/tokens/{id}/owner", h.handleOwner)
	r.Get("/v1/tokens/{id}/approved", h.handleApproved)
	r.Get("/v1/addresses/{addr}/balance", h.handleBalance)
	r.Get("/v1/addresses/{addr}/operators/{operator}", h.handleIsOperator)
	r.Get("/v1/supply", h.handleSupply)
}

// RegisterProtected mounts the signer-authenticated mutation routes.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/v1/tokens/{id}/transfer", h.handleTransfer(false))
	r.Post("/v1/tokens/{id}/safe-transfer", h.handleTransfer(true))
	r.Post("/v1/tokens/{id}/burn", h.handleBurn)
	r.Post("/v1/tokens/{id}/approve", h.handleApprove)
	r.Post("/v1/operators", h.handleSetOperator)
}

type tokenResponse struct {
	ID       domain.TokenID `json:"id"`
	Owner    domain.Address `json:"owner"`
	MintedAt time.Time      `json:"minted_at"`
	Locator  string         `json:"locator,omitempty"`
}

func (h *Handler) handleGetToken(w http.ResponseWriter, r *http.Request) {
	id, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	token, err := h.ledger.GetToken(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	locator, err := h.locators.TokenLocator(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, tokenResponse{
		ID:       token.ID,
		Owner:    token.Owner,
		MintedAt: token.MintedAt.UTC(),
		Locator:  locator,
	})
}

func (h *Handler) handleOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	owner, err := h.ledger.OwnerOf(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]domain.Address{"owner": owner})
}

func (h *Handler) handleApproved(w http.ResponseWriter, r *http.Request) {
	id, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	spender, err := h.ledger.ApprovedFor(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]domain.Address{"approved": spender})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "addr")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	balance, err := h.ledger.BalanceOf(r.Context(), addr)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (h *Handler) handleIsOperator(w http.ResponseWriter, r *http.Request) {
	owner, err := pathAddress(r, "addr")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	operator, err := pathAddress(r, "operator")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ok, err := h.ledger.IsOperatorFor(r.Context(), owner, operator)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"approved": ok})
}

func (h *Handler) handleSupply(w http.ResponseWriter, r *http.Request) {
	total, err := h.ledger.TotalIssued(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"total_issued": total})
}

type transferRequest struct {
	From domain.Address `json:"from"`
	To   domain.Address `json:"to"`
}

func (h *Handler) handleTransfer(safe bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathTokenID(r)
		if err != nil {
			shared.WriteError(w, err)
			return
		}

		var req transferRequest
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.WriteError(w, err)
			return
		}

		if safe {
			err = h.ledger.SafeTransferFrom(r.Context(), req.From, req.To, id)
		} else {
			err = h.ledger.TransferFrom(r.Context(), req.From, req.To, id)
		}
		if err != nil {
			h.logger.WarnContext(r.Context(), "transfer rejected",
				"token_id", id,
				"reason", dErrors.ReasonOf(err),
				"request_id", requestcontext.RequestID(r.Context()),
			)
			shared.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	id, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.Burn(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type approveRequest struct {
	Approved domain.Address `json:"approved"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req approveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.Approve(r.Context(), id, req.Approved); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type operatorRequest struct {
	Operator domain.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

func (h *Handler) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.SetApprovalForAll(r.Context(), req.Operator, req.Approved); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathTokenID(r *http.Request) (domain.TokenID, error) {
	id, err := domain.ParseTokenID(chi.URLParam(r, "id"))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid token id")
	}
	return id, nil
}

func pathAddress(r *http.Request, param string) (domain.Address, error) {
	addr, err := domain.ParseAddress(chi.URLParam(r, param))
	if err != nil {
		return domain.ZeroAddress, dErrors.New(dErrors.CodeBadRequest, "invalid address")
	}
	return addr, nil
}
