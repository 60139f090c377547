// Package handler exposes the mint endpoint and the signing helpers. Mint
// is public: its authorization is the authority signature inside the
// payload, not a bearer token.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"soulbound/internal/crypto"
	"soulbound/internal/issuance/codec"
	"soulbound/internal/issuance/service"
	"soulbound/internal/ledger/models"
	"soulbound/internal/transport/http/shared"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
	"soulbound/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks

// Service is the issuance surface the handler delegates to.
type Service interface {
	Mint(ctx context.Context, req service.MintRequest) (models.Token, error)
}

type Handler struct {
	issuance Service
	logger   *slog.Logger
}

func New(issuance Service, logger *slog.Logger) *Handler {
	return &Handler{issuance: issuance, logger: logger}
}

// RegisterPublic mounts the mint and signing-helper routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/v1/tokens/mint", h.handleMint)
	r.Post("/v1/crypto/message-hash", h.handleMessageHash)
	r.Post("/v1/crypto/verify", h.handleVerify)
}

// mintRequest is the wire form of a mint. Skill values travel as decimal
// strings since they are 256-bit words; the signature is the 65-byte
// [R || S || V] blob in hex.
type mintRequest struct {
	Recipient   domain.Address `json:"recipient"`
	SkillIDs    []uint64       `json:"skill_ids"`
	SkillValues []string       `json:"skill_values"`
	Signature   string         `json:"signature"`
}

type mintResponse struct {
	TokenID domain.TokenID `json:"token_id"`
	Owner   domain.Address `json:"owner"`
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	sig, err := crypto.ParseSignatureHex(req.Signature)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	ids, values, err := parseSkills(req.SkillIDs, req.SkillValues)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	token, err := h.issuance.Mint(r.Context(), service.MintRequest{
		Recipient:   req.Recipient,
		SkillIDs:    ids,
		SkillValues: values,
		Signature:   sig,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "mint rejected",
			"recipient", req.Recipient,
			"reason", dErrors.ReasonOf(err),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, mintResponse{
		TokenID: token.ID,
		Owner:   token.Owner,
	})
}

type messageHashRequest struct {
	Recipient   domain.Address `json:"recipient"`
	SkillIDs    []uint64       `json:"skill_ids"`
	SkillValues []string       `json:"skill_values"`
}

type messageHashResponse struct {
	Digest     domain.Hash `json:"digest"`
	SignedHash domain.Hash `json:"signed_hash"`
}

// handleMessageHash computes the digest an authority must sign for a
// given payload, so signing tooling does not reimplement the encoding.
func (h *Handler) handleMessageHash(w http.ResponseWriter, r *http.Request) {
	var req messageHashRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	ids, values, err := parseSkills(req.SkillIDs, req.SkillValues)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if len(ids) != len(values) {
		shared.WriteError(w, service.ErrSkillArityMismatch)
		return
	}

	shared.WriteJSON(w, http.StatusOK, messageHashResponse{
		Digest:     codec.MessageDigest(req.Recipient, ids, values),
		SignedHash: codec.SignedHash(req.Recipient, ids, values),
	})
}

type verifyRequest struct {
	Hash   domain.Hash    `json:"hash"`
	V      byte           `json:"v"`
	R      domain.Hash    `json:"r"`
	S      domain.Hash    `json:"s"`
	Signer domain.Address `json:"signer"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	valid := crypto.Verify(req.Hash, crypto.NewSignature(req.V, req.R, req.S), req.Signer)
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func parseSkills(rawIDs []uint64, rawValues []string) ([]domain.SkillID, []*uint256.Int, error) {
	ids := make([]domain.SkillID, len(rawIDs))
	for i, id := range rawIDs {
		ids[i] = domain.SkillID(id)
	}
	values := make([]*uint256.Int, len(rawValues))
	for i, raw := range rawValues {
		v, err := uint256.FromDecimal(raw)
		if err != nil {
			return nil, nil, dErrors.New(dErrors.CodeBadRequest, "invalid skill value")
		}
		values[i] = v
	}
	return ids, values, nil
}
