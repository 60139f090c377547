// Package handler exposes the skill catalog and per-token attribute
// values over HTTP. Reads are public; catalog and value mutations sit
// behind the signer token and the administrator gate in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"soulbound/internal/skills/models"
	"soulbound/internal/transport/http/shared"
	"soulbound/pkg/domain"
	dErrors "soulbound/pkg/domain-errors"
)

// Service is the skills surface the handler delegates to.
type Service interface {
	Skill(ctx context.Context, id domain.SkillID) (models.Skill, error)
	Skills(ctx context.Context) ([]models.Skill, error)
	SkillValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID) (*uint256.Int, error)
	AddSkill(ctx context.Context, name string) (models.Skill, error)
	AddSkills(ctx context.Context, names []string) ([]models.Skill, error)
	EditSkill(ctx context.Context, id domain.SkillID, name string) error
	EditSkillValue(ctx context.Context, tokenID domain.TokenID, skillID domain.SkillID, amount *uint256.Int) error
}

type Handler struct {
	skills Service
	logger *slog.Logger
}

func New(skills Service, logger *slog.Logger) *Handler {
	return &Handler{skills: skills, logger: logger}
}

// RegisterPublic mounts the unauthenticated query routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/skills", h.handleList)
	r.Get("/v1/skills/{id}", h.handleGet)
	r.Get("/v1/tokens/{id}/skills/{skillID}", h.handleValue)
}

// RegisterProtected mounts the administrator mutation routes.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/v1/skills", h.handleAdd)
	r.Put("/v1/skills/{id}", h.handleEdit)
	r.Put("/v1/tokens/{id}/skills/{skillID}", h.handleSetValue)
}

type skillResponse struct {
	ID   domain.SkillID `json:"id"`
	Name string         `json:"name"`
}

func toSkillResponse(skill models.Skill) skillResponse {
	return skillResponse{ID: skill.ID, Name: skill.Name}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	skills, err := h.skills.Skills(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]skillResponse, 0, len(skills))
	for _, skill := range skills {
		out = append(out, toSkillResponse(skill))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"skills": out,
		"count":  len(out),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathSkillID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	skill, err := h.skills.Skill(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSkillResponse(skill))
}

func (h *Handler) handleValue(w http.ResponseWriter, r *http.Request) {
	tokenID, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	skillID, err := pathSkillID(r, "skillID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	amount, err := h.skills.SkillValue(r.Context(), tokenID, skillID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"value": amount.Dec()})
}

// addRequest accepts a single name or a batch; exactly one must be set.
type addRequest struct {
	Name  string   `json:"name,omitempty"`
	Names []string `json:"names,omitempty"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	switch {
	case req.Name != "" && len(req.Names) == 0:
		skill, err := h.skills.AddSkill(r.Context(), req.Name)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusCreated, toSkillResponse(skill))

	case req.Name == "" && len(req.Names) > 0:
		skills, err := h.skills.AddSkills(r.Context(), req.Names)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		out := make([]skillResponse, 0, len(skills))
		for _, skill := range skills {
			out = append(out, toSkillResponse(skill))
		}
		shared.WriteJSON(w, http.StatusCreated, map[string]any{"skills": out})

	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "exactly one of name or names is required"))
	}
}

type editRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathSkillID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req editRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.skills.EditSkill(r.Context(), id, req.Name); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setValueRequest struct {
	Value string `json:"value"`
}

func (h *Handler) handleSetValue(w http.ResponseWriter, r *http.Request) {
	tokenID, err := pathTokenID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	skillID, err := pathSkillID(r, "skillID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setValueRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	amount, err := uint256.FromDecimal(req.Value)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid skill value"))
		return
	}

	if err := h.skills.EditSkillValue(r.Context(), tokenID, skillID, amount); err != nil {
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

func pathSkillID(r *http.Request, param string) (domain.SkillID, error) {
	id, err := domain.ParseSkillID(chi.URLParam(r, param))
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid skill id")
	}
	return id, nil
}
