package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

type GuideHandler struct {
	guides *repository.GuideRepo
	log    *logger.Logger
}

func NewGuideHandler(guides *repository.GuideRepo, log *logger.Logger) *GuideHandler {
	return &GuideHandler{guides: guides, log: log}
}

func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch guides", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch guides", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, guides)
}

func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid guide ID", "Guide ID must be a valid number"))
		return
	}

	guide, err := h.guides.GetWithSteps(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Guide not found", fmt.Sprintf("Guide with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch guide", "guide_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch guide", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, guide)
}

func (h *GuideHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Steps []struct {
			Name         *string `json:"name"`
			Instructions *string `json:"instructions"`
			Example      *string `json:"example"`
		} `json:"steps"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Name is required", "Name must be a non-empty string"))
		return
	}

	guide := &models.Guide{Name: strings.TrimSpace(*req.Name)}
	for i, step := range req.Steps {
		if step.Name == nil || strings.TrimSpace(*step.Name) == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("Step name is required", fmt.Sprintf("Step at position %d must have a non-empty name", i)))
			return
		}
		// Step order in the request body defines each step's index.
		guide.GuideSteps = append(guide.GuideSteps, &models.GuideStep{
			Name:         strings.TrimSpace(*step.Name),
			Instructions: step.Instructions,
			Example:      step.Example,
			Index:        i,
		})
	}

	if err := h.guides.Create(r.Context(), guide); err != nil {
		h.log.Error("failed to create guide", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create guide", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, guide)
}

func (h *GuideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid guide ID", "Guide ID must be a valid number"))
		return
	}

	err = h.guides.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Guide not found", fmt.Sprintf("Guide with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete guide", "guide_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete guide", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
