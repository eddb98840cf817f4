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

type SelectionHandler struct {
	selections *repository.SelectionRepo
	log        *logger.Logger
}

func NewSelectionHandler(selections *repository.SelectionRepo, log *logger.Logger) *SelectionHandler {
	return &SelectionHandler{selections: selections, log: log}
}

func (h *SelectionHandler) List(w http.ResponseWriter, r *http.Request) {
	selections, err := h.selections.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch selections", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch selections", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, selections)
}

func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid selection ID", "Selection ID must be a valid number"))
		return
	}

	selection, err := h.selections.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Selection not found", fmt.Sprintf("Selection with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch selection", "selection_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch selection", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, selection)
}

func (h *SelectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       *string `json:"name"`
		ResourceID *int64  `json:"resourceId"`
		Reference  *string `json:"reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Name is required", "Name must be a non-empty string"))
		return
	}

	selection := &models.Selection{
		Name:       strings.TrimSpace(*req.Name),
		ResourceID: req.ResourceID,
		Reference:  req.Reference,
	}
	if err := h.selections.Create(r.Context(), selection); err != nil {
		h.log.Error("failed to create selection", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create selection", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, selection)
}

func (h *SelectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid selection ID", "Selection ID must be a valid number"))
		return
	}

	err = h.selections.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Selection not found", fmt.Sprintf("Selection with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete selection", "selection_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete selection", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
