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

type ResourceHandler struct {
	resources *repository.ResourceRepo
	log       *logger.Logger
}

func NewResourceHandler(resources *repository.ResourceRepo, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, log: log}
}

type resourceRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

func validateResourceRequest(w http.ResponseWriter, req *resourceRequest) bool {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Name is required", "Name must be a non-empty string"))
		return false
	}
	if req.Type == nil || strings.TrimSpace(*req.Type) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Type is required", "Type must be a non-empty string"))
		return false
	}
	return true
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch resources", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch resources", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid resource ID", "Resource ID must be a valid number"))
		return
	}

	resource, err := h.resources.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Resource not found", fmt.Sprintf("Resource with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch resource", "resource_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch resource", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if !validateResourceRequest(w, &req) {
		return
	}

	resource := &models.Resource{
		Name: strings.TrimSpace(*req.Name),
		Type: strings.TrimSpace(*req.Type),
	}
	if err := h.resources.Create(r.Context(), resource); err != nil {
		h.log.Error("failed to create resource", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create resource", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid resource ID", "Resource ID must be a valid number"))
		return
	}

	var req resourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if !validateResourceRequest(w, &req) {
		return
	}

	if _, err := h.resources.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Resource not found", fmt.Sprintf("Resource with ID %d does not exist", id)))
			return
		}
		h.log.Error("failed to fetch resource", "resource_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update resource", errorDetails(err)))
		return
	}

	resource := &models.Resource{
		ID:   id,
		Name: strings.TrimSpace(*req.Name),
		Type: strings.TrimSpace(*req.Type),
	}
	if err := h.resources.Update(r.Context(), resource); err != nil {
		h.log.Error("failed to update resource", "resource_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update resource", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid resource ID", "Resource ID must be a valid number"))
		return
	}

	err = h.resources.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Resource not found", fmt.Sprintf("Resource with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete resource", "resource_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete resource", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
