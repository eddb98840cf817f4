package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
)

type sessionStepRepository interface {
	UpdateStepInsights(ctx context.Context, id int64, insights *string) (*models.SessionStep, error)
}

// SessionStepHandler covers the one mutation session steps support:
// recording insights while walking through a guide.
type SessionStepHandler struct {
	steps sessionStepRepository
	log   *logger.Logger
}

func NewSessionStepHandler(steps sessionStepRepository, log *logger.Logger) *SessionStepHandler {
	return &SessionStepHandler{steps: steps, log: log}
}

func (h *SessionStepHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid session step ID", "Session step ID must be a valid number"))
		return
	}

	var req struct {
		Insights *string `json:"insights"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}

	step, err := h.steps.UpdateStepInsights(r.Context(), id, req.Insights)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Session step not found", fmt.Sprintf("Session step with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to update session step", "session_step_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update session step", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, step)
}
