package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
)

type scheduleRepository interface {
	Create(ctx context.Context, s *models.Schedule) error
	List(ctx context.Context) ([]*models.Schedule, error)
	GetWithStudies(ctx context.Context, id int64) (*models.Schedule, error)
	Update(ctx context.Context, s *models.Schedule) error
	Delete(ctx context.Context, id int64) error
}

type ScheduleHandler struct {
	schedules scheduleRepository
	log       *logger.Logger
}

func NewScheduleHandler(schedules scheduleRepository, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, log: log}
}

type scheduleRequest struct {
	Day              *string `json:"day"`
	TimeStart        *string `json:"timeStart"`
	Repeats          *string `json:"repeats"`
	Starts           *string `json:"starts"`
	Ends             *string `json:"ends"`
	ExcludeDayOfWeek *string `json:"excludeDayOfWeek"`
	ExcludeDate      *string `json:"excludeDate"`
}

func validateScheduleRequest(w http.ResponseWriter, req *scheduleRequest) bool {
	if req.Day == nil || strings.TrimSpace(*req.Day) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Day is required", "Day must be a non-empty string"))
		return false
	}
	if req.TimeStart == nil || strings.TrimSpace(*req.TimeStart) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Time start is required", "Time start must be a non-empty string"))
		return false
	}
	if req.Repeats == nil || strings.TrimSpace(*req.Repeats) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Repeats is required", "Repeats must be a non-empty string"))
		return false
	}
	return true
}

func scheduleFromRequest(req *scheduleRequest) *models.Schedule {
	return &models.Schedule{
		Day:              strings.TrimSpace(*req.Day),
		TimeStart:        strings.TrimSpace(*req.TimeStart),
		Repeats:          strings.TrimSpace(*req.Repeats),
		Starts:           parseDate(req.Starts),
		Ends:             parseDate(req.Ends),
		ExcludeDayOfWeek: req.ExcludeDayOfWeek,
		ExcludeDate:      parseDate(req.ExcludeDate),
	}
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid schedule ID", "Schedule ID must be a valid number"))
		return
	}

	schedule, err := h.schedules.GetWithStudies(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Schedule not found", fmt.Sprintf("Schedule with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch schedule", "schedule_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch schedule", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.schedules.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch schedules", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch schedules", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if !validateScheduleRequest(w, &req) {
		return
	}

	schedule := scheduleFromRequest(&req)
	if err := h.schedules.Create(r.Context(), schedule); err != nil {
		h.log.Error("failed to create schedule", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create schedule", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid schedule ID", "Schedule ID must be a valid number"))
		return
	}

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}
	if !validateScheduleRequest(w, &req) {
		return
	}

	schedule := scheduleFromRequest(&req)
	schedule.ID = id
	if err := h.schedules.Update(r.Context(), schedule); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Schedule not found", fmt.Sprintf("Schedule with ID %d does not exist", id)))
			return
		}
		h.log.Error("failed to update schedule", "schedule_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update schedule", errorDetails(err)))
		return
	}

	updated, err := h.schedules.GetWithStudies(r.Context(), id)
	if err != nil {
		h.log.Error("failed to fetch updated schedule", "schedule_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update schedule", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid schedule ID", "Schedule ID must be a valid number"))
		return
	}

	err = h.schedules.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Schedule not found", fmt.Sprintf("Schedule with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete schedule", "schedule_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete schedule", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
