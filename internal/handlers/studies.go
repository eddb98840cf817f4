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

type studyRepository interface {
	Create(ctx context.Context, s *models.Study) error
	List(ctx context.Context) ([]*models.Study, error)
	GetWithRelations(ctx context.Context, id int64) (*models.Study, error)
	Update(ctx context.Context, s *models.Study) error
	Delete(ctx context.Context, id int64) error
}

type resourceLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Resource, error)
}

type scheduleLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
}

type guideLookup interface {
	GetWithSteps(ctx context.Context, id int64) (*models.Guide, error)
}

type stepMaterializer interface {
	EnsureSteps(ctx context.Context, sessionID, guideID int64) error
}

type StudyHandler struct {
	studies   studyRepository
	resources resourceLookup
	schedules scheduleLookup
	guides    guideLookup
	sessions  stepMaterializer
	log       *logger.Logger
}

func NewStudyHandler(
	studies studyRepository,
	resources resourceLookup,
	schedules scheduleLookup,
	guides guideLookup,
	sessions stepMaterializer,
	log *logger.Logger,
) *StudyHandler {
	return &StudyHandler{
		studies:   studies,
		resources: resources,
		schedules: schedules,
		guides:    guides,
		sessions:  sessions,
		log:       log,
	}
}

func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid study ID", "Study ID must be a valid number"))
		return
	}

	study, err := h.studies.GetWithRelations(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Study not found", fmt.Sprintf("Study with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch study", "study_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch study", errorDetails(err)))
		return
	}

	// Sessions loaded without steps get them from the study's guide, then
	// the study is re-read so the response carries the new rows.
	created := false
	for _, sess := range study.Sessions {
		if !needsMaterialization(sess, study) {
			continue
		}
		if err := h.sessions.EnsureSteps(r.Context(), sess.ID, *study.GuideID); err != nil {
			h.log.Error("failed to materialize session steps", "session_id", sess.ID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch study", errorDetails(err)))
			return
		}
		created = true
	}

	if created {
		study, err = h.studies.GetWithRelations(r.Context(), id)
		if err != nil {
			h.log.Error("failed to fetch study", "study_id", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch study", errorDetails(err)))
			return
		}
	}

	writeJSON(w, http.StatusOK, study)
}

func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	studies, err := h.studies.List(r.Context())
	if err != nil {
		h.log.Error("failed to fetch studies", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch studies", errorDetails(err)))
		return
	}
	writeJSON(w, http.StatusOK, studies)
}

type studyRequest struct {
	Name       *string `json:"name"`
	ScheduleID *int64  `json:"scheduleId"`
	ResourceID *int64  `json:"resourceId"`
	GuideID    *int64  `json:"guideId"`
}

// validateStudyRequest runs the shared field and reference checks for study
// create/update. It writes the error response itself and reports whether the
// request may proceed.
func (h *StudyHandler) validateStudyRequest(ctx context.Context, w http.ResponseWriter, req *studyRequest) bool {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("Name is required", "Name must be a non-empty string"))
		return false
	}
	if req.ResourceID == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Resource ID is required", "Resource ID must be provided"))
		return false
	}

	if _, err := h.resources.GetByID(ctx, *req.ResourceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Resource not found", fmt.Sprintf("Resource with ID %d does not exist", *req.ResourceID)))
			return false
		}
		h.log.Error("failed to look up resource", "resource_id", *req.ResourceID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to save study", errorDetails(err)))
		return false
	}

	if req.ScheduleID != nil {
		if _, err := h.schedules.GetByID(ctx, *req.ScheduleID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, errorResp("Schedule not found", fmt.Sprintf("Schedule with ID %d does not exist", *req.ScheduleID)))
				return false
			}
			h.log.Error("failed to look up schedule", "schedule_id", *req.ScheduleID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to save study", errorDetails(err)))
			return false
		}
	}

	if req.GuideID != nil {
		if _, err := h.guides.GetWithSteps(ctx, *req.GuideID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, errorResp("Guide not found", fmt.Sprintf("Guide with ID %d does not exist", *req.GuideID)))
				return false
			}
			h.log.Error("failed to look up guide", "guide_id", *req.GuideID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to save study", errorDetails(err)))
			return false
		}
	}

	return true
}

func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}

	if !h.validateStudyRequest(r.Context(), w, &req) {
		return
	}

	study := &models.Study{
		Name:       strings.TrimSpace(*req.Name),
		ScheduleID: req.ScheduleID,
		ResourceID: *req.ResourceID,
		GuideID:    req.GuideID,
	}
	if err := h.studies.Create(r.Context(), study); err != nil {
		h.log.Error("failed to create study", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create study", errorDetails(err)))
		return
	}

	created, err := h.studies.GetWithRelations(r.Context(), study.ID)
	if err != nil {
		h.log.Error("failed to fetch created study", "study_id", study.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create study", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *StudyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid study ID", "Study ID must be a valid number"))
		return
	}

	var req studyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}

	if !h.validateStudyRequest(r.Context(), w, &req) {
		return
	}

	study := &models.Study{
		ID:         id,
		Name:       strings.TrimSpace(*req.Name),
		ScheduleID: req.ScheduleID,
		ResourceID: *req.ResourceID,
		GuideID:    req.GuideID,
	}
	if err := h.studies.Update(r.Context(), study); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Study not found", fmt.Sprintf("Study with ID %d does not exist", id)))
			return
		}
		h.log.Error("failed to update study", "study_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update study", errorDetails(err)))
		return
	}

	updated, err := h.studies.GetWithRelations(r.Context(), id)
	if err != nil {
		h.log.Error("failed to fetch updated study", "study_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update study", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid study ID", "Study ID must be a valid number"))
		return
	}

	err = h.studies.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Study not found", fmt.Sprintf("Study with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete study", "study_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete study", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
