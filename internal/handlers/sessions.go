package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
)

type sessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	List(ctx context.Context, studyID *int64) ([]*models.Session, error)
	GetWithRelations(ctx context.Context, id int64) (*models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id int64) error
	EnsureSteps(ctx context.Context, sessionID, guideID int64) error
}

type sessionStudyLookup interface {
	GetWithGuide(ctx context.Context, id int64) (*models.Study, error)
}

type guideStepLookup interface {
	GetStep(ctx context.Context, id int64) (*models.GuideStep, error)
}

type selectionLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Selection, error)
}

type SessionHandler struct {
	sessions   sessionRepository
	studies    sessionStudyLookup
	guides     guideStepLookup
	selections selectionLookup
	log        *logger.Logger
}

func NewSessionHandler(
	sessions sessionRepository,
	studies sessionStudyLookup,
	guides guideStepLookup,
	selections selectionLookup,
	log *logger.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		studies:    studies,
		guides:     guides,
		selections: selections,
		log:        log,
	}
}

// needsMaterialization reports whether a loaded session should receive step
// rows: it has none yet and the owning study carries a guide with at least
// one step. The check is deliberately at "session has zero steps"
// granularity; a guide edited after first materialization is never
// re-synced.
func needsMaterialization(sess *models.Session, study *models.Study) bool {
	if sess == nil || len(sess.SessionSteps) > 0 {
		return false
	}
	return study != nil && study.Guide != nil && len(study.Guide.GuideSteps) > 0
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var studyID *int64
	if raw := r.URL.Query().Get("studyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("Invalid studyId", "studyId must be a valid number"))
			return
		}
		studyID = &id
	}

	sessions, err := h.sessions.List(r.Context(), studyID)
	if err != nil {
		h.log.Error("failed to fetch sessions", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch sessions", errorDetails(err)))
		return
	}

	// Materialize steps for any session that has none but whose study has a
	// guide, then re-read so responses carry the generated rows.
	created := false
	for _, sess := range sessions {
		if !needsMaterialization(sess, sess.Study) {
			continue
		}
		if err := h.sessions.EnsureSteps(r.Context(), sess.ID, *sess.Study.GuideID); err != nil {
			h.log.Error("failed to materialize session steps", "session_id", sess.ID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch sessions", errorDetails(err)))
			return
		}
		created = true
	}

	if created {
		sessions, err = h.sessions.List(r.Context(), studyID)
		if err != nil {
			h.log.Error("failed to fetch sessions", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch sessions", errorDetails(err)))
			return
		}
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid session ID", "Session ID must be a valid number"))
		return
	}

	sess, err := h.sessions.GetWithRelations(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Session not found", fmt.Sprintf("Session with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to fetch session", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch session", errorDetails(err)))
		return
	}

	if needsMaterialization(sess, sess.Study) {
		if err := h.sessions.EnsureSteps(r.Context(), sess.ID, *sess.Study.GuideID); err != nil {
			h.log.Error("failed to materialize session steps", "session_id", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch session", errorDetails(err)))
			return
		}
		sess, err = h.sessions.GetWithRelations(r.Context(), id)
		if err != nil {
			h.log.Error("failed to fetch session", "session_id", id, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to fetch session", errorDetails(err)))
			return
		}
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudyID     *int64  `json:"studyId"`
		Date        *string `json:"date"`
		Time        *string `json:"time"`
		Insights    *string `json:"insights"`
		Reference   *string `json:"reference"`
		StepID      *int64  `json:"stepId"`
		SelectionID *int64  `json:"selectionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}

	if req.StudyID == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Study ID is required", "studyId must be provided"))
		return
	}

	study, err := h.studies.GetWithGuide(r.Context(), *req.StudyID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Study not found", fmt.Sprintf("Study with ID %d does not exist", *req.StudyID)))
		return
	}
	if err != nil {
		h.log.Error("failed to look up study", "study_id", *req.StudyID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
		return
	}

	if req.StepID != nil {
		if _, err := h.guides.GetStep(r.Context(), *req.StepID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, errorResp("Guide step not found", fmt.Sprintf("Guide step with ID %d does not exist", *req.StepID)))
				return
			}
			h.log.Error("failed to look up guide step", "step_id", *req.StepID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
			return
		}
	}

	if req.SelectionID != nil {
		if _, err := h.selections.GetByID(r.Context(), *req.SelectionID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, errorResp("Selection not found", fmt.Sprintf("Selection with ID %d does not exist", *req.SelectionID)))
				return
			}
			h.log.Error("failed to look up selection", "selection_id", *req.SelectionID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
			return
		}
	}

	sess := &models.Session{
		StudyID:     *req.StudyID,
		Date:        parseDate(req.Date),
		Time:        parseDate(req.Time),
		Insights:    req.Insights,
		Reference:   req.Reference,
		StepID:      req.StepID,
		SelectionID: req.SelectionID,
	}

	if err := h.sessions.Create(r.Context(), sess); err != nil {
		h.log.Error("failed to create session", "study_id", *req.StudyID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
		return
	}

	// Eager materialization: a session for a guided study gets its steps at
	// creation time rather than on first read.
	if study.Guide != nil && len(study.Guide.GuideSteps) > 0 {
		if err := h.sessions.EnsureSteps(r.Context(), sess.ID, *study.GuideID); err != nil {
			h.log.Error("failed to create session steps", "session_id", sess.ID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
			return
		}
	}

	created, err := h.sessions.GetWithRelations(r.Context(), sess.ID)
	if err != nil {
		h.log.Error("failed to fetch created session", "session_id", sess.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to create session", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid session ID", "Session ID must be a valid number"))
		return
	}

	var req struct {
		Date      *string `json:"date"`
		Time      *string `json:"time"`
		Insights  *string `json:"insights"`
		Reference *string `json:"reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", errorDetails(err)))
		return
	}

	sess := &models.Session{
		ID:        id,
		Date:      parseDate(req.Date),
		Time:      parseDate(req.Time),
		Insights:  req.Insights,
		Reference: req.Reference,
	}
	if err := h.sessions.Update(r.Context(), sess); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("Session not found", fmt.Sprintf("Session with ID %d does not exist", id)))
			return
		}
		h.log.Error("failed to update session", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update session", errorDetails(err)))
		return
	}

	updated, err := h.sessions.GetWithRelations(r.Context(), id)
	if err != nil {
		h.log.Error("failed to fetch updated session", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to update session", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid session ID", "Session ID must be a valid number"))
		return
	}

	err = h.sessions.Delete(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("Session not found", fmt.Sprintf("Session with ID %d does not exist", id)))
		return
	}
	if err != nil {
		h.log.Error("failed to delete session", "session_id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Failed to delete session", errorDetails(err)))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
