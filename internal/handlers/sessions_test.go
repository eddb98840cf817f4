package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/models"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// twoStepGuide mirrors the canonical fixture: guide #1 with steps
// "Read" (index 0) and "Reflect" (index 1).
func twoStepGuide() *models.Guide {
	return &models.Guide{
		ID:   1,
		Name: "Inductive Method",
		GuideSteps: []*models.GuideStep{
			{ID: 10, GuideID: 1, Name: "Read", Index: 0},
			{ID: 11, GuideID: 1, Name: "Reflect", Index: 1},
		},
	}
}

// fakeSessionStore backs the session handler with in-memory state. Reads
// always re-derive nested steps from the store so a re-fetch after
// materialization observes new rows, like the real repo does.
type fakeSessionStore struct {
	study    *models.Study
	sessions []*models.Session
	steps    map[int64][]*models.SessionStep

	nextSessionID int64
	nextStepID    int64
	listCalls     int
	ensureCalls   int
	ensureErr     error
}

func newFakeSessionStore(study *models.Study) *fakeSessionStore {
	return &fakeSessionStore{study: study, steps: map[int64][]*models.SessionStep{}}
}

func (f *fakeSessionStore) addSession(s *models.Session) *models.Session {
	f.nextSessionID++
	s.ID = f.nextSessionID
	f.sessions = append(f.sessions, s)
	return s
}

func (f *fakeSessionStore) view(s *models.Session) *models.Session {
	cp := *s
	cp.Study = f.study
	cp.SessionSteps = append([]*models.SessionStep{}, f.steps[s.ID]...)
	return &cp
}

func (f *fakeSessionStore) Create(ctx context.Context, s *models.Session) error {
	f.addSession(s)
	return nil
}

func (f *fakeSessionStore) List(ctx context.Context, studyID *int64) ([]*models.Session, error) {
	f.listCalls++
	out := []*models.Session{}
	for _, s := range f.sessions {
		if studyID != nil && s.StudyID != *studyID {
			continue
		}
		out = append(out, f.view(s))
	}
	return out, nil
}

func (f *fakeSessionStore) GetWithRelations(ctx context.Context, id int64) (*models.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return f.view(s), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) Update(ctx context.Context, s *models.Session) error {
	for _, existing := range f.sessions {
		if existing.ID == s.ID {
			existing.Date = s.Date
			existing.Time = s.Time
			existing.Insights = s.Insights
			existing.Reference = s.Reference
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSessionStore) Delete(ctx context.Context, id int64) error {
	for i, s := range f.sessions {
		if s.ID == id {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSessionStore) EnsureSteps(ctx context.Context, sessionID, guideID int64) error {
	f.ensureCalls++
	if f.ensureErr != nil {
		return f.ensureErr
	}
	if len(f.steps[sessionID]) > 0 {
		return nil
	}
	if f.study == nil || f.study.Guide == nil {
		return nil
	}
	for _, gs := range f.study.Guide.GuideSteps {
		f.nextStepID++
		f.steps[sessionID] = append(f.steps[sessionID], &models.SessionStep{
			ID:          f.nextStepID,
			SessionID:   sessionID,
			GuideStepID: gs.ID,
			GuideStep:   gs,
		})
	}
	return nil
}

type stubStudyLookup struct {
	study *models.Study
}

func (s *stubStudyLookup) GetWithGuide(ctx context.Context, id int64) (*models.Study, error) {
	if s.study == nil || s.study.ID != id {
		return nil, pgx.ErrNoRows
	}
	return s.study, nil
}

type stubGuideStepLookup struct {
	steps map[int64]*models.GuideStep
}

func (s *stubGuideStepLookup) GetStep(ctx context.Context, id int64) (*models.GuideStep, error) {
	if gs, ok := s.steps[id]; ok {
		return gs, nil
	}
	return nil, pgx.ErrNoRows
}

type stubSelectionLookup struct {
	selections map[int64]*models.Selection
}

func (s *stubSelectionLookup) GetByID(ctx context.Context, id int64) (*models.Selection, error) {
	if sel, ok := s.selections[id]; ok {
		return sel, nil
	}
	return nil, pgx.ErrNoRows
}

func guidedStudy() *models.Study {
	guide := twoStepGuide()
	return &models.Study{
		ID:         1,
		Name:       "Romans",
		ResourceID: 1,
		GuideID:    int64Ptr(guide.ID),
		Guide:      guide,
	}
}

func unguidedStudy() *models.Study {
	return &models.Study{ID: 1, Name: "Romans", ResourceID: 1}
}

func newSessionRouter(h *SessionHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/sessions", h.List)
	r.Post("/api/sessions", h.Create)
	r.Get("/api/sessions/{id}", h.Get)
	r.Put("/api/sessions/{id}", h.Update)
	r.Delete("/api/sessions/{id}", h.Delete)
	return r
}

func newSessionHandler(t *testing.T, store *fakeSessionStore, study *models.Study) *SessionHandler {
	guideSteps := map[int64]*models.GuideStep{}
	if study != nil && study.Guide != nil {
		for _, gs := range study.Guide.GuideSteps {
			guideSteps[gs.ID] = gs
		}
	}
	return NewSessionHandler(
		store,
		&stubStudyLookup{study: study},
		&stubGuideStepLookup{steps: guideSteps},
		&stubSelectionLookup{selections: map[int64]*models.Selection{}},
		testLogger(t),
	)
}

func decodeSession(t *testing.T, body *bytes.Buffer) *models.Session {
	t.Helper()
	var s models.Session
	if err := json.NewDecoder(body).Decode(&s); err != nil {
		t.Fatalf("failed to decode session response: %v", err)
	}
	return &s
}

func TestNeedsMaterialization(t *testing.T) {
	guided := guidedStudy()
	emptyGuideStudy := &models.Study{
		ID: 1, ResourceID: 1, GuideID: int64Ptr(2),
		Guide: &models.Guide{ID: 2, GuideSteps: []*models.GuideStep{}},
	}

	tests := []struct {
		name     string
		session  *models.Session
		study    *models.Study
		expected bool
	}{
		{"empty session, guided study", &models.Session{ID: 1}, guided, true},
		{"session already has steps", &models.Session{ID: 1, SessionSteps: []*models.SessionStep{{ID: 5}}}, guided, false},
		{"study has no guide", &models.Session{ID: 1}, unguidedStudy(), false},
		{"guide has zero steps", &models.Session{ID: 1}, emptyGuideStudy, false},
		{"nil study", &models.Session{ID: 1}, nil, false},
		{"nil session", nil, guided, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := needsMaterialization(tc.session, tc.study); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCreateSession_MissingStudyID(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	h := newSessionHandler(t, store, guidedStudy())
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Details != "studyId must be provided" {
		t.Errorf("Expected details 'studyId must be provided', got %q", resp.Details)
	}
	if len(store.sessions) != 0 {
		t.Errorf("Expected no session rows, got %d", len(store.sessions))
	}
}

func TestCreateSession_UnknownStudy(t *testing.T) {
	store := newFakeSessionStore(nil)
	h := newSessionHandler(t, store, nil)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"studyId":42}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Study not found" {
		t.Errorf("Expected error 'Study not found', got %q", resp.Error)
	}
	if !strings.Contains(resp.Details, "42") {
		t.Errorf("Expected details to reference id 42, got %q", resp.Details)
	}
}

func TestCreateSession_UnknownGuideStep(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	h := newSessionHandler(t, store, guidedStudy())
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"studyId":1,"stepId":999}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Guide step not found" {
		t.Errorf("Expected error 'Guide step not found', got %q", resp.Error)
	}
	if !strings.Contains(resp.Details, "999") {
		t.Errorf("Expected details to reference id 999, got %q", resp.Details)
	}
	if len(store.sessions) != 0 {
		t.Errorf("Expected no session created, got %d", len(store.sessions))
	}
}

func TestCreateSession_UnknownSelection(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	h := newSessionHandler(t, store, guidedStudy())
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"studyId":1,"selectionId":7}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Selection not found" {
		t.Errorf("Expected error 'Selection not found', got %q", resp.Error)
	}
	if len(store.sessions) != 0 {
		t.Errorf("Expected no session created, got %d", len(store.sessions))
	}
}

func TestCreateSession_GuidedStudyGetsStepsEagerly(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"studyId":1}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	sess := decodeSession(t, rr.Body)
	if len(sess.SessionSteps) != 2 {
		t.Fatalf("Expected 2 session steps, got %d", len(sess.SessionSteps))
	}
	// Ordered by the guide steps' index, insights empty.
	if sess.SessionSteps[0].GuideStepID != 10 || sess.SessionSteps[1].GuideStepID != 11 {
		t.Errorf("Expected step order [10, 11], got [%d, %d]",
			sess.SessionSteps[0].GuideStepID, sess.SessionSteps[1].GuideStepID)
	}
	for _, ss := range sess.SessionSteps {
		if ss.Insights != nil {
			t.Errorf("Expected null insights on step %d, got %q", ss.ID, *ss.Insights)
		}
	}
}

func TestCreateSession_NoGuideNoSteps(t *testing.T) {
	study := unguidedStudy()
	store := newFakeSessionStore(study)
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"studyId":1}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}
	if store.ensureCalls != 0 {
		t.Errorf("Expected no materialization for unguided study, got %d calls", store.ensureCalls)
	}

	sess := decodeSession(t, rr.Body)
	if len(sess.SessionSteps) != 0 {
		t.Errorf("Expected 0 session steps, got %d", len(sess.SessionSteps))
	}
}

func TestCreateSession_InvalidDateBecomesNull(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	body := `{"studyId":1,"date":"not-a-date","time":"25:99","insights":"good session"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}

	sess := decodeSession(t, rr.Body)
	if sess.Date != nil || sess.Time != nil {
		t.Errorf("Expected invalid date/time stored as null, got %v / %v", sess.Date, sess.Time)
	}
	if sess.Insights == nil || *sess.Insights != "good session" {
		t.Errorf("Expected insights preserved, got %v", sess.Insights)
	}
}

func TestListSessions_MaterializesEmptySessions(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	store.addSession(&models.Session{StudyID: 1})
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions?studyId=1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if store.ensureCalls != 2 {
		t.Errorf("Expected one materialization per empty session, got %d", store.ensureCalls)
	}
	if store.listCalls != 2 {
		t.Errorf("Expected re-read after materialization (2 list calls), got %d", store.listCalls)
	}

	var sessions []*models.Session
	if err := json.NewDecoder(rr.Body).Decode(&sessions); err != nil {
		t.Fatalf("failed to decode sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	for _, sess := range sessions {
		if len(sess.SessionSteps) != 2 {
			t.Errorf("Expected 2 steps on session %d, got %d", sess.ID, len(sess.SessionSteps))
		}
	}
}

func TestListSessions_AlreadyMaterializedIsStable(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	sess := store.addSession(&models.Session{StudyID: 1})
	// Simulate a prior materialization against a one-step version of the
	// guide: later guide edits must not re-sync existing sessions.
	store.steps[sess.ID] = []*models.SessionStep{
		{ID: 100, SessionID: sess.ID, GuideStepID: 10, GuideStep: study.Guide.GuideSteps[0]},
	}
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if store.ensureCalls != 0 {
		t.Errorf("Expected no materialization for populated session, got %d calls", store.ensureCalls)
	}
	if store.listCalls != 1 {
		t.Errorf("Expected single read when nothing was created, got %d", store.listCalls)
	}

	var sessions []*models.Session
	json.NewDecoder(rr.Body).Decode(&sessions)
	if len(sessions) != 1 || len(sessions[0].SessionSteps) != 1 {
		t.Fatalf("Expected the original single step to survive, got %+v", sessions)
	}
}

func TestListSessions_MaterializationFailure(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	store.ensureErr = errors.New("insert failed")
	router := newSessionRouter(newSessionHandler(t, store, study))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	if store.listCalls != 1 {
		t.Errorf("Expected no re-read after failed step creation, got %d list calls", store.listCalls)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to fetch sessions" {
		t.Errorf("Expected error 'Failed to fetch sessions', got %q", resp.Error)
	}
	if resp.Details != "insert failed" {
		t.Errorf("Expected details 'insert failed', got %q", resp.Details)
	}
}

func TestGetSession_MaterializationFailure(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	store.ensureErr = errors.New("insert failed")
	router := newSessionRouter(newSessionHandler(t, store, study))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to fetch session" {
		t.Errorf("Expected error 'Failed to fetch session', got %q", resp.Error)
	}
}

func TestListSessions_NoGuideCreatesNothing(t *testing.T) {
	study := unguidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if store.ensureCalls != 0 {
		t.Errorf("Expected no materialization without a guide, got %d calls", store.ensureCalls)
	}
}

func TestListSessions_InvalidStudyIDFilter(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	h := newSessionHandler(t, store, guidedStudy())
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions?studyId=abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestGetSession_MaterializesOnFirstRead(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	sess := store.addSession(&models.Session{StudyID: 1})
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if store.ensureCalls != 1 {
		t.Errorf("Expected one materialization call, got %d", store.ensureCalls)
	}

	got := decodeSession(t, rr.Body)
	if got.ID != sess.ID || len(got.SessionSteps) != 2 {
		t.Fatalf("Expected session %d with 2 steps, got %d with %d", sess.ID, got.ID, len(got.SessionSteps))
	}
}

func TestGetSession_NotFound(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	h := newSessionHandler(t, store, guidedStudy())
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/99", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestUpdateSession_RoundTrip(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	body := `{"insights":"new understanding","reference":"ch. 3"}`
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/1", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	sess := decodeSession(t, rr.Body)
	if sess.Insights == nil || *sess.Insights != "new understanding" {
		t.Errorf("Expected updated insights, got %v", sess.Insights)
	}
	if sess.Reference == nil || *sess.Reference != "ch. 3" {
		t.Errorf("Expected updated reference, got %v", sess.Reference)
	}
}

func TestDeleteSession(t *testing.T) {
	study := guidedStudy()
	store := newFakeSessionStore(study)
	store.addSession(&models.Session{StudyID: 1})
	h := newSessionHandler(t, store, study)
	router := newSessionRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if len(store.sessions) != 0 {
		t.Errorf("Expected session deleted, %d remain", len(store.sessions))
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	store := newFakeSessionStore(guidedStudy())
	router := newSessionRouter(newSessionHandler(t, store, guidedStudy()))

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/7", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}
