package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/models"
)

type fakeSessionStepStore struct {
	step *models.SessionStep
}

func (f *fakeSessionStepStore) UpdateStepInsights(ctx context.Context, id int64, insights *string) (*models.SessionStep, error) {
	if f.step == nil || f.step.ID != id {
		return nil, pgx.ErrNoRows
	}
	f.step.Insights = insights
	return f.step, nil
}

func newSessionStepRouter(h *SessionStepHandler) http.Handler {
	r := chi.NewRouter()
	r.Put("/api/session-steps/{id}", h.Update)
	return r
}

func TestUpdateSessionStep_RecordsInsights(t *testing.T) {
	store := &fakeSessionStepStore{step: &models.SessionStep{ID: 4, SessionID: 1, GuideStepID: 10}}
	router := newSessionStepRouter(NewSessionStepHandler(store, testLogger(t)))

	req := httptest.NewRequest(http.MethodPut, "/api/session-steps/4", strings.NewReader(`{"insights":"verse 12 stood out"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var got models.SessionStep
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode session step: %v", err)
	}
	if got.Insights == nil || *got.Insights != "verse 12 stood out" {
		t.Errorf("Expected recorded insights, got %v", got.Insights)
	}
}

func TestUpdateSessionStep_ClearsInsights(t *testing.T) {
	prior := "old note"
	store := &fakeSessionStepStore{step: &models.SessionStep{ID: 4, SessionID: 1, GuideStepID: 10, Insights: &prior}}
	router := newSessionStepRouter(NewSessionStepHandler(store, testLogger(t)))

	req := httptest.NewRequest(http.MethodPut, "/api/session-steps/4", strings.NewReader(`{"insights":null}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if store.step.Insights != nil {
		t.Errorf("Expected insights cleared, got %q", *store.step.Insights)
	}
}

func TestUpdateSessionStep_NotFound(t *testing.T) {
	store := &fakeSessionStepStore{}
	router := newSessionStepRouter(NewSessionStepHandler(store, testLogger(t)))

	req := httptest.NewRequest(http.MethodPut, "/api/session-steps/77", strings.NewReader(`{"insights":"x"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}
