package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studytrack-backend/internal/handlers"
	"studytrack-backend/internal/logger"
	"studytrack-backend/internal/middleware"
)

func New(
	log *logger.Logger,
	postHandler *handlers.PostHandler,
	resourceHandler *handlers.ResourceHandler,
	scheduleHandler *handlers.ScheduleHandler,
	guideHandler *handlers.GuideHandler,
	selectionHandler *handlers.SelectionHandler,
	studyHandler *handlers.StudyHandler,
	sessionHandler *handlers.SessionHandler,
	sessionStepHandler *handlers.SessionStepHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Post Routes ────
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.Post("/", postHandler.Create)
			r.Put("/{id}", postHandler.Update)
			r.Delete("/{id}", postHandler.Delete)
		})

		// ──── Resource Routes ────
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", resourceHandler.List)
			r.Post("/", resourceHandler.Create)
			r.Get("/{id}", resourceHandler.Get)
			r.Put("/{id}", resourceHandler.Update)
			r.Delete("/{id}", resourceHandler.Delete)
		})

		// ──── Schedule Routes ────
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.List)
			r.Post("/", scheduleHandler.Create)
			r.Get("/{id}", scheduleHandler.Get)
			r.Put("/{id}", scheduleHandler.Update)
			r.Delete("/{id}", scheduleHandler.Delete)
		})

		// ──── Guide Routes ────
		r.Route("/guides", func(r chi.Router) {
			r.Get("/", guideHandler.List)
			r.Post("/", guideHandler.Create)
			r.Get("/{id}", guideHandler.Get)
			r.Delete("/{id}", guideHandler.Delete)
		})

		// ──── Selection Routes ────
		r.Route("/selections", func(r chi.Router) {
			r.Get("/", selectionHandler.List)
			r.Post("/", selectionHandler.Create)
			r.Get("/{id}", selectionHandler.Get)
			r.Delete("/{id}", selectionHandler.Delete)
		})

		// ──── Study Routes ────
		r.Route("/studies", func(r chi.Router) {
			r.Get("/", studyHandler.List)
			r.Post("/", studyHandler.Create)
			r.Get("/{id}", studyHandler.Get)
			r.Put("/{id}", studyHandler.Update)
			r.Delete("/{id}", studyHandler.Delete)
		})

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Post("/", sessionHandler.Create)
			r.Get("/{id}", sessionHandler.Get)
			r.Put("/{id}", sessionHandler.Update)
			r.Delete("/{id}", sessionHandler.Delete)
		})

		// ──── Session Step Routes ────
		r.Route("/session-steps", func(r chi.Router) {
			r.Put("/{id}", sessionStepHandler.Update)
		})
	})

	return r
}
