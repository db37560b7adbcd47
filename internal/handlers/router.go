package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bidfeed/bidfeed-client/internal/engine"
	"github.com/bidfeed/bidfeed-client/internal/services"
)

// HealthChecker reports whether an external collaborator is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter builds the local HTTP presentation boundary
func NewRouter(eng *engine.Engine, submissions *services.SubmissionService, media HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/auctions", GetAuctions(eng))
		r.Post("/auctions", SubmitAuction(submissions))
		r.Post("/auctions/sort", SetSort(eng))
		r.Post("/auctions/page/next", NextPage(eng))
		r.Post("/auctions/page/prev", PrevPage(eng))
		r.Put("/auctions/page", SetPage(eng))
		r.Delete("/auctions/draft", ResetSubmission(submissions))
		r.Get("/notice", GetNotice(eng))
		r.Delete("/notice", DismissNotice(eng))
		r.Get("/closure", GetClosure(eng))
		r.Delete("/closure", DismissClosure(eng))
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if media != nil {
			if err := media.HealthCheck(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"media":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
