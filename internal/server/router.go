// Package server собирает HTTP маршрутизацию сервиса хранения обходов.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/patrolkeeper/internal/server/handlers"
	"github.com/iudanet/patrolkeeper/internal/server/middleware"
	"github.com/iudanet/patrolkeeper/internal/server/storage"
)

// Storage объединяет хранилища, которые нужны всем обработчикам
type Storage interface {
	storage.RoundStorage
	storage.VerificationStorage
	storage.OccurrenceStorage
}

// NewRouter создает chi-маршрутизатор со всеми эндпоинтами сервиса.
// ping опционален и используется health check для проверки хранилища.
func NewRouter(logger *slog.Logger, store Storage, ping func() error) http.Handler {
	patrol := handlers.NewPatrolHandler(logger, store, store, store)
	sync := handlers.NewSyncHandler(logger, store, store, store)
	health := handlers.NewHealthHandler(logger, ping)

	r := chi.NewRouter()
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingWithSkip(logger, []string{"/api/v1/health"}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.Health)

		r.Post("/sync", sync.HandleSync)

		r.Route("/rounds", func(r chi.Router) {
			r.Post("/", patrol.CreateRound)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", patrol.GetRound)
				r.Put("/", patrol.UpdateRound)
				r.Post("/finish", patrol.FinishRound)
				r.Get("/checkpoints", patrol.ListVerifications)
			})
		})

		r.Post("/checkpoints", patrol.CreateVerification)

		r.Route("/occurrences", func(r chi.Router) {
			r.Post("/", patrol.CreateOccurrence)
			r.Get("/{id}", patrol.GetOccurrence)
		})
	})

	return r
}
