package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/PrajwalNP160/major-project-sub001/internal/api"
	"github.com/PrajwalNP160/major-project-sub001/internal/metrics"
	"github.com/PrajwalNP160/major-project-sub001/internal/session"
)

func New(log *zap.Logger, hub *session.Hub, jwtSecret string) http.Handler {
	h := api.NewHandlers(log, hub, jwtSecret)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(metrics.Middleware("collab-hub"))

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/rooms", h.ListRooms)
	r.Get("/api/v1/rooms/{id}/chat", h.RoomChat)

	r.Handle("/metrics", metrics.Handler())

	r.Get("/ws/hub", h.HubWS)

	return r
}
