package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/PrajwalNP160/major-project-sub001/internal/config"
	"github.com/PrajwalNP160/major-project-sub001/internal/exec"
	"github.com/PrajwalNP160/major-project-sub001/internal/routers"
	"github.com/PrajwalNP160/major-project-sub001/internal/session"
	"github.com/PrajwalNP160/major-project-sub001/internal/store"
)

var (
	listenAndServe = http.ListenAndServe
	exitFunc       = func(err error) { log.Fatal(err) }
)

func run(ctx context.Context) error {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	deps := session.Collaborators{
		Exec:        exec.NewRunner(cfg.ExecAPIURL),
		ExecTimeout: cfg.ExecTimeout,
	}
	if cfg.RedisAddr != "" {
		deps.ChatStore = store.NewRedisChatStore(cfg.RedisAddr)
	}
	if cfg.UserServiceURL != "" {
		deps.Directory = store.NewHTTPDirectory(cfg.UserServiceURL)
	}

	hub := session.NewHub(logger, deps)
	hub.StartReaper(ctx, cfg.RoomIdleTTL, time.Minute)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
	)

	r.Mount("/", routers.New(logger, hub, cfg.JWTSecret))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	addr := ":" + cfg.Port
	logger.Info("hub listening", zap.String("addr", addr))
	return listenAndServe(addr, r)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
