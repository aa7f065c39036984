package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	api "github.com/html-hub/learninghub/internal/api/http"
	"github.com/html-hub/learninghub/internal/audit"
	"github.com/html-hub/learninghub/internal/auth"
	"github.com/html-hub/learninghub/internal/cache"
	"github.com/html-hub/learninghub/internal/config"
	"github.com/html-hub/learninghub/internal/db"
	"github.com/html-hub/learninghub/internal/exam"
	"github.com/html-hub/learninghub/internal/logger"
	"github.com/html-hub/learninghub/internal/progress"
	"github.com/html-hub/learninghub/internal/rbac"
	"github.com/html-hub/learninghub/internal/seed"
	"github.com/html-hub/learninghub/internal/topic"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment")
	}
	cfg := config.FromEnv()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		zl.Fatal("db open failed", zap.Error(err))
	}

	var topics topic.Store = topic.NewSQLStore(dbh)
	if cfg.CacheAddr != "" {
		topics = cache.NewCachedStore(topics, cache.New(cfg.CacheAddr, cfg.CacheTTL, zl))
		zl.Info("topic cache enabled", zap.String("addr", cfg.CacheAddr))
	}
	if cfg.SeedDir != "" {
		if err := seed.Load(ctx, cfg.SeedDir, topics, zl); err != nil {
			zl.Fatal("seed failed", zap.Error(err))
		}
	}

	attempts := exam.NewSQLAttemptStore(dbh)
	events := audit.NewEventRepo(dbh)
	progressStore := audit.Wrap(progress.NewSQLStore(dbh), events, zl)
	reconciler := progress.NewReconciler(progressStore, nil)

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/student", auth.StudentLoginHandler(authSvc))
	r.Post("/auth/login", auth.AdminLoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))

	// Protected API (JWT -> subject/role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("topic:view")).
			Get("/topics", api.ListTopicsHandler(topics))
		pr.With(rbac.Require("topic:view")).
			Get("/topics/{topicID}", api.GetTopicHandler(topics))

		// Admin authoring
		pr.With(rbac.Require("topic:create")).
			Post("/topics", api.SaveTopicHandler(topics))
		pr.With(rbac.Require("topic:update")).
			Put("/topics/{topicID}", api.SaveTopicHandler(topics))
		pr.With(rbac.Require("topic:delete")).
			Delete("/topics/{topicID}", api.DeleteTopicHandler(topics))

		// Student flow
		pr.With(rbac.Require("progress:write-own")).
			Post("/topics/{topicID}/complete", api.MarkCompleteHandler(reconciler))
		pr.With(rbac.Require("exam:submit")).
			Post("/topics/{topicID}/exam/start", api.StartExamHandler(topics, attempts))
		pr.With(rbac.Require("exam:submit")).
			Post("/topics/{topicID}/exam", api.SubmitExamHandler(topics, attempts, reconciler))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/progress", api.ListProgressHandler(progressStore))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/progress/summary", api.SummaryHandler(topics, progressStore))

		// Operator tooling
		pr.With(rbac.Require("event:view")).
			Get("/events", api.ListEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zl.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("forced shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}
