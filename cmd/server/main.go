package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/openhome-school/backend/internal/auth"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/database"
	"github.com/openhome-school/backend/internal/events"
	"github.com/openhome-school/backend/internal/observability"
	"github.com/openhome-school/backend/internal/quiz"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Server.LogLevel)
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, cfg.Database.URL, logger); err != nil {
		logger.Error(ctx, "Failed to run migrations", err)
		os.Exit(1)
	}

	// Initialize services and handlers
	quizService := quiz.NewService(events.NewStore(db), cfg.Quiz, logger)
	quizHandler := quiz.NewHandler(quizService, logger)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware([]byte(cfg.Server.JWTSecret), logger))
	quizHandler.RegisterRoutes(api)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(c.Handler(r), "openhome-api"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Server starting", map[string]interface{}{
			"port":       cfg.Server.Port,
			"jwt_secret": cfg.Server.JWTSecret != "",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server failed", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Graceful shutdown failed", err)
	}
	logger.Info(ctx, "Server stopped")
}
