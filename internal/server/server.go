package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ctai-labs/clinical-trial-ai/internal/analyzer"
	"github.com/ctai-labs/clinical-trial-ai/internal/config"
)

const (
	serviceName    = "Clinical Trial AI API"
	serviceVersion = "1.0.0"
)

type Server struct {
	cfg      config.ServerConfig
	server   *http.Server
	router   *chi.Mux
	analyzer *analyzer.Analyzer

	// model is reported by the health endpoint
	model string
	now   func() time.Time
}

func New(cfg config.Config, analyzer *analyzer.Analyzer, model string) *Server {
	s := &Server{
		cfg:      cfg.Server,
		router:   chi.NewRouter(),
		analyzer: analyzer,
		model:    model,
		now:      time.Now,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Get("/", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/generate-report", s.handleGenerateReport)
		r.Get("/recommendations/{site_id}", s.handleRecommendations)
		r.Get("/insights", s.handleInsights)
		r.Get("/action-items", s.handleActionItems)
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	// Create a channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("Starting shutdown", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
