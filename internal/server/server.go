// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"gathering/internal/config"
	"gathering/internal/observability"
	"gathering/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	planner handlers.Planner,
	subscriber handlers.SessionSubscriber,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger, metrics))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessionHandler := handlers.NewSessionHandler(planner, logger)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Get("/purposes", handlers.ListPurposes)
			r.Get("/options", handlers.ListOptions)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.CreateSession)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.GetSession)
					r.Delete("/", sessionHandler.DeleteSession)

					r.Post("/dates", sessionHandler.AddDate)
					r.Post("/dates/defaults", sessionHandler.AddDefaultDates)
					r.Delete("/dates/{date}", sessionHandler.RemoveDate)
					r.Put("/purpose", sessionHandler.SetPurpose)

					r.Post("/participants", sessionHandler.AddParticipant)
					r.Put("/participants/{pid}", sessionHandler.UpdateParticipant)
					r.Delete("/participants/{pid}", sessionHandler.RemoveParticipant)

					r.Get("/summary", sessionHandler.GetSummary)
					r.Post("/venues/search", sessionHandler.SearchVenues)
					r.Put("/venues/selection", sessionHandler.SelectVenue)
					r.Put("/date", sessionHandler.ChooseDate)
					r.Post("/game", sessionHandler.SuggestGame)
					r.Get("/weather", sessionHandler.GetWeather)
					r.Get("/message", sessionHandler.GetMessage)
				})
			})
		})
	})

	// Prometheus metrics
	if metrics != nil {
		router.Handle("/metrics", metrics.Handler())
	}

	// WebSocket endpoint for live session events
	router.Get("/ws/sessions/{id}", handlers.SessionWebSocketHandler(planner, subscriber, logger))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requestLogger logs every request and records it in metrics under its
// route pattern
func requestLogger(logger *zap.Logger, metrics *observability.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			duration := time.Since(start)
			metrics.ObserveRequest(r.Method, route, strconv.Itoa(ww.Status()), duration)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", duration),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
