package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"valuation-service/internal/core/port"
)

// ServerConfig - параметры HTTP-сервера
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// HTTPMetrics - метрики HTTP-слоя, может отсутствовать
type HTTPMetrics interface {
	HTTPMiddleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(cfg ServerConfig,
	valuationHandlers *ValuationHandler,
	metrics HTTPMetrics,
	baseLogger port.LoggerPort) *Server {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))
	if metrics != nil {
		r.Use(metrics.HTTPMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api/v1/valuation", func(r chi.Router) {
		r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

		r.Post("/calculate", valuationHandlers.Calculate)
		r.Get("/coefficients", valuationHandlers.GetCoefficients)
		r.Get("/coefficient/{age}", valuationHandlers.GetCoefficientByAge)
		r.Get("/zones/{municipality}", valuationHandlers.GetZones)
		r.Get("/quick-quote", valuationHandlers.GetQuickQuote)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Handler - корневой обработчик, нужен тестам и CLI
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
