package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/blob"
	"github.com/dukerupert/twoof/internal/config"
	"github.com/dukerupert/twoof/internal/handler"
	"github.com/dukerupert/twoof/internal/middleware"
	"github.com/dukerupert/twoof/internal/service"
	ws "github.com/dukerupert/twoof/internal/websocket"
)

type Server struct {
	hub         *ws.Hub
	households  *service.HouseholdService
	householdH  *handler.HouseholdHandler
	memoryH     *handler.MemoryHandler
	photoH      *handler.PhotoHandler
	dateIdeaH   *handler.DateIdeaHandler
	milestoneH  *handler.MilestoneHandler
	searchH     *handler.SearchHandler
	exportH     *handler.ExportHandler
	healthH     *handler.HealthHandler
	verifier    auth.Verifier
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
	metrics     *middleware.Metrics
	cfg         *config.Config
	logger      *slog.Logger
}

func New(db *sql.DB, blobs blob.Store, verifier auth.Verifier, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	loc := cfg.Location()

	households := service.NewHouseholdService(db)
	memories := service.NewMemoryService(db, blobs, logger.With("component", "memory"))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		hub:         hub,
		households:  households,
		householdH:  handler.NewHouseholdHandler(households, hub, logger.With("component", "household")),
		memoryH:     handler.NewMemoryHandler(memories, households, hub, logger.With("component", "memory")),
		photoH:      handler.NewPhotoHandler(memories, households, hub, logger.With("component", "photo")),
		dateIdeaH:   handler.NewDateIdeaHandler(service.NewDateIdeaService(db, loc), households, hub, logger.With("component", "date_idea")),
		milestoneH:  handler.NewMilestoneHandler(service.NewMilestoneService(db, loc), households, hub, logger.With("component", "milestone")),
		searchH:     handler.NewSearchHandler(service.NewSearchService(db), logger.With("component", "search")),
		exportH:     handler.NewExportHandler(service.NewExportService(db), logger.With("component", "export")),
		healthH:     handler.NewHealthHandler(db, logger.With("component", "health")),
		verifier:    verifier,
		rateLimiter: middleware.NewRateLimiter(),
		registry:    registry,
		metrics:     middleware.NewMetrics(registry),
		cfg:         cfg,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /health", s.healthH.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.registerAPIRoutes(mux)

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found","message":"no such endpoint"}` + "\n"))
	})
	if s.cfg.StaticDir != "" {
		mux.Handle("/", staticHandler(s.cfg.StaticDir))
	}

	var h http.Handler = mux
	h = s.metrics.Middleware(h)
	h = middleware.Recover(s.logger.With("component", "http"))(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return middleware.RequireUser(s.verifier, s.logger.With("component", "auth"))(h)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByUser, s.cfg.JoinRateLimit, s.cfg.JoinRateWindow)
	return rl(h).ServeHTTP
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Household routes
	mux.Handle("POST /api/household", s.protected(s.householdH.Create))
	mux.Handle("GET /api/household", s.protected(s.householdH.Get))
	mux.Handle("PUT /api/household", s.protected(s.householdH.Update))
	mux.Handle("POST /api/household/join", s.protected(s.rateLimitedHandler(s.householdH.Join)))
	mux.Handle("POST /api/household/regenerate-invite", s.protected(s.householdH.RegenerateInvite))

	// Memory routes
	mux.Handle("GET /api/memories", s.protected(s.memoryH.List))
	mux.Handle("POST /api/memories", s.protected(s.memoryH.Create))
	mux.Handle("GET /api/memories/{id}", s.protected(s.memoryH.Get))
	mux.Handle("PUT /api/memories/{id}", s.protected(s.memoryH.Update))
	mux.Handle("DELETE /api/memories/{id}", s.protected(s.memoryH.Delete))

	// Photo routes
	mux.Handle("POST /api/memories/{id}/photos", s.protected(s.photoH.Upload))
	mux.Handle("GET /api/photos/{id}/file", s.protected(s.photoH.File))
	mux.Handle("DELETE /api/photos/{id}", s.protected(s.photoH.Delete))

	// Date idea routes
	mux.Handle("GET /api/dates", s.protected(s.dateIdeaH.List))
	mux.Handle("POST /api/dates", s.protected(s.dateIdeaH.Create))
	mux.Handle("PUT /api/dates/{id}", s.protected(s.dateIdeaH.Update))
	mux.Handle("DELETE /api/dates/{id}", s.protected(s.dateIdeaH.Delete))
	mux.Handle("PATCH /api/dates/{id}/done", s.protected(s.dateIdeaH.ToggleDone))

	// Milestone routes
	mux.Handle("GET /api/milestones", s.protected(s.milestoneH.List))
	mux.Handle("POST /api/milestones", s.protected(s.milestoneH.Create))
	mux.Handle("PUT /api/milestones/{id}", s.protected(s.milestoneH.Update))
	mux.Handle("DELETE /api/milestones/{id}", s.protected(s.milestoneH.Delete))

	mux.Handle("GET /api/search", s.protected(s.searchH.Search))
	mux.Handle("GET /api/export", s.protected(s.exportH.Export))

	// WebSocket
	mux.Handle("GET /api/ws", s.protected(ws.HandleWebSocket(s.hub, s.householdOf, s.cfg.AllowedOrigins, s.logger.With("component", "websocket"))))
}

func (s *Server) householdOf(ctx context.Context, _ *http.Request) (string, error) {
	h, err := s.households.Get(ctx, auth.UserID(ctx))
	if err != nil {
		return "", err
	}
	return h.ID, nil
}

// staticHandler serves a built single-page frontend. Paths that are not
// files fall back to index.html so client-side routes survive a reload.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
