// Package handler exposes the highscore service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/metrics"
	"github.com/highscore-board/internal/service"
	"github.com/highscore-board/internal/websocket"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Handler provides HTTP handlers for the highscore API
type Handler struct {
	service *service.HighscoreService
	hub     *websocket.Hub
	metrics *metrics.Metrics
	secret  *secret
	cfg     *config.Config
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler. hub and m may be nil.
func NewHandler(svc *service.HighscoreService, hub *websocket.Hub, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		hub:     hub,
		metrics: m,
		secret:  newSecret(cfg.Auth.APIKey),
		cfg:     cfg,
		logger:  logger,
	}
}

// ErrorResponse is the body of every non-2xx JSON response except 401
type ErrorResponse struct {
	Error string `json:"error"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(h.logger))
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)
	r.Get("/highscores", h.ShowHighscores)

	if h.metrics != nil && h.cfg.Metrics.IsEnabled() {
		r.Method(http.MethodGet, h.cfg.Metrics.Path, h.metrics.Handler())
	}
	if h.hub != nil {
		r.Get("/ws", h.HandleWebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(h.requireSecret)

		r.Route("/highscores", func(r chi.Router) {
			r.Get("/", h.ListHighscores)
			r.Post("/", h.SubmitHighscore)
			r.Get("/{id}", h.GetHighscore)
			r.Put("/{id}", h.ReplaceHighscore)
			r.Delete("/{id}", h.DeleteHighscore)
		})
		r.Post("/new_player", h.NewPlayer)
	})

	return r
}

// Root answers the bare liveness page
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<h1>hello</h1>"))
}

// HandleWebSocket upgrades to a realtime leaderboard stream
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	var initial *domain.LeaderboardSnapshot
	if snap, err := h.service.Snapshot(r.Context()); err == nil {
		initial = &snap
	} else {
		h.logger.Warn("failed to load initial snapshot", "error", err)
	}
	h.hub.Serve(w, r, initial)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck reports ready once the document can be loaded and decoded
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

// writeError maps err onto a status code and writes the error body.
// Server-side failures are logged and their detail withheld.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		msg = domain.ErrInternalError.Error()
	}
	h.writeJSON(w, status, ErrorResponse{Error: msg})
}

// StatusFor maps domain errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
