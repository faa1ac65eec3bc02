// Package server exposes the HTTP surface for `clipper serve`: health
// checks and an endpoint to enqueue ingest jobs for the worker pool to
// pick up.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clipforge/engine/internal/queue"
)

// Config holds settings the router needs to wire CORS and auth.
type Config struct {
	// APIKey, when non-empty, is required on /v1 routes via X-API-Key or
	// Authorization: Bearer <key>. Empty disables auth (development mode).
	APIKey string

	// CorsAllowedOrigins is a comma-separated allow-list. Empty allows "*".
	CorsAllowedOrigins string
}

// Handler serves the ingest-queue HTTP API.
type Handler struct {
	queue *queue.Queue
}

// NewHandler returns a Handler backed by q.
func NewHandler(q *queue.Queue) *Handler {
	return &Handler{queue: q}
}

// NewRouter builds the chi router: public health checks, then an
// API-key-gated /v1 group for job submission.
func NewRouter(h *Handler, cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/v1", func(r chi.Router) {
		if cfg.APIKey != "" {
			r.Use(apiKeyAuth(cfg.APIKey))
		}
		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs/status", h.QueueStatus)
	})

	return r
}

// Healthz reports process liveness. It never touches Redis, so it stays
// green even if the queue backend is briefly unreachable.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createJobRequest struct {
	SourcePath string `json:"source_path"`
	TopK       int    `json:"top_k"`
	OutputDir  string `json:"output_dir"`
}

// CreateJob enqueues an ingest job for a worker to pick up.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourcePath == "" {
		respondError(w, http.StatusBadRequest, "source_path is required")
		return
	}

	job := &queue.Job{
		SourcePath: req.SourcePath,
		TopK:       req.TopK,
		OutputDir:  req.OutputDir,
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID.String()})
}

// QueueStatus reports how many jobs are waiting to be picked up.
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	n, err := h.queue.Length(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read queue length")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"queued": n})
}

func apiKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				authHeader := r.Header.Get("Authorization")
				if strings.HasPrefix(authHeader, "Bearer ") {
					key = strings.TrimPrefix(authHeader, "Bearer ")
				}
			}
			if key == "" {
				respondError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				respondError(w, http.StatusForbidden, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
