package server

import (
	"net/http"
	"time"

	"newsdesk/internal/feeds"
	"newsdesk/internal/persistence"
)

// HealthResponse reports liveness and store connectivity
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

var serverStartTime = time.Now()

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "newsdesk",
	})
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.deps.DB.Ping(r.Context()); err != nil {
		s.log.Warn("Health check failed", "error", err)
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Checks: checks,
	})
}

// handleListSources handles GET /api/sources
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	names := feeds.SourceNames(s.deps.Sources)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"count":   len(names),
		"sources": names,
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := s.deps.DB.Articles().Count(ctx, persistence.ListOptions{})
	if err != nil {
		s.respondFailure(w, err, "Failed to load stats")
		return
	}

	var embedded int64
	var dims int
	if s.deps.Vectors != nil {
		stats, err := s.deps.Vectors.GetStats(ctx)
		if err != nil {
			s.respondFailure(w, err, "Failed to load stats")
			return
		}
		embedded, dims = stats.TotalEmbeddings, stats.EmbeddingDimensions
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "success",
		"articles":             total,
		"with_embeddings":      embedded,
		"embedding_dimensions": dims,
		"sources":              len(s.deps.Sources),
		"uptime":               time.Since(serverStartTime).Round(time.Second).String(),
	})
}
