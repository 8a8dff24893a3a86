package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleCreateDigest handles POST /api/create-digest
func (s *Server) handleCreateDigest(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.Digests.Create(r.Context(), "")
	if err != nil {
		s.respondFailure(w, err, "Failed to create digest")
		return
	}

	d := result.Digest
	message := fmt.Sprintf("Successfully created digest for %s", d.Date)
	if result.Existed {
		message = "Digest already exists for today"
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"message":       message,
		"digest":        d.Content,
		"article_count": d.ArticleCount,
		"digest_date":   d.Date,
	})
}

// handleGetDigest handles GET /api/digest/{date}
func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	d, err := s.deps.Digests.Get(r.Context(), date)
	if err != nil {
		s.respondFailure(w, err, "Failed to fetch digest")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"digest": d,
	})
}

// handleDeleteDigest handles DELETE /api/digest/{date}
func (s *Server) handleDeleteDigest(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	if err := s.deps.Digests.Delete(r.Context(), date); err != nil {
		s.respondFailure(w, err, "Failed to delete digest")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
