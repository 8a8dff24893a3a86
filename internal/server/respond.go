package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"newsdesk/internal/core"
	"newsdesk/internal/digest"
	"newsdesk/internal/llm"
	"newsdesk/internal/persistence"
)

// articleResponse is the public form of an article. Embeddings are never sent.
type articleResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Link            string     `json:"link"`
	Source          string     `json:"source"`
	PublishedDate   *time.Time `json:"published_date"`
	Content         string     `json:"content"`
	Summary         *string    `json:"summary"`
	CreatedAt       time.Time  `json:"created_at"`
	SimilarityScore *float64   `json:"similarity_score,omitempty"`
}

func newArticleResponse(a core.Article) articleResponse {
	resp := articleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Link:          a.Link,
		Source:        a.Source,
		PublishedDate: a.PublishedDate,
		Content:       a.Content,
		CreatedAt:     a.CreatedAt,
	}
	if a.HasSummary() {
		summary := a.Summary
		resp.Summary = &summary
	}
	return resp
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"status":  status,
			"message": message,
		},
	})
}

// respondFailure maps a collaborator error to a status code. fallback is the
// message for unexpected failures, whose details stay in the log.
func (s *Server) respondFailure(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		s.respondError(w, http.StatusServiceUnavailable, "AI provider is not configured")
	case errors.Is(err, llm.ErrRateLimited):
		s.respondError(w, http.StatusServiceUnavailable, "AI provider rate limit reached, try again later")
	case errors.Is(err, digest.ErrInvalidDate):
		s.respondError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
	case errors.Is(err, digest.ErrNoArticles):
		s.respondError(w, http.StatusNotFound, "No articles found for today")
	case errors.Is(err, persistence.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Not found")
	default:
		s.log.Error(fallback, "error", err)
		s.respondError(w, http.StatusInternalServerError, fallback)
	}
}
