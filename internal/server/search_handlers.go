package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"newsdesk/internal/search"
)

const maxSearchBody = 64 << 10

// SearchRequest is the body of POST /api/search
type SearchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit,omitempty"`
}

// handleSearch handles POST /api/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	maxLen := s.search.MaxQueryLength
	if maxLen <= 0 {
		maxLen = 500
	}
	if query == "" || utf8.RuneCountInString(query) > maxLen {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Query must be between 1 and %d characters", maxLen))
		return
	}

	opts := search.DefaultOptions()
	if s.search.DefaultLimit > 0 {
		opts.Limit = s.search.DefaultLimit
	}
	opts.MinSimilarity = s.search.MinSimilarity
	maxLimit := s.search.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > maxLimit {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Limit must be between 1 and %d", maxLimit))
			return
		}
		opts.Limit = *req.Limit
	}

	results, err := s.deps.Searcher.Search(r.Context(), query, opts)
	if err != nil {
		s.respondFailure(w, err, "Search failed")
		return
	}

	views := make([]articleResponse, 0, len(results))
	for _, res := range results {
		view := newArticleResponse(res.Article)
		score := res.Similarity
		view.SimilarityScore = &score
		views = append(views, view)
	}

	body := map[string]interface{}{
		"status":  "success",
		"query":   query,
		"count":   len(views),
		"results": views,
	}
	if len(views) == 0 {
		body["message"] = fmt.Sprintf("No articles found with high enough relevance (>%.0f%% match)", opts.MinSimilarity*100)
	}
	s.respondJSON(w, http.StatusOK, body)
}
