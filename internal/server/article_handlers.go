package server

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"newsdesk/internal/feeds"
	"newsdesk/internal/persistence"
)

const (
	defaultArticleLimit = 50
	maxArticleLimit     = 100
)

// handleListArticles handles GET /api/articles?limit&offset&source
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), defaultArticleLimit)
	if err != nil || limit < 1 || limit > maxArticleLimit {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Limit must be between 1 and %d", maxArticleLimit))
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "Offset must be non-negative")
		return
	}

	opts := persistence.ListOptions{Limit: limit, Offset: offset}
	if source := q.Get("source"); source != "" {
		valid := feeds.SourceNames(s.deps.Sources)
		if !slices.Contains(valid, source) {
			s.respondError(w, http.StatusBadRequest, "Invalid source. Valid sources: "+strings.Join(valid, ", "))
			return
		}
		opts.Source = source
	}

	ctx := r.Context()
	total, err := s.deps.DB.Articles().Count(ctx, opts)
	if err != nil {
		s.respondFailure(w, err, "Failed to fetch articles")
		return
	}
	articles, err := s.deps.DB.Articles().List(ctx, opts)
	if err != nil {
		s.respondFailure(w, err, "Failed to fetch articles")
		return
	}

	views := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		views = append(views, newArticleResponse(a))
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"articles": views,
	})
}

// intParam parses an optional integer query parameter.
func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
