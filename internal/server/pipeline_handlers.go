package server

import (
	"fmt"
	"net/http"
)

// handleFetchNews handles POST /api/fetch-news
func (s *Server) handleFetchNews(w http.ResponseWriter, r *http.Request) {
	s.log.Info("Starting feed fetch")

	result, err := s.deps.Ingester.Run(r.Context())
	if err != nil {
		s.respondFailure(w, err, "Failed to fetch news")
		return
	}

	message := fmt.Sprintf("Successfully fetched and saved %d new articles", result.Report.Inserted)
	if result.Report.Candidates == 0 {
		message = "No new articles found"
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      message,
		"new_articles": result.Report.Inserted,
		"total_parsed": result.Report.Candidates,
		"duplicates":   result.Report.DuplicatesInBatch + result.Report.DuplicatesInStore,
		"failed":       result.Report.Failed,
		"failed_feeds": result.Feeds.Failed,
		"feed_sources": result.Feeds.Sources,
	})
}

// handleGenerateSummaries handles POST /api/generate-summaries?limit
func (s *Server) handleGenerateSummaries(w http.ResponseWriter, r *http.Request) {
	fallback := s.batchLimit
	if fallback <= 0 || fallback > maxArticleLimit {
		fallback = defaultArticleLimit
	}
	limit, err := intParam(r.URL.Query().Get("limit"), fallback)
	if err != nil || limit < 1 || limit > maxArticleLimit {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Limit must be between 1 and %d", maxArticleLimit))
		return
	}

	report, err := s.deps.Enricher.Run(r.Context(), limit)
	if err != nil {
		s.respondFailure(w, err, "Failed to generate summaries")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "success",
		"message":             fmt.Sprintf("Successfully generated %d summaries", report.Enriched),
		"summaries_generated": report.Enriched,
		"selected":            report.Selected,
		"skipped":             report.Skipped,
		"rate_limited":        report.RateLimited,
	})
}
