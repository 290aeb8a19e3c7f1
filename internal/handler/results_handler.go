package handler

import (
	"net/http"

	"github.com/freeeve/conquest-table/internal/logger"
	"github.com/freeeve/conquest-table/internal/model"
	"github.com/freeeve/conquest-table/internal/repository"
)

// ResultsHandler serves the finished-match archive and the win leaderboard.
// Either store may be nil, in which case its endpoint returns an empty list.
type ResultsHandler struct {
	results     repository.ResultRepository
	leaderboard repository.Leaderboard
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(results repository.ResultRepository, leaderboard repository.Leaderboard) *ResultsHandler {
	return &ResultsHandler{results: results, leaderboard: leaderboard}
}

// ListResults handles GET /api/v1/results?limit=
func (h *ResultsHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		writeJSON(w, http.StatusOK, []model.MatchResult{})
		return
	}
	results, err := h.results.ListRecent(r.Context(), queryInt(r, "limit", 20, 100))
	if err != nil {
		lg := logger.ForRequest(r.Context())
		lg.Error().Err(err).Msg("Failed to list results")
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if results == nil {
		results = []model.MatchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Leaderboard handles GET /api/v1/leaderboard?n=
func (h *ResultsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboard == nil {
		writeJSON(w, http.StatusOK, []model.LeaderboardEntry{})
		return
	}
	entries, err := h.leaderboard.Top(r.Context(), queryInt(r, "n", 10, 100))
	if err != nil {
		lg := logger.ForRequest(r.Context())
		lg.Error().Err(err).Msg("Failed to read leaderboard")
		writeError(w, http.StatusInternalServerError, "failed to read leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
