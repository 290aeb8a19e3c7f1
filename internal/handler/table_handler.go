package handler

import (
	"errors"
	"net/http"

	"github.com/freeeve/conquest-table/internal/auth"
	"github.com/freeeve/conquest-table/internal/logger"
	"github.com/freeeve/conquest-table/internal/service"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

// TableHandler serves read-only views of the table over HTTP.
type TableHandler struct {
	table TableService
}

// NewTableHandler creates a TableHandler.
func NewTableHandler(table TableService) *TableHandler {
	return &TableHandler{table: table}
}

// GetState handles GET /api/v1/state
func (h *TableHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.table.Snapshot(r.Context())
	if err != nil {
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetMe handles GET /api/v1/me
func (h *TableHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	playerID := auth.PlayerIDFromContext(r.Context())
	hand, err := h.table.Hand(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, conquest.ErrUnknownPlayer) {
			writeError(w, http.StatusNotFound, "not seated at the table")
			return
		}
		writeTableError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hand)
}

func writeTableError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrTableClosed) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	lg := logger.Get()
	lg.Error().Err(err).Msg("Table query failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
