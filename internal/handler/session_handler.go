package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/conquest-table/internal/auth"
	"github.com/freeeve/conquest-table/pkg/conquest"
)

// SessionHandler mints anonymous player identities.
type SessionHandler struct {
	jwtMgr *auth.JWTManager
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(jwtMgr *auth.JWTManager) *SessionHandler {
	return &SessionHandler{jwtMgr: jwtMgr}
}

// CreateSession handles POST /api/v1/session. The body is optional; a
// supplied name is sanitized and carried in the token as a hint for join.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.jwtMgr.IssueSession(conquest.SanitizeName(req.Name))
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session")
		writeError(w, http.StatusInternalServerError, "failed to issue session")
		return
	}
	log.Info().Str("playerId", sess.PlayerID).Msg("Session issued")
	writeJSON(w, http.StatusCreated, sess)
}
