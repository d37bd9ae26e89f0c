package handler

import (
	"log/slog"
	"net/http"

	"seriatim/internal/domain"
	"seriatim/internal/httputil"
	"seriatim/internal/session"
)

// SessionHandler lets a user see and sign out their login sessions
type SessionHandler struct {
	sessions session.Store
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type sessionResponse struct {
	session.Data
	Current bool `json:"current"`
}

// ListSessions lists the caller's sessions, most recent first
// GET /api/users/me/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		handleError(w, h.logger, domain.ErrUnauthorized)
		return
	}

	sessions, err := h.sessions.ListByUser(r.Context(), userID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	current := httputil.GetSessionID(r)
	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{Data: s, Current: s.SessionID == current})
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// RevokeSession signs out one of the caller's sessions
// DELETE /api/users/me/sessions/{id}
func (h *SessionHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		handleError(w, h.logger, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sessions.Revoke(r.Context(), userID, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("session revoked", "user_id", userID, "session_id", id)
	httputil.RespondNoContent(w)
}
