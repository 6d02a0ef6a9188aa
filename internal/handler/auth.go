package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rfduarte/feira/internal/auth"
	"github.com/rfduarte/feira/internal/googleauth"
	"github.com/rfduarte/feira/internal/middleware"
	"github.com/rfduarte/feira/internal/store"
	"github.com/rfduarte/feira/internal/syncer"
)

type AuthHandler struct {
	manager  *syncer.Manager
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(manager *syncer.Manager, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		manager:  manager,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
	}
}

type loginRequest struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges a provider access token for a session cookie. The provider
// decides whether the token is valid; a rejection is a 401, anything else
// about the remote store degrades to local-only mode rather than failing.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.AccessToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "access_token is required"})
		return
	}

	co, err := h.manager.Login(r.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, googleauth.ErrInvalidCredential) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credential"})
			return
		}
		h.logger.Error("login", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	session := co.Session()
	srvSess, err := h.sessions.Create(session.Email)
	if err != nil {
		h.logger.Error("create session", "email", session.Email, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    srvSess.Token,
		Path:     "/",
		Expires:  srvSess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"user": session,
		"sync": co.SyncStatus(),
	})
}

// Logout invalidates all of the user's sessions and tears down their sync
// coordinator. Always succeeds from the caller's perspective.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	email := auth.Email(r.Context())

	if err := h.sessions.DeleteByEmail(email); err != nil {
		h.logger.Error("delete sessions", "email", email, "error", err)
	}
	h.manager.Logout(r.Context(), email)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Me returns the authenticated user's identity and sync state.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	email := auth.Email(r.Context())

	co, err := h.manager.Coordinator(r.Context(), email)
	if err != nil {
		h.logger.Error("resume coordinator", "email", email, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": co.Session(),
		"sync": co.SyncStatus(),
	})
}
