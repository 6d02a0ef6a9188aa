package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rfduarte/feira/internal/backup"
	"github.com/rfduarte/feira/internal/googleauth"
	"github.com/rfduarte/feira/internal/handler"
	"github.com/rfduarte/feira/internal/localstore"
	"github.com/rfduarte/feira/internal/middleware"
	"github.com/rfduarte/feira/internal/sheets"
	"github.com/rfduarte/feira/internal/store"
	"github.com/rfduarte/feira/internal/syncer"
	ws "github.com/rfduarte/feira/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	itemsH        *handler.ItemsHandler
	sessionStore  *store.SessionStore
	syncManager   *syncer.Manager
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	local := localstore.NewStore(db)
	sessionStore := store.NewSessionStore(db)
	sheetsClient := sheets.NewClient()
	identity := googleauth.NewClient()

	// Sync events fan out to the owning user's connected clients.
	notify := func(ev syncer.Event) {
		hub.Broadcast(ws.NewMessage(ev.Entity, ev.Action, ev.ID, ev.Email, ev.Extra))
	}
	syncManager := syncer.NewManager(local, sheetsClient, identity, notify, logger)

	backupMgr := backup.NewManager(backupCfg, db, func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	}, logger)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(syncManager, sessionStore, logger),
		itemsH:        handler.NewItemsHandler(syncManager, logger),
		sessionStore:  sessionStore,
		syncManager:   syncManager,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Item API routes
	mux.HandleFunc("GET /api/items", s.itemsH.List)
	mux.HandleFunc("POST /api/items", s.itemsH.Create)
	mux.HandleFunc("PUT /api/items/{id}", s.itemsH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemsH.Delete)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.itemsH.Toggle)

	// Purchase flow
	mux.HandleFunc("POST /api/purchase/finalize", s.itemsH.Finalize)
	mux.HandleFunc("GET /api/history", s.itemsH.History)
	mux.HandleFunc("GET /api/statistics", s.itemsH.Statistics)
	mux.HandleFunc("GET /api/sync/status", s.itemsH.SyncStatus)

	// WebSocket for real-time sync notifications
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
