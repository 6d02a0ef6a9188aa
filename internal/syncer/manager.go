package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rfduarte/feira/internal/googleauth"
	"github.com/rfduarte/feira/internal/localstore"
	"github.com/rfduarte/feira/internal/model"
)

// IdentityClient resolves an access token to a user identity.
// Implemented by googleauth.Client.
type IdentityClient interface {
	FetchUserInfo(ctx context.Context, accessToken string) (*googleauth.UserInfo, error)
}

// Manager holds one coordinator per signed-in user and owns their
// lifecycle: login creates and initializes, logout invalidates and clears
// the user's credential keys from the cache.
type Manager struct {
	mu           sync.Mutex
	coordinators map[string]*Coordinator

	local    *localstore.Store
	remote   Remote
	identity IdentityClient
	notify   NotifyFunc
	logger   *slog.Logger
}

func NewManager(local *localstore.Store, remote Remote, identity IdentityClient, notify NotifyFunc, logger *slog.Logger) *Manager {
	return &Manager{
		coordinators: make(map[string]*Coordinator),
		local:        local,
		remote:       remote,
		identity:     identity,
		notify:       notify,
		logger:       logger.With("component", "syncer"),
	}
}

// Login resolves the token to an identity and brings up a ready coordinator
// for that user. Remote provisioning is best-effort; only a rejected
// credential fails the login.
func (m *Manager) Login(ctx context.Context, accessToken string) (*Coordinator, error) {
	info, err := m.identity.FetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	session := model.UserSession{
		Email:       info.Email,
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
	}
	if err := m.local.SaveUser(session); err != nil {
		m.logger.Error("record signed-in user", "email", session.Email, "error", err)
	}
	if err := m.local.SaveToken(session.Email, accessToken); err != nil {
		m.logger.Error("cache access token", "email", session.Email, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.coordinators[session.Email]; ok {
		old.invalidate()
	}
	co := newCoordinator(session, accessToken, m.local, m.remote, m.notify, m.logger)
	co.initialize(ctx)
	m.coordinators[session.Email] = co

	m.logger.Info("user signed in", "email", session.Email,
		"remote_available", co.SyncStatus().RemoteAvailable)
	return co, nil
}

// Coordinator returns the live coordinator for email, resuming one from the
// cached snapshot and token if the user has a valid server session but no
// coordinator yet (for example after a process restart).
func (m *Manager) Coordinator(ctx context.Context, email string) (*Coordinator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if co, ok := m.coordinators[email]; ok {
		return co, nil
	}

	session := model.UserSession{Email: email}
	if cached, err := m.local.LoadUser(); err == nil && cached != nil && cached.Email == email {
		session = *cached
	}
	token, err := m.local.Token(email)
	if err != nil {
		m.logger.Error("read cached token", "email", email, "error", err)
	}

	co := newCoordinator(session, token, m.local, m.remote, m.notify, m.logger)
	co.initialize(ctx)
	m.coordinators[email] = co

	m.logger.Info("session resumed from cache", "email", email,
		"remote_available", co.SyncStatus().RemoteAvailable)
	return co, nil
}

// Logout tears down the user's coordinator and forgets their credential and
// spreadsheet keys. Item and history snapshots are kept so a later login
// starts warm. Never fails; cleanup problems are logged.
func (m *Manager) Logout(ctx context.Context, email string) {
	m.mu.Lock()
	co := m.coordinators[email]
	delete(m.coordinators, email)
	m.mu.Unlock()

	if co != nil {
		co.invalidate()
	}

	if err := m.local.RemoveUser(); err != nil {
		m.logger.Error("remove user pointer", "email", email, "error", err)
	}
	if err := m.local.RemoveSpreadsheetID(email); err != nil {
		m.logger.Error("remove spreadsheet id", "email", email, "error", err)
	}
	if err := m.local.RemoveToken(email); err != nil {
		m.logger.Error("remove access token", "email", email, "error", err)
	}

	if m.notify != nil {
		m.notify(Event{Entity: "session", Action: "signed_out", Email: email})
	}
	m.logger.Info("user signed out", "email", email)
}
