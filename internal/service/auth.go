// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the domain services: the auth/session
// manager, the website content store, and the contact message inbox.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/acmeinc/acms/internal/auth"
	"github.com/acmeinc/acms/internal/store"
)

// Session keys owned by the manager.
const (
	SessionKeyUserID  = "user_id"
	SessionKeyIsAdmin = "is_admin"
)

// ChangeType identifies a session state transition.
type ChangeType string

// Session change types delivered to subscribers.
const (
	ChangeSignedIn  ChangeType = "signed_in"
	ChangeSignedOut ChangeType = "signed_out"
)

// Change describes one session state transition.
type Change struct {
	Type   ChangeType
	UserID int64
	Email  string
}

// AuthService owns the login, bootstrap, and logout flows and tracks admin
// privilege per user. It guarantees that a successful Login never leaves an
// authenticated-but-non-admin session behind: any such state is rolled back
// by destroying the session before Login reports failure.
type AuthService struct {
	queries    *store.Queries
	sessions   *scs.SessionManager
	adminEmail string

	mu          sync.Mutex
	subscribers []func(Change)
	notifying   bool
	pending     []Change

	// adminState caches the most recent asynchronous admin resolution per
	// user id. It can lag the database until the next re-resolution
	// completes; that staleness is accepted.
	adminState sync.Map // int64 -> bool

	resolves sync.WaitGroup
}

// NewAuthService creates an AuthService. adminEmail designates the account
// allowed to bootstrap itself on first login.
func NewAuthService(db *sql.DB, sessions *scs.SessionManager, adminEmail string) *AuthService {
	return &AuthService{
		queries:    store.New(db),
		sessions:   sessions,
		adminEmail: adminEmail,
	}
}

// Subscribe registers a session-change callback. Intended to be called once
// per subscriber at application start. Callbacks run on the goroutine that
// triggered the change; a callback that itself triggers a change does not
// re-enter the handler chain, the nested change is queued and delivered
// after the current round completes.
func (s *AuthService) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// notify delivers a change to all subscribers with a re-entrancy guard.
func (s *AuthService) notify(change Change) {
	s.mu.Lock()
	if s.notifying {
		s.pending = append(s.pending, change)
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()

	queue := []Change{change}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		s.mu.Lock()
		subs := make([]func(Change), len(s.subscribers))
		copy(subs, s.subscribers)
		s.mu.Unlock()

		for _, fn := range subs {
			fn(next)
		}

		s.mu.Lock()
		queue = append(queue, s.pending...)
		s.pending = nil
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.notifying = false
	s.mu.Unlock()
}

// Login attempts a credential sign-in. It returns true only when the
// credentials are valid and the account holds admin privilege at check time.
// Backend errors surface as a non-nil error alongside false; they are not
// retried.
//
// Bootstrap: when no account exists for the designated admin email, the
// account is created with the submitted password, registered in admin_users,
// and signed in as admin unconditionally.
func (s *AuthService) Login(ctx context.Context, email, password string) (bool, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if email == s.adminEmail {
				return s.bootstrap(ctx, email, password)
			}
			slog.Debug("login attempt for non-existent user", "email", email)
			return false, nil
		}
		return false, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		return false, nil
	}
	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		return false, nil
	}

	isAdmin := s.resolveAdmin(ctx, user.ID, user.Email)
	if !isAdmin {
		// Valid credentials but no admin privilege: make sure no session
		// survives before reporting failure.
		if err := s.sessions.Destroy(ctx); err != nil {
			slog.Error("session destroy error", "error", err)
		}
		slog.Warn("login denied: not an admin", "user_id", user.ID, "email", user.Email)
		return false, nil
	}

	if err := s.establishSession(ctx, user.ID, user.Email); err != nil {
		return false, err
	}

	// Re-hash password if it uses old parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	return true, nil
}

// bootstrap creates the designated admin account on first login and signs it
// in. The account is treated as admin unconditionally.
func (s *AuthService) bootstrap(ctx context.Context, email, password string) (bool, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, fmt.Errorf("creating admin account: %w", err)
	}

	if err := s.queries.CreateAdminUser(ctx, user.ID); err != nil {
		return false, fmt.Errorf("registering admin account: %w", err)
	}

	slog.Info("bootstrapped admin account", "user_id", user.ID, "email", email)

	s.adminState.Store(user.ID, true)
	if err := s.establishSession(ctx, user.ID, user.Email); err != nil {
		return false, err
	}
	return true, nil
}

// resolveAdmin computes the admin flag for a user. The designated admin
// email is special-cased true; everything else goes through the admin_users
// lookup. Lookup errors resolve to "not admin".
func (s *AuthService) resolveAdmin(ctx context.Context, userID int64, email string) bool {
	if email == s.adminEmail {
		s.adminState.Store(userID, true)
		return true
	}
	isAdmin, err := s.queries.IsAdminUser(ctx, userID)
	if err != nil {
		slog.Warn("admin lookup failed, treating as not admin", "error", err, "user_id", userID)
		isAdmin = false
	}
	s.adminState.Store(userID, isAdmin)
	return isAdmin
}

// establishSession renews the session token and stores the authenticated
// identity, then notifies subscribers.
func (s *AuthService) establishSession(ctx context.Context, userID int64, email string) error {
	// Regenerate session ID to prevent session fixation
	if err := s.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	s.sessions.Put(ctx, SessionKeyUserID, userID)
	s.sessions.Put(ctx, SessionKeyIsAdmin, true)

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          userID,
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", userID)
	}

	slog.Info("user logged in", "user_id", userID, "email", email)
	s.notify(Change{Type: ChangeSignedIn, UserID: userID, Email: email})

	// Privilege can change out-of-band; refresh the cached flag in the
	// background. Guard checks keep using the last-known value until this
	// completes (accepted transient staleness).
	s.RefreshAdminAsync(userID, email)
	return nil
}

// Logout revokes the session and clears cached state. Subsequent guard
// checks redirect to the login entry point.
func (s *AuthService) Logout(ctx context.Context) error {
	userID := s.sessions.GetInt64(ctx, SessionKeyUserID)

	if err := s.sessions.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}

	if userID > 0 {
		s.adminState.Delete(userID)
		slog.Info("user logged out", "user_id", userID)
		s.notify(Change{Type: ChangeSignedOut, UserID: userID})
	}
	return nil
}

// RefreshAdminAsync re-resolves the admin flag off the request path. The
// dashboard guard fires it per request and consults the previous result via
// AdminCached, so a revocation takes effect one request later without a
// blocking lookup.
func (s *AuthService) RefreshAdminAsync(userID int64, email string) {
	s.resolves.Add(1)
	go func() {
		defer s.resolves.Done()
		s.resolveAdmin(context.Background(), userID, email)
	}()
}

// AdminCached returns the last resolved admin flag for a user. The second
// return is false when no resolution has completed yet.
func (s *AuthService) AdminCached(userID int64) (bool, bool) {
	v, ok := s.adminState.Load(userID)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// Wait blocks until all in-flight admin re-resolutions complete. Used by
// tests and during shutdown.
func (s *AuthService) Wait() {
	s.resolves.Wait()
}
