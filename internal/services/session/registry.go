package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chessrooms/chessrooms-go/internal/dependencies/clock"
	"github.com/chessrooms/chessrooms-go/internal/model"
	"github.com/chessrooms/chessrooms-go/internal/storage"
)

// Session binds an opaque bearer token to a stable player identity. The
// identity is derived from the token, never from the transport connection, so
// a player reconnecting with the same token is recognised as the same player.
type Session struct {
	Token     model.SessionToken
	PlayerID  model.PlayerID
	CreatedAt time.Time
}

// Registry owns the session table and player display names.
//
// Sessions persist for the process lifetime; there is no eviction policy.
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[model.SessionToken]*Session
}

// New creates a new session Registry
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "session")),
		sessions: make(map[model.SessionToken]*Session),
	}
}

// Resolve returns the session for a token, or model.ErrSessionNotFound.
func (r *Registry) Resolve(token model.SessionToken) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// Mint creates a fresh token and identity pair.
func (r *Registry) Mint() *Session {
	s := &Session{
		Token:     model.SessionToken(uuid.NewString()),
		PlayerID:  model.PlayerID(uuid.NewString()),
		CreatedAt: r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[s.Token] = s
	r.mu.Unlock()

	r.logger.Info("session minted", slog.String("player_id", string(s.PlayerID)))
	return s
}

// ResolveOrMint is what the gateway calls on every new connection: a known
// token resumes its session, anything else gets a fresh one.
func (r *Registry) ResolveOrMint(token model.SessionToken) *Session {
	if token != "" {
		if s, err := r.Resolve(token); err == nil {
			return s
		}
	}
	return r.Mint()
}

// SetName binds a display name to an identity. Idempotent; overwrites any
// prior name.
func (r *Registry) SetName(ctx context.Context, id model.PlayerID, name string) error {
	return r.storage.SavePlayerName(ctx, id, name)
}

// Name returns the display name bound to an identity, if any.
func (r *Registry) Name(ctx context.Context, id model.PlayerID) (string, bool) {
	name, err := r.storage.GetPlayerName(ctx, id)
	if err != nil {
		return "", false
	}
	return name, true
}

// IdentityByName resolves a display name to a stable identity. This is the
// explicit index the invitation broker uses instead of scanning connections.
func (r *Registry) IdentityByName(ctx context.Context, name string) (model.PlayerID, bool) {
	id, err := r.storage.GetPlayerByName(ctx, name)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			r.logger.Error("name lookup failed", slog.Any("error", err))
		}
		return "", false
	}
	return id, true
}
