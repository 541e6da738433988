// Package local signs dashboard users in against the user store and mints bearer tokens
// itself. It stands in for a hosted identity provider in development and tests.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/pr-admin-client/identity"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/rs/zerolog/log"
)

var _ identity.Provider = (*Provider)(nil)

type session struct {
	userID string
	email  string
	role   users.RoleType
}

func (s *session) Subject() string {
	return s.userID
}

type Provider struct {
	users   users.Repo
	issuer  *token.Issuer
	leeway  time.Duration
	nowFunc func() time.Time

	mu            sync.Mutex
	current       *session
	cachedToken   string
	cachedExpires time.Time

	listeners identity.Listeners
}

type Option func(*Provider)

func WithNowFunc(now func() time.Time) Option {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

// WithRefreshLeeway treats a cached token as stale this long before it expires
func WithRefreshLeeway(d time.Duration) Option {
	return func(p *Provider) {
		p.leeway = d
	}
}

func New(repo users.Repo, issuer *token.Issuer, options ...Option) *Provider {
	p := &Provider{
		users:  repo,
		issuer: issuer,
		leeway: 30 * time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.nowFunc == nil {
		p.nowFunc = time.Now
	}
	return p
}

// SignIn replaces the current session. Signing in while someone else is signed in ends their
// session first.
func (p *Provider) SignIn(ctx context.Context, email, password string) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := p.users.GetByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, apperrors.ErrUserBlocked
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := p.users.SetLastLogin(user.ID); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	}

	s := &session{userID: user.ID, email: user.Email, role: user.Role}

	p.mu.Lock()
	previous := p.current
	p.current = s
	p.cachedToken, p.cachedExpires = "", time.Time{}
	p.mu.Unlock()

	if previous != nil {
		p.listeners.Notify()
	}
	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Signed in")
	return s, nil
}

func (p *Provider) SignOut() {
	p.mu.Lock()
	hadSession := p.current != nil
	p.current = nil
	p.cachedToken, p.cachedExpires = "", time.Time{}
	p.mu.Unlock()

	if hadSession {
		log.Info().Msg("Signed out")
		p.listeners.Notify()
	}
}

func (p *Provider) CurrentIdentity() identity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	return p.current
}

// MintToken returns the cached token unless it is close to expiry or forceRefresh is set.
// A forced refresh re-reads the user, so a blocked or deleted user loses the session.
func (p *Provider) MintToken(ctx context.Context, id identity.Identity, forceRefresh bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	s, err := p.sessionFor(id)
	if err != nil {
		p.mu.Unlock()
		return "", err
	}
	if !forceRefresh && p.cachedToken != "" && p.nowFunc().Add(p.leeway).Before(p.cachedExpires) {
		cached := p.cachedToken
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	if forceRefresh {
		if err := p.checkStillAllowed(s); err != nil {
			return "", err
		}
	}

	raw, expiresAt, err := p.issuer.Issue(s.userID, s.email, string(s.role))
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != s {
		return "", apperrors.ErrSessionEnded
	}
	p.cachedToken, p.cachedExpires = raw, expiresAt
	return raw, nil
}

func (p *Provider) OnSessionEnded(fn func()) func() {
	return p.listeners.Add(fn)
}

func (p *Provider) sessionFor(id identity.Identity) (*session, error) {
	if p.current == nil {
		return nil, apperrors.ErrSessionEnded
	}
	s, ok := id.(*session)
	if !ok || s != p.current {
		return nil, apperrors.ErrIdentityMismatch
	}
	return s, nil
}

func (p *Provider) checkStillAllowed(s *session) error {
	user, err := p.users.GetByID(s.userID)
	switch {
	case err != nil:
		p.endSession(s)
		return apperrors.Wrapf(apperrors.ErrSessionEnded, "user %s no longer exists", s.userID)
	case user.Blocked:
		p.endSession(s)
		return apperrors.ErrUserBlocked
	}
	return nil
}

func (p *Provider) endSession(s *session) {
	p.mu.Lock()
	if p.current != s {
		p.mu.Unlock()
		return
	}
	p.current = nil
	p.cachedToken, p.cachedExpires = "", time.Time{}
	p.mu.Unlock()

	log.Warn().Str("user_id", s.userID).Msg("Session revoked")
	p.listeners.Notify()
}
