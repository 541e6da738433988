// Package oidc keeps an OpenID Connect session and mints its id_token as the bearer token.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/pr-admin-client/identity"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

var _ identity.Provider = (*Provider)(nil)

type session struct {
	subject      string
	email        string
	refreshToken string
	idToken      string
	expiry       time.Time
}

func (s *session) Subject() string {
	return s.subject
}

type Provider struct {
	oauth2Config *oauth2.Config
	verifier     *gooidc.IDTokenVerifier
	httpClient   *http.Client
	leeway       time.Duration
	nowFunc      func() time.Time

	mu      sync.Mutex
	current *session

	listeners identity.Listeners
}

type Option func(*Provider)

// WithHTTPClient sets the client used for discovery, key fetches and token requests
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

// WithRefreshLeeway treats a cached id_token as stale this long before it expires
func WithRefreshLeeway(d time.Duration) Option {
	return func(p *Provider) {
		p.leeway = d
	}
}

func New(cfg *oauth2.Config, verifier *gooidc.IDTokenVerifier, options ...Option) *Provider {
	p := &Provider{
		oauth2Config: cfg,
		verifier:     verifier,
		leeway:       30 * time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.nowFunc == nil {
		p.nowFunc = time.Now
	}
	return p
}

// Discover builds a provider from the issuer's discovery document
func Discover(ctx context.Context, issuer, clientID, clientSecret string, scopes []string, options ...Option) (*Provider, error) {
	p := New(nil, nil, options...)

	discovered, err := gooidc.NewProvider(p.clientContext(ctx), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC issuer %s: %w", issuer, err)
	}

	p.oauth2Config = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     discovered.Endpoint(),
		Scopes:       scopes,
	}
	p.verifier = discovered.Verifier(&gooidc.Config{ClientID: clientID})
	return p, nil
}

// SignInWithRefreshToken starts a session from a previously issued refresh token
func (p *Provider) SignInWithRefreshToken(ctx context.Context, refreshToken string) (identity.Identity, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	tok, err := p.refresh(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh token sign-in failed: %w", err)
	}
	return p.startSession(ctx, tok)
}

// SignInWithPassword uses the resource owner password grant
func (p *Provider) SignInWithPassword(ctx context.Context, username, password string) (identity.Identity, error) {
	tok, err := p.oauth2Config.PasswordCredentialsToken(p.clientContext(ctx), username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("password sign-in failed: %w", err)
	}
	return p.startSession(ctx, tok)
}

func (p *Provider) SignOut() {
	p.mu.Lock()
	hadSession := p.current != nil
	p.current = nil
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

// MintToken returns the session's id_token while it is valid. A forced refresh, or an
// id_token about to expire, redeems the refresh token. An invalid_grant answer means the
// session was revoked upstream, so the session ends.
func (p *Provider) MintToken(ctx context.Context, id identity.Identity, forceRefresh bool) (string, error) {
	p.mu.Lock()
	s, err := p.sessionFor(id)
	if err != nil {
		p.mu.Unlock()
		return "", err
	}
	if !forceRefresh && s.idToken != "" && p.nowFunc().Add(p.leeway).Before(s.expiry) {
		cached := s.idToken
		p.mu.Unlock()
		return cached, nil
	}
	refreshToken := s.refreshToken
	p.mu.Unlock()

	tok, err := p.refresh(ctx, refreshToken)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			p.endSession(s)
			return "", apperrors.Wrapf(apperrors.ErrSessionEnded, "refresh token rejected")
		}
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	refreshed, err := p.verify(ctx, tok)
	if err != nil {
		return "", err
	}
	if refreshed.subject != s.subject {
		return "", fmt.Errorf("%w: refreshed id_token is for %s, session is %s", apperrors.ErrInvalidToken, refreshed.subject, s.subject)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != s {
		return "", apperrors.ErrSessionEnded
	}
	s.idToken, s.expiry, s.refreshToken = refreshed.idToken, refreshed.expiry, refreshed.refreshToken
	return s.idToken, nil
}

func (p *Provider) OnSessionEnded(fn func()) func() {
	return p.listeners.Add(fn)
}

func (p *Provider) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := p.oauth2Config.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

func (p *Provider) startSession(ctx context.Context, tok *oauth2.Token) (identity.Identity, error) {
	s, err := p.verify(ctx, tok)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	previous := p.current
	p.current = s
	p.mu.Unlock()

	if previous != nil {
		p.listeners.Notify()
	}
	log.Info().Str("subject", s.subject).Str("email", s.email).Msg("Signed in")
	return s, nil
}

func (p *Provider) verify(ctx context.Context, tok *oauth2.Token) (*session, error) {
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, apperrors.ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(p.clientContext(ctx), rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read id_token claims: %w", err)
	}

	return &session{
		subject:      idToken.Subject,
		email:        claims.Email,
		refreshToken: tok.RefreshToken,
		idToken:      rawIDToken,
		expiry:       idToken.Expiry,
	}, nil
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

func (p *Provider) endSession(s *session) {
	p.mu.Lock()
	if p.current != s {
		p.mu.Unlock()
		return
	}
	p.current = nil
	p.mu.Unlock()

	log.Warn().Str("subject", s.subject).Msg("Session revoked by identity provider")
	p.listeners.Notify()
}

func (p *Provider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return gooidc.ClientContext(ctx, p.httpClient)
}
