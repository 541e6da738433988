package oidc_test

import (
	"context"
	"crypto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/pr-admin-client/identity/oidc"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "dashboard"
	testClientSecret = "dashboard-secret"
	testSubject      = "user-42"
	testRefreshToken = "refresh-1"
)

// fakeIssuer is a minimal OpenID Connect issuer: discovery, JWKS and a token endpoint.
type fakeIssuer struct {
	server      *httptest.Server
	signer      *token.KeyPairSigner
	publicKey   crypto.PublicKey
	refreshes   atomic.Int32
	revoked     atomic.Bool
	omitIDToken atomic.Bool
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()

	kp, err := token.GenerateRSAKeyPair("test-key", 2048)
	require.NoError(t, err)
	f := &fakeIssuer{signer: token.NewKeyPairSigner(kp), publicKey: kp.PublicKey()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                                f.server.URL,
			"authorization_endpoint":                f.server.URL + "/authorize",
			"token_endpoint":                        f.server.URL + "/token",
			"jwks_uri":                              f.server.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		jwks, err := f.signer.GetJWKS()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, jwks)
	})
	mux.HandleFunc("POST /token", f.handleToken)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIssuer) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch r.PostForm.Get("grant_type") {
	case "refresh_token":
		if f.revoked.Load() || r.PostForm.Get("refresh_token") != testRefreshToken {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		f.refreshes.Add(1)
	case "password":
		if r.PostForm.Get("username") != "jane" || r.PostForm.Get("password") != "Valid1Password" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	resp := map[string]any{
		"access_token":  "access",
		"token_type":    "Bearer",
		"expires_in":    3600,
		"refresh_token": testRefreshToken,
	}
	if !f.omitIDToken.Load() {
		issuer := token.NewIssuer(f.signer,
			token.WithIssuer(f.server.URL),
			token.WithAudience(testClientID),
			token.WithExpiry(time.Hour),
		)
		idToken, _, err := issuer.Issue(testSubject, "jane@example.com", "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["id_token"] = idToken
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeIssuer) provider() *oidc.Provider {
	cfg := &oauth2.Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  f.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	keySet := &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{f.publicKey}}
	verifier := gooidc.NewVerifier(f.server.URL, keySet, &gooidc.Config{ClientID: testClientID})
	return oidc.New(cfg, verifier)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithRefreshTokenAndMint(t *testing.T) {
	f := newFakeIssuer(t)
	p := f.provider()
	ctx := context.Background()

	id, err := p.SignInWithRefreshToken(ctx, testRefreshToken)
	require.NoError(t, err)
	require.Equal(t, testSubject, id.Subject())
	require.Equal(t, int32(1), f.refreshes.Load())

	cached, err := p.MintToken(ctx, id, false)
	require.NoError(t, err)
	require.NotEmpty(t, cached)
	require.Equal(t, int32(1), f.refreshes.Load(), "a valid id_token is reused")

	forced, err := p.MintToken(ctx, id, true)
	require.NoError(t, err)
	require.NotEqual(t, cached, forced)
	require.Equal(t, int32(2), f.refreshes.Load())
}

func TestDiscover(t *testing.T) {
	f := newFakeIssuer(t)
	ctx := context.Background()

	p, err := oidc.Discover(ctx, f.server.URL, testClientID, testClientSecret, []string{"openid"},
		oidc.WithHTTPClient(f.server.Client()))
	require.NoError(t, err)

	id, err := p.SignInWithPassword(ctx, "jane", "Valid1Password")
	require.NoError(t, err)
	require.Equal(t, testSubject, id.Subject())

	_, err = p.SignInWithPassword(ctx, "jane", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRevokedRefreshTokenEndsSession(t *testing.T) {
	f := newFakeIssuer(t)
	p := f.provider()
	ctx := context.Background()

	id, err := p.SignInWithRefreshToken(ctx, testRefreshToken)
	require.NoError(t, err)

	var ended atomic.Int32
	p.OnSessionEnded(func() { ended.Add(1) })

	f.revoked.Store(true)
	_, err = p.MintToken(ctx, id, true)
	require.ErrorIs(t, err, apperrors.ErrSessionEnded)
	require.Equal(t, int32(1), ended.Load())
	require.Nil(t, p.CurrentIdentity())

	_, err = p.MintToken(ctx, id, false)
	require.ErrorIs(t, err, apperrors.ErrSessionEnded)
}

func TestMissingIDToken(t *testing.T) {
	f := newFakeIssuer(t)
	f.omitIDToken.Store(true)

	_, err := f.provider().SignInWithRefreshToken(context.Background(), testRefreshToken)
	require.ErrorIs(t, err, apperrors.ErrMissingIDToken)
}

func TestSignOut(t *testing.T) {
	f := newFakeIssuer(t)
	p := f.provider()
	ctx := context.Background()

	_, err := p.SignInWithRefreshToken(ctx, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = p.SignInWithRefreshToken(ctx, testRefreshToken)
	require.NoError(t, err)

	ended := 0
	p.OnSessionEnded(func() { ended++ })
	p.SignOut()
	p.SignOut()
	require.Equal(t, 1, ended)
	require.Nil(t, p.CurrentIdentity())
}
