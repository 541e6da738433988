package cli

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/pr-admin-client/authclient"
	"github.com/jrsteele09/pr-admin-client/backend"
	"github.com/jrsteele09/pr-admin-client/identity"
	"github.com/jrsteele09/pr-admin-client/identity/local"
	"github.com/jrsteele09/pr-admin-client/identity/oidc"
	"github.com/jrsteele09/pr-admin-client/internal/config"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
	fakeuserrepo "github.com/jrsteele09/pr-admin-client/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

// session is one signed-in identity and the clients built on it
type session struct {
	backend  *backend.Client
	http     *authclient.Client
	registry *prometheus.Registry
	out      *printer
	signOut  func()
}

func (s *session) Close() {
	s.http.Close()
	s.signOut()
}

type signedInProvider interface {
	identity.Provider
	SignOut()
}

// openSession signs in with the configured identity mode and builds the backend client
func openSession(c *cli.Context) (*session, error) {
	flags := ParseGlobalFlags(c)
	cfg := configFrom(c)

	out, err := newPrinter(c.App.Writer, flags.Output)
	if err != nil {
		return nil, err
	}

	var provider signedInProvider
	switch flags.Identity {
	case config.IdentityModeLocal:
		provider, err = signInLocal(c, cfg, flags)
	case config.IdentityModeOIDC:
		provider, err = signInOIDC(c, cfg, flags)
	default:
		return nil, fmt.Errorf("unknown identity mode %q (local, oidc)", flags.Identity)
	}
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	httpClient := authclient.NewFromConfig(provider, cfg, authclient.WithMetrics(authclient.NewMetrics(registry)))
	client, err := backend.New(flags.Backend, httpClient)
	if err != nil {
		httpClient.Close()
		provider.SignOut()
		return nil, err
	}

	return &session{
		backend:  client,
		http:     httpClient,
		registry: registry,
		out:      out,
		signOut:  provider.SignOut,
	}, nil
}

// signInLocal mints tokens with the shared JWT secret for an account held in memory. The
// backend trusts the claims, so the account only has to exist on this side.
func signInLocal(c *cli.Context, cfg config.Config, flags *GlobalFlags) (signedInProvider, error) {
	if flags.Password == "" {
		return nil, errors.New("local sign-in needs --login-password or ADMIN_PASSWORD")
	}
	repo := fakeuserrepo.NewFakeUserRepo()
	if _, err := users.SeedAdmin(repo, flags.Email, flags.Password); err != nil {
		return nil, err
	}

	provider := local.New(repo, token.NewIssuerFromConfig(cfg))
	if _, err := provider.SignIn(c.Context, flags.Email, flags.Password); err != nil {
		return nil, fmt.Errorf("sign in as %s: %w", flags.Email, err)
	}
	return provider, nil
}

// signInOIDC prefers a refresh token and falls back to the password grant
func signInOIDC(c *cli.Context, cfg config.Config, flags *GlobalFlags) (signedInProvider, error) {
	if cfg.GetOIDCIssuer() == "" {
		return nil, errors.New("oidc sign-in needs OIDC_ISSUER")
	}
	provider, err := oidc.Discover(c.Context, cfg.GetOIDCIssuer(), cfg.GetOIDCClientID(), cfg.GetOIDCClientSecret(), cfg.GetOIDCScopes())
	if err != nil {
		return nil, err
	}

	if refreshToken := cfg.GetOIDCRefreshToken(); refreshToken != "" {
		_, err = provider.SignInWithRefreshToken(c.Context, refreshToken)
	} else {
		_, err = provider.SignInWithPassword(c.Context, flags.Email, flags.Password)
	}
	if err != nil {
		return nil, fmt.Errorf("oidc sign in: %w", err)
	}
	return provider, nil
}

// withSession opens a session for the duration of action
func withSession(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		return action(c, s)
	}
}
