package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/pr-admin-client/internal/config"
	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
)

// Claims is the typed view of a verified bearer token
type Claims struct {
	ID        string    `json:"jti"`
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issuer mints and verifies short-lived bearer tokens for one issuer/audience pair
type Issuer struct {
	signer   Signer
	issuer   string
	audience string
	expiry   time.Duration
	nowFunc  func() time.Time
}

type IssuerOption func(*Issuer)

func WithIssuer(issuer string) IssuerOption {
	return func(i *Issuer) {
		i.issuer = issuer
	}
}

func WithAudience(audience string) IssuerOption {
	return func(i *Issuer) {
		i.audience = audience
	}
}

func WithExpiry(expiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.expiry = expiry
	}
}

func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(signer Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{signer: signer}
	for _, opt := range options {
		opt(i)
	}
	if i.expiry == 0 {
		i.expiry = 15 * time.Minute
	}
	if i.nowFunc == nil {
		i.nowFunc = time.Now
	}
	return i
}

// NewIssuerFromConfig builds an HS256 issuer from the shared secret, issuer, audience and
// expiry settings. Later options override the configured values.
func NewIssuerFromConfig(cfg config.SecurityConfig, options ...IssuerOption) *Issuer {
	base := []IssuerOption{
		WithIssuer(cfg.GetTokenIssuer()),
		WithAudience(cfg.GetTokenAudience()),
		WithExpiry(cfg.GetTokenExpiry()),
	}
	return NewIssuer(NewHMACSigner(cfg.GetJWTSecret()), append(base, options...)...)
}

// Issue signs a token for the subject and returns it with its expiry
func (i *Issuer) Issue(subject, email, role string) (string, time.Time, error) {
	now := i.nowFunc().Truncate(time.Second)
	expiresAt := now.Add(i.expiry)

	claims := jwtlib.MapClaims{
		"iss": i.issuer,
		"aud": i.audience,
		"sub": subject,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"jti": uuid.New().String(),
	}
	if email != "" {
		claims["email"] = email
	}
	if role != "" {
		claims["role"] = role
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token for %s: %w", subject, err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer, audience and expiry. An expired token is reported as
// ErrTokenExpired, anything else that fails as ErrInvalidToken.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, apperrors.ErrMissingToken
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(i.nowFunc),
		jwtlib.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwtlib.WithAudience(i.audience))
	}

	parsed, err := jwtlib.ParseWithClaims(raw, jwtlib.MapClaims{}, i.signer.GetVerificationKey, opts...)
	if err != nil {
		if apperrors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claimsFromMap(mapClaims), nil
}

func claimsFromMap(m jwtlib.MapClaims) *Claims {
	c := &Claims{}
	c.Subject, _ = m.GetSubject()
	c.ID, _ = m["jti"].(string)
	c.Email, _ = m["email"].(string)
	c.Role, _ = m["role"].(string)
	if iat, err := m.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := m.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c
}
