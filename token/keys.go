package token

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	RS256 = "RS256"

	minRSABits = 2048
)

// KeyPair is an RSA signing key and the id published for it in the JWKS
type KeyPair struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// JWKS is the document an OIDC issuer serves at its jwks_uri
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK is the public half of an RSA signing key
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

// GenerateRSAKeyPair creates a key of at least 2048 bits
func GenerateRSAKeyPair(keyID string, bits int) (*KeyPair, error) {
	bits = max(bits, minRSABits)
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate %d bit RSA key", bits)
	}
	return &KeyPair{KeyID: keyID, PrivateKey: key}, nil
}

func (kp *KeyPair) PublicKey() *rsa.PublicKey {
	return &kp.PrivateKey.PublicKey
}

func (kp *KeyPair) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodRS256
}

// ToJWK encodes the public key with base64url modulus and exponent
func (kp *KeyPair) ToJWK() (*JWK, error) {
	if kp.PrivateKey == nil {
		return nil, errors.New("key pair has no key")
	}
	pub := kp.PublicKey()
	return &JWK{
		Kty: "RSA",
		Use: "sig",
		Kid: kp.KeyID,
		Alg: RS256,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}, nil
}
