// Package identity defines the contract between the request client and whatever signs the
// user in. Providers own the session lifecycle; consumers only read the current identity and
// ask it to mint bearer tokens.
package identity

import "context"

// Identity is an opaque handle to a signed-in principal
type Identity interface {
	Subject() string
}

type Provider interface {
	// CurrentIdentity returns nil when nobody is signed in
	CurrentIdentity() Identity

	// MintToken returns a bearer token for id. With forceRefresh false a cached token may be
	// returned; with forceRefresh true the provider must contact its backend.
	MintToken(ctx context.Context, id Identity, forceRefresh bool) (string, error)

	// OnSessionEnded registers fn to run whenever the current session ends
	OnSessionEnded(fn func()) (unsubscribe func())
}
