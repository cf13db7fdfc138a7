package signer

import (
	"context"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/pardot/jwtissuer/issuer"
)

var _ issuer.KeyMaterialService = (*StaticKeys)(nil)

// StaticKeys uses a fixed set of credentials to serve signing requests
type StaticKeys struct {
	credentials      []issuer.SigningCredential
	verificationKeys []jose.JSONWebKey
}

// NewStatic returns a StaticKeys with the provided keys. Credentials are
// offered in the order given, the first one with an allowed algorithm is
// used.
func NewStatic(credentials []issuer.SigningCredential, verificationKeys []jose.JSONWebKey) *StaticKeys {
	creds := make([]issuer.SigningCredential, len(credentials))
	copy(creds, credentials)
	vks := make([]jose.JSONWebKey, len(verificationKeys))
	copy(vks, verificationKeys)
	return &StaticKeys{
		credentials:      creds,
		verificationKeys: vks,
	}
}

// SigningCredential returns the first credential whose algorithm is allowed,
// or the first credential if allowed is empty.
func (s *StaticKeys) SigningCredential(_ context.Context, allowed []string) (*issuer.SigningCredential, error) {
	for _, c := range s.credentials {
		if len(allowed) == 0 || algAllowed(allowed, c.Algorithm) {
			cred := c
			return &cred, nil
		}
	}
	return nil, fmt.Errorf("%w: no key for algorithms %v", issuer.ErrNoCredentialAvailable, allowed)
}

// PublicKeys returns a keyset of all valid signer public keys considered
// valid for signed tokens
func (s *StaticKeys) PublicKeys(_ context.Context) (*jose.JSONWebKeySet, error) {
	return &jose.JSONWebKeySet{
		Keys: s.verificationKeys,
	}, nil
}

// VerifySignature verifies the signature given token against the current signers
func (s *StaticKeys) VerifySignature(ctx context.Context, jwt string) (payload []byte, err error) {
	return verifySignature(ctx, s.verificationKeys, jwt)
}

func algAllowed(allowed []string, alg jose.SignatureAlgorithm) bool {
	for _, a := range allowed {
		if a == string(alg) {
			return true
		}
	}
	return false
}
