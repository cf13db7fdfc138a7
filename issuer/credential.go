package issuer

import (
	"context"

	"github.com/go-jose/go-jose/v3"
)

// SigningCredential is the key used to sign a single token. It is owned by
// the KeyMaterialService, the issuer only borrows it for one signing call.
type SigningCredential struct {
	// KeyID is set as the kid header, if not empty
	KeyID string
	// Algorithm is the JWS algorithm the key signs with
	Algorithm jose.SignatureAlgorithm
	// Key is the private key, in any form go-jose accepts for signing. This
	// includes a jose.OpaqueSigner for keys that can't be exported.
	Key interface{}
}

// Header is the set of extra JWT header elements. alg and kid are set by the
// Signer from the credential.
type Header map[string]interface{}

// KeyMaterialService provides signing credentials.
type KeyMaterialService interface {
	// SigningCredential returns a credential whose algorithm is in allowed,
	// or any credential if allowed is empty. If there is none, an error
	// wrapping ErrNoCredentialAvailable should be returned.
	SigningCredential(ctx context.Context, allowed []string) (*SigningCredential, error)
}

// Signer produces a compact serialized JWS.
type Signer interface {
	// Sign signs payload with the credential, adding the header elements to
	// the protected header.
	Sign(ctx context.Context, payload []byte, header Header, cred *SigningCredential) (string, error)
}
