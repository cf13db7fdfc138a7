package signer

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/cryptosigner"
	"github.com/pardot/jwtissuer/issuer"
)

// FromCrypto returns a credential that wraps a crypto.Signer for the actual
// signing, along with the public JWK to verify it. keyID is used to set the
// `kid` (https://tools.ietf.org/html/rfc7517#section-4.5) field, as there's no
// good way to infer it from the given signer.
//
// The algorithm is picked from the key type: RS256 for RSA, ES256/384/512 by
// curve for ECDSA, and EdDSA for Ed25519.
func FromCrypto(signer crypto.Signer, keyID string) (issuer.SigningCredential, jose.JSONWebKey, error) {
	alg, err := algForKey(signer.Public())
	if err != nil {
		return issuer.SigningCredential{}, jose.JSONWebKey{}, err
	}

	cred := issuer.SigningCredential{
		KeyID:     keyID,
		Algorithm: alg,
		Key:       cryptosigner.Opaque(signer),
	}

	pub := jose.JSONWebKey{
		Key:       signer.Public(),
		KeyID:     keyID,
		Algorithm: string(alg),
		Use:       "sig",
	}

	return cred, pub, nil
}

func algForKey(pub crypto.PublicKey) (jose.SignatureAlgorithm, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return jose.RS256, nil
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return jose.ES256, nil
		case elliptic.P384():
			return jose.ES384, nil
		case elliptic.P521():
			return jose.ES512, nil
		}
		return "", fmt.Errorf("unsupported ECDSA curve: %s", k.Curve.Params().Name)
	case ed25519.PublicKey:
		return jose.EdDSA, nil
	}
	return "", fmt.Errorf("unsupported key type: %T", pub)
}
