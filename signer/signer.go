// Package signer provides go-jose backed implementations of the issuer's key
// material and signing collaborators.
package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3"
	"github.com/pardot/jwtissuer/issuer"
)

var _ issuer.Signer = (*JWSSigner)(nil)

// reservedHeaders are derived from the credential, and can't be overridden by
// header elements.
var reservedHeaders = map[string]bool{
	"alg":  true,
	"kid":  true,
	"jwk":  true,
	"crit": true,
	"b64":  true,
}

// JWSSigner signs tokens as a compact serialized JWS.
type JWSSigner struct{}

// NewJWS returns a JWSSigner.
func NewJWS() *JWSSigner {
	return &JWSSigner{}
}

// Sign the payload with the credential. The header elements are added to the
// protected header, alongside alg and kid from the credential.
func (j *JWSSigner) Sign(ctx context.Context, payload []byte, header issuer.Header, cred *issuer.SigningCredential) (string, error) {
	if cred == nil {
		return "", errors.New("no credential to sign with")
	}

	opts := &jose.SignerOptions{}
	for k, v := range header {
		if reservedHeaders[k] {
			return "", fmt.Errorf("header %q can't be set from header elements", k)
		}
		opts.WithHeader(jose.HeaderKey(k), v)
	}

	sk := jose.SigningKey{
		Algorithm: cred.Algorithm,
		Key: jose.JSONWebKey{
			Key:       cred.Key,
			KeyID:     cred.KeyID,
			Algorithm: string(cred.Algorithm),
			Use:       "sig",
		},
	}

	signed, err := sign(ctx, sk, opts, payload)
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

func sign(_ context.Context, signingKey jose.SigningKey, opts *jose.SignerOptions, data []byte) (signed []byte, err error) {
	signer, err := jose.NewSigner(signingKey, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	jws, err := signer.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	ser, err := jws.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	return []byte(ser), nil
}

func verifySignature(_ context.Context, verificationKeys []jose.JSONWebKey, jwt string) (payload []byte, err error) {
	jws, err := jose.ParseSigned(jwt)
	if err != nil {
		return nil, err
	}

	keyID := ""
	for _, sig := range jws.Signatures {
		keyID = sig.Header.KeyID
		break
	}

	for _, key := range verificationKeys {
		if keyID == "" || key.KeyID == keyID {
			if payload, err := jws.Verify(key); err == nil {
				return payload, nil
			}
		}
	}

	return nil, errors.New("failed to verify token signature")
}
