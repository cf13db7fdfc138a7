package main

import (
	"crypto"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pardot/jwtissuer/claims"
	"github.com/pardot/jwtissuer/issuer"
	"github.com/pkg/errors"
)

// descriptorFile is the on-disk form of a token descriptor.
type descriptorFile struct {
	Issuer    string   `json:"issuer"`
	Lifetime  string   `json:"lifetime"`
	Audiences []string `json:"audiences"`
	// Confirmation may be written as a YAML/JSON object, or as a string
	// holding the JSON text.
	Confirmation             json.RawMessage `json:"confirmation"`
	Claims                   []claims.Claim  `json:"claims"`
	AllowedSigningAlgorithms []string        `json:"allowedSigningAlgorithms"`
	Kind                     claims.Kind     `json:"kind"`
}

func loadConfig(b []byte) (issuer.Config, error) {
	var cfg issuer.Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return issuer.Config{}, errors.Wrap(err, "failed to parse config")
	}
	return cfg, nil
}

func loadDescriptor(b []byte) (*claims.Descriptor, error) {
	var df descriptorFile
	if err := yaml.Unmarshal(b, &df); err != nil {
		return nil, errors.Wrap(err, "failed to parse descriptor")
	}

	lifetime, err := time.ParseDuration(df.Lifetime)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid lifetime %q", df.Lifetime)
	}

	var cnf string
	if len(df.Confirmation) > 0 && string(df.Confirmation) != "null" {
		if df.Confirmation[0] == '"' {
			if err := json.Unmarshal(df.Confirmation, &cnf); err != nil {
				return nil, errors.Wrap(err, "invalid confirmation")
			}
		} else {
			cnf = string(df.Confirmation)
		}
	}

	return &claims.Descriptor{
		Issuer:                   df.Issuer,
		Lifetime:                 lifetime,
		Audiences:                df.Audiences,
		Confirmation:             cnf,
		Claims:                   df.Claims,
		AllowedSigningAlgorithms: df.AllowedSigningAlgorithms,
		Kind:                     df.Kind,
	}, nil
}

// parsePrivateKey reads the first PEM block in b as a PKCS#8, PKCS#1 or SEC 1
// private key.
func parsePrivateKey(b []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("no PEM data found in key")
	}

	var (
		key interface{}
		err error
	)
	switch block.Type {
	case "PRIVATE KEY":
		key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case "RSA PRIVATE KEY":
		key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case "EC PRIVATE KEY":
		key, err = x509.ParseECPrivateKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	s, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("key of type %T can't sign", key)
	}
	return s, nil
}
