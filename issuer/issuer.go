package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pardot/jwtissuer/claims"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const headerType = "typ"

func nilDescriptorError() error {
	return &claims.PayloadConstructionError{Cause: errors.New("descriptor is required")}
}

// Config sets configuration values for the issuer.
type Config struct {
	// AccessTokenJWTType is set as the typ header on access tokens, e.g
	// "at+jwt". If empty, no typ header is added.
	//
	// https://tools.ietf.org/html/rfc9068#section-2.1
	AccessTokenJWTType string `json:"accessTokenJWTType,omitempty"`

	// EmitScopesAsSpaceDelimitedString emits the scope claim as a single
	// space separated string, rather than a JSON array.
	EmitScopesAsSpaceDelimitedString bool `json:"emitScopesAsSpaceDelimitedString,omitempty"`

	// If specified, the issuer will use this function for determining time.
	Now func() time.Time `json:"-"`

	Logger logrus.FieldLogger `json:"-"`

	// If specified, issue counts are registered here.
	PrometheusRegistry prometheus.Registerer `json:"-"`
}

// Issuer creates signed tokens. It holds no per-token state, so it is safe
// to call from multiple goroutines as long as the collaborators are.
type Issuer struct {
	keys   KeyMaterialService
	signer Signer

	accessTokenJWTType string
	claimOpts          claims.Options

	now     func() time.Time
	logger  logrus.FieldLogger
	metrics *metrics
}

// New returns an Issuer that fetches credentials from keys, and signs with
// signer.
func New(c Config, keys KeyMaterialService, signer Signer) (*Issuer, error) {
	if keys == nil {
		return nil, errors.New("issuer: key material service cannot be nil")
	}
	if signer == nil {
		return nil, errors.New("issuer: signer cannot be nil")
	}

	now := c.Now
	if now == nil {
		now = time.Now
	}

	logger := c.Logger
	if logger == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		logger = l
	}

	m, err := newMetrics(c.PrometheusRegistry)
	if err != nil {
		return nil, fmt.Errorf("issuer: failed to register Prometheus metrics: %w", err)
	}

	return &Issuer{
		keys:               keys,
		signer:             signer,
		accessTokenJWTType: c.AccessTokenJWTType,
		claimOpts: claims.Options{
			EmitScopesAsSpaceDelimitedString: c.EmitScopesAsSpaceDelimitedString,
		},
		now:     now,
		logger:  logger,
		metrics: m,
	}, nil
}

// Issue creates the compact serialized JWT for the descriptor.
//
// A *claims.PayloadConstructionError is returned as-is if the payload can't be
// built. If no key matches the descriptor's allowed algorithms, the error
// wraps ErrNoCredentialAvailable and nothing is signed. Signer failures are
// returned as a *SigningError. The token is returned exactly as the signer
// produced it.
func (i *Issuer) Issue(ctx context.Context, d *claims.Descriptor) (string, error) {
	if d == nil {
		i.metrics.failed(claims.KindOther, failurePayload)
		return "", nilDescriptorError()
	}

	payload, err := i.Payload(d)
	if err != nil {
		i.metrics.failed(d.Kind, failurePayload)
		return "", err
	}

	header := i.HeaderElements(d)

	cred, err := i.credential(ctx, d.AllowedSigningAlgorithms)
	if err != nil {
		i.metrics.failed(d.Kind, failureCredential)
		return "", err
	}

	tok, err := i.signer.Sign(ctx, payload, header, cred)
	if err != nil {
		i.metrics.failed(d.Kind, failureSigning)
		var serr *SigningError
		if errors.As(err, &serr) {
			return "", err
		}
		return "", &SigningError{Cause: err}
	}

	i.metrics.issued(d.Kind)
	return tok, nil
}

// Payload returns the serialized JSON claim set for the descriptor, as of the
// issuer's current time.
func (i *Issuer) Payload(d *claims.Descriptor) ([]byte, error) {
	if d == nil {
		return nil, nilDescriptorError()
	}

	p, err := claims.Build(d, i.now(), i.claimOpts)
	if err != nil {
		l := i.logger.WithError(err).WithFields(logrus.Fields{
			"issuer": d.Issuer,
			"kind":   d.Kind.String(),
		})
		var perr *claims.PayloadConstructionError
		if errors.As(err, &perr) {
			l = l.WithField("claim", perr.Claim)
		}
		l.Error("failed to construct token payload")
		return nil, err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize token payload: %w", err)
	}
	return b, nil
}

// HeaderElements returns the extra header elements for the descriptor. Only
// access tokens get a typ, and only when one is configured.
func (i *Issuer) HeaderElements(d *claims.Descriptor) Header {
	h := Header{}
	if d != nil && d.Kind == claims.KindAccessToken && i.accessTokenJWTType != "" {
		h[headerType] = i.accessTokenJWTType
	}
	return h
}

func (i *Issuer) credential(ctx context.Context, allowed []string) (*SigningCredential, error) {
	cred, err := i.keys.SigningCredential(ctx, allowed)
	if err != nil {
		if errors.Is(err, ErrNoCredentialAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get signing credential: %w", err)
	}
	if cred == nil {
		return nil, fmt.Errorf("%w: key material service returned no credential", ErrNoCredentialAvailable)
	}
	if len(allowed) > 0 && !contains(allowed, string(cred.Algorithm)) {
		return nil, fmt.Errorf("%w: credential algorithm %s is not one of %v", ErrNoCredentialAvailable, cred.Algorithm, allowed)
	}
	return cred, nil
}

func contains(ss []string, s string) bool {
	for _, e := range ss {
		if e == s {
			return true
		}
	}
	return false
}
