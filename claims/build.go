package claims

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Options configures payload construction.
type Options struct {
	// EmitScopesAsSpaceDelimitedString emits the scope claim as a single
	// space separated string, rather than an array of strings.
	EmitScopesAsSpaceDelimitedString bool
}

// Build produces the payload for the descriptor, as of now. now is the only
// source of time used, it is truncated to whole seconds.
//
// Claims are emitted in this order, with the first occurrence of a name
// winning: iss, nbf, iat, exp, aud, cnf, scope, amr, then the remaining claim
// types in order of first appearance. Descriptor claims named for any of the
// reserved claims are only used by the scope and amr passes, otherwise they
// are dropped.
//
// A *PayloadConstructionError is returned if the descriptor is incomplete, the
// confirmation isn't valid JSON, or a typed claim can't be coerced.
func Build(d *Descriptor, now time.Time, opts Options) (*Payload, error) {
	if d == nil {
		return nil, &PayloadConstructionError{Cause: errors.New("descriptor is required")}
	}
	if d.Issuer == "" {
		return nil, &PayloadConstructionError{Claim: Issuer, Cause: errors.New("issuer is required")}
	}
	lifetime := int64(d.Lifetime / time.Second)
	if lifetime <= 0 {
		return nil, &PayloadConstructionError{Claim: Expiration, Cause: errors.New("lifetime must be at least one second")}
	}

	if err := checkUTF8(d); err != nil {
		return nil, err
	}

	p := newPayload(8 + len(d.Claims))

	iat := now.Unix()
	p.set(Issuer, d.Issuer)
	p.set(NotBefore, iat)
	p.set(IssuedAt, iat)
	p.set(Expiration, iat+lifetime)

	switch len(d.Audiences) {
	case 0:
	case 1:
		p.set(Audience, d.Audiences[0])
	default:
		aud := make([]string, len(d.Audiences))
		copy(aud, d.Audiences)
		p.set(Audience, aud)
	}

	if strings.TrimSpace(d.Confirmation) != "" {
		cnf, err := compactJSON(d.Confirmation)
		if err != nil {
			return nil, &PayloadConstructionError{Claim: Confirmation, ValueType: ValueJSON, Cause: err}
		}
		p.set(Confirmation, cnf)
	}

	if scopes := valuesOf(d.Claims, Scope); len(scopes) > 0 {
		if opts.EmitScopesAsSpaceDelimitedString {
			p.set(Scope, strings.Join(scopes, " "))
		} else {
			p.set(Scope, scopes)
		}
	}

	if amr := distinct(valuesOf(d.Claims, AuthenticationMethods)); len(amr) > 0 {
		p.set(AuthenticationMethods, amr)
	}

	for _, typ := range claimTypes(d.Claims) {
		v, err := claimValue(d.Claims, typ)
		if err != nil {
			return nil, err
		}
		p.set(typ, v)
	}

	return p, nil
}

// checkUTF8 makes sure every string that ends up in the payload is valid
// UTF-8, as encoding/json would otherwise replace invalid bytes.
func checkUTF8(d *Descriptor) error {
	if !utf8.ValidString(d.Issuer) {
		return &PayloadConstructionError{Claim: Issuer, Cause: errInvalidUTF8}
	}
	for _, a := range d.Audiences {
		if !utf8.ValidString(a) {
			return &PayloadConstructionError{Claim: Audience, Cause: errInvalidUTF8}
		}
	}
	for _, c := range d.Claims {
		if !utf8.ValidString(c.Type) {
			return &PayloadConstructionError{Claim: strings.ToValidUTF8(c.Type, "\uFFFD"), ValueType: c.ValueType, Cause: errors.New("claim type is not valid UTF-8")}
		}
		if !utf8.ValidString(c.Value) {
			return &PayloadConstructionError{Claim: c.Type, ValueType: c.ValueType, Cause: errInvalidUTF8}
		}
	}
	return nil
}

// claimTypes returns the distinct, non-reserved claim types in order of first
// appearance.
func claimTypes(cs []Claim) []string {
	seen := map[string]bool{}
	var ret []string
	for _, c := range cs {
		if IsReserved(c.Type) || seen[c.Type] {
			continue
		}
		seen[c.Type] = true
		ret = append(ret, c.Type)
	}
	return ret
}

// claimValue returns the coerced value for all claims of typ. A single claim
// is a scalar, more than one is an array in descriptor order.
func claimValue(cs []Claim, typ string) (interface{}, error) {
	var matched []Claim
	for _, c := range cs {
		if c.Type == typ {
			matched = append(matched, c)
		}
	}

	if len(matched) == 1 {
		v, err := coerce(matched[0])
		if err != nil {
			return nil, &PayloadConstructionError{Claim: typ, ValueType: matched[0].ValueType, Cause: err}
		}
		return v, nil
	}

	ret := make([]interface{}, len(matched))
	for i, c := range matched {
		v, err := coerce(c)
		if err != nil {
			return nil, &PayloadConstructionError{Claim: typ, ValueType: c.ValueType, Cause: err}
		}
		ret[i] = v
	}
	return ret, nil
}

func valuesOf(cs []Claim, typ string) []string {
	var ret []string
	for _, c := range cs {
		if c.Type == typ {
			ret = append(ret, c.Value)
		}
	}
	return ret
}

// distinct removes duplicates, keeping the first occurrence of each value.
func distinct(ss []string) []string {
	seen := map[string]bool{}
	var ret []string
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		ret = append(ret, s)
	}
	return ret
}
