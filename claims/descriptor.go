package claims

import (
	"fmt"
	"strings"
	"time"
)

// Reserved claim names. These are always computed from the Descriptor, a
// caller supplied Claim sharing one of these names never reaches the payload
// directly.
const (
	Issuer                = "iss"
	NotBefore             = "nbf"
	IssuedAt              = "iat"
	Expiration            = "exp"
	Audience              = "aud"
	Confirmation          = "cnf"
	Scope                 = "scope"
	AuthenticationMethods = "amr"
)

var reservedNames = map[string]bool{
	Issuer:                true,
	NotBefore:             true,
	IssuedAt:              true,
	Expiration:            true,
	Audience:              true,
	Confirmation:          true,
	Scope:                 true,
	AuthenticationMethods: true,
}

// IsReserved returns true if name is computed by the builder rather than
// copied from the descriptor's claims.
func IsReserved(name string) bool {
	return reservedNames[name]
}

// ValueType tags how a Claim's string value is represented in the payload.
type ValueType int

const (
	ValueString ValueType = iota
	ValueBoolean
	ValueInteger32
	ValueInteger64
	ValueDouble
	ValueJSON
)

// valueTypeNames maps the accepted textual forms to a ValueType. The XML
// schema URIs are what most claims libraries emit as value types.
var valueTypeNames = map[string]ValueType{
	"string":    ValueString,
	"boolean":   ValueBoolean,
	"integer":   ValueInteger32,
	"integer32": ValueInteger32,
	"integer64": ValueInteger64,
	"double":    ValueDouble,
	"json":      ValueJSON,

	"http://www.w3.org/2001/XMLSchema#string":    ValueString,
	"http://www.w3.org/2001/XMLSchema#boolean":   ValueBoolean,
	"http://www.w3.org/2001/XMLSchema#integer":   ValueInteger32,
	"http://www.w3.org/2001/XMLSchema#integer32": ValueInteger32,
	"http://www.w3.org/2001/XMLSchema#integer64": ValueInteger64,
	"http://www.w3.org/2001/XMLSchema#double":    ValueDouble,
}

func (v ValueType) String() string {
	switch v {
	case ValueString:
		return "string"
	case ValueBoolean:
		return "boolean"
	case ValueInteger32:
		return "integer32"
	case ValueInteger64:
		return "integer64"
	case ValueDouble:
		return "double"
	case ValueJSON:
		return "json"
	}
	return fmt.Sprintf("ValueType(%d)", int(v))
}

func (v ValueType) MarshalText() ([]byte, error) {
	if v < ValueString || v > ValueJSON {
		return nil, fmt.Errorf("unknown claim value type %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *ValueType) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*v = ValueString
		return nil
	}
	vt, ok := valueTypeNames[strings.ToLower(s)]
	if !ok {
		return fmt.Errorf("unknown claim value type %q", s)
	}
	*v = vt
	return nil
}

// Kind is the kind of token being issued. It only influences the JWT header.
type Kind int

const (
	KindOther Kind = iota
	KindAccessToken
	KindIdentityToken
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindAccessToken:
		return "access_token"
	case KindIdentityToken:
		return "id_token"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < KindOther || k > KindIdentityToken {
		return nil, fmt.Errorf("unknown token kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "other":
		*k = KindOther
	case "access_token":
		*k = KindAccessToken
	case "id_token":
		*k = KindIdentityToken
	default:
		return fmt.Errorf("unknown token kind %q", string(b))
	}
	return nil
}

// Claim is a single named value asserted about the token subject. Multiple
// claims may share a Type, in which case they are emitted as an array.
type Claim struct {
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	ValueType ValueType `json:"valueType,omitempty"`
}

// Descriptor is the abstract description of a token to issue. It should be
// treated as immutable once handed to Build.
type Descriptor struct {
	// Issuer is the iss claim. Required.
	Issuer string
	// Lifetime is added to the issue time to get the exp claim. It is
	// truncated to whole seconds, and must be at least one second.
	Lifetime time.Duration
	// Audiences in order. A single audience is emitted as a string, more than
	// one as an array, none omits the claim.
	Audiences []string
	// Confirmation is the JSON text for the cnf (proof-of-possession) claim.
	// Empty means no confirmation.
	Confirmation string
	// Claims in order.
	Claims []Claim
	// AllowedSigningAlgorithms restricts the key material used to sign the
	// token. Empty means any algorithm the key service supports.
	AllowedSigningAlgorithms []string
	// Kind of token.
	Kind Kind
}
