// Package claims builds the canonical JWT claim set for tokens issued by an
// OpenID Connect / OAuth2 provider. It turns an in-memory token Descriptor
// into an ordered Payload, resolving single vs. multi-valued claims, typed
// claim values and the protocol-reserved claim names.
//
// https://openid.net/specs/openid-connect-core-1_0.html#IDToken
// https://tools.ietf.org/html/rfc9068#section-2.2
package claims
