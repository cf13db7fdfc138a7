// Package issuer orchestrates issuing a signed JWT from a claims.Descriptor.
// It builds the payload, the extra JWT header elements, negotiates a signing
// credential with a KeyMaterialService and hands the lot to a Signer for
// compact serialization.
package issuer
