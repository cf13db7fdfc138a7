package claims

import "fmt"

// PayloadConstructionError indicates the descriptor could not be turned in to
// a payload, e.g. an unparseable confirmation or a typed claim whose value
// doesn't match its type. It is a caller bug, retrying won't help.
type PayloadConstructionError struct {
	// Claim is the name of the claim that failed
	Claim string
	// ValueType is the declared type of the value that failed to coerce
	ValueType ValueType
	Cause     error
}

func (p *PayloadConstructionError) Error() string {
	if p.Cause == nil {
		return fmt.Sprintf("constructing claim %q (%s)", p.Claim, p.ValueType)
	}
	return fmt.Sprintf("constructing claim %q (%s): %v", p.Claim, p.ValueType, p.Cause)
}

func (p *PayloadConstructionError) Unwrap() error {
	return p.Cause
}
