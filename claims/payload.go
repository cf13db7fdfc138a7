package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is an ordered set of claims, where each name appears exactly once.
// It is built by Build and not modified after.
//
// Values are one of string, int32, int64, float64, bool, []string,
// []interface{} or json.RawMessage.
type Payload struct {
	names  []string
	values map[string]interface{}
}

func newPayload(size int) *Payload {
	return &Payload{
		names:  make([]string, 0, size),
		values: make(map[string]interface{}, size),
	}
}

// set adds the claim if it isn't already present. It returns false if the
// name was already taken, leaving the existing value in place.
func (p *Payload) set(name string, value interface{}) bool {
	if _, ok := p.values[name]; ok {
		return false
	}
	p.names = append(p.names, name)
	p.values[name] = value
	return true
}

// Get returns the value for the named claim.
func (p *Payload) Get(name string) (interface{}, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Has returns true if the named claim is in the payload.
func (p *Payload) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Names returns the claim names in payload order.
func (p *Payload) Names() []string {
	ret := make([]string, len(p.names))
	copy(ret, p.names)
	return ret
}

// Len returns the number of claims.
func (p *Payload) Len() int {
	return len(p.names)
}

// MarshalJSON serializes the payload as a JSON object, with members in
// payload order.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[name])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal claim %q: %w", name, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
