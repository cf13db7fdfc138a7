package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decimalRE matches plain decimal numbers with an optional exponent. Hex,
// underscores, Inf and NaN are not valid claim values.
var decimalRE = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

var errInvalidUTF8 = errors.New("value is not valid UTF-8")

// coerce converts a claim's string value in to the typed value for the
// payload.
func coerce(c Claim) (interface{}, error) {
	if !utf8.ValidString(c.Value) {
		return nil, errInvalidUTF8
	}
	switch c.ValueType {
	case ValueString:
		return c.Value, nil
	case ValueBoolean:
		return parseBool(c.Value)
	case ValueInteger32:
		i, err := strconv.ParseInt(strings.TrimSpace(c.Value), 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(i), nil
	case ValueInteger64:
		return strconv.ParseInt(strings.TrimSpace(c.Value), 10, 64)
	case ValueDouble:
		v := strings.TrimSpace(c.Value)
		if !decimalRE.MatchString(v) {
			return nil, fmt.Errorf("%q is not a decimal number", c.Value)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		// JSON has no representation for these
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a finite number", c.Value)
		}
		return f, nil
	case ValueJSON:
		return compactJSON(c.Value)
	}
	return nil, fmt.Errorf("unknown value type %d", int(c.ValueType))
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

// compactJSON validates s as a single JSON value and returns it compacted.
// Member order and number formatting are kept as is.
func compactJSON(s string) (json.RawMessage, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty JSON value")
	}
	if !utf8.ValidString(s) {
		return nil, errInvalidUTF8
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
