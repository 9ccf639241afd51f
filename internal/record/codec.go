package record

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Storage encoding for scalar values.
//
// Null, strings, numbers, and booleans use their plain JSON form. Time and
// Bytes have no JSON scalar form, so they are wrapped in a single-key tagged
// object. The encoding must round-trip every Value kind exactly - the store
// persists property values as TEXT and reconstructs them on fetch.

// taggedValue is the wire form for Time and Bytes values.
type taggedValue struct {
	Time  string `json:"$time,omitempty"`
	Bytes string `json:"$bytes,omitempty"`
}

// EncodeValue serializes a scalar value to its storage TEXT form.
func EncodeValue(v Value) (string, error) {
	switch val := v.(type) {
	case nil:
		// Treat an unset Value like an explicit Null for robustness.
		return "null", nil
	case Null:
		return "null", nil
	case String:
		data, err := json.Marshal(string(val))
		if err != nil {
			return "", fmt.Errorf("encode string value: %w", err)
		}
		return string(data), nil
	case Int:
		return strconv.FormatInt(int64(val), 10), nil
	case Float:
		s := strconv.FormatFloat(float64(val), 'g', -1, 64)
		// Keep integral floats distinguishable from Int on decode.
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s, nil
	case Bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case Time:
		data, err := json.Marshal(taggedValue{
			Time: time.Time(val).UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return "", fmt.Errorf("encode time value: %w", err)
		}
		return string(data), nil
	case Bytes:
		data, err := json.Marshal(taggedValue{
			Bytes: base64.StdEncoding.EncodeToString([]byte(val)),
		})
		if err != nil {
			return "", fmt.Errorf("encode bytes value: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown value type: %T", v)
	}
}

// DecodeValue parses the storage TEXT form back into a scalar value.
func DecodeValue(data string) (Value, error) {
	if data == "" {
		return nil, fmt.Errorf("empty value encoding")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("decode string value: %w", err)
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("decode bool value: %w", err)
		}
		return Bool(b), nil

	case 'n':
		if data != "null" {
			return nil, fmt.Errorf("malformed value encoding: %q", data)
		}
		return Null{}, nil

	case '{':
		return decodeTagged(data)

	default:
		return decodeNumber(data)
	}
}

// decodeTagged handles the single-key object forms for Time and Bytes.
func decodeTagged(data string) (Value, error) {
	var tagged taggedValue
	if err := json.Unmarshal([]byte(data), &tagged); err != nil {
		return nil, fmt.Errorf("decode tagged value: %w", err)
	}

	switch {
	case tagged.Time != "":
		ts, err := time.Parse(time.RFC3339Nano, tagged.Time)
		if err != nil {
			return nil, fmt.Errorf("decode time value: %w", err)
		}
		return Time(ts), nil
	case tagged.Bytes != "":
		raw, err := base64.StdEncoding.DecodeString(tagged.Bytes)
		if err != nil {
			return nil, fmt.Errorf("decode bytes value: %w", err)
		}
		return Bytes(raw), nil
	default:
		// Empty payloads are legal for both tags; Bytes is the only kind
		// whose zero value encodes to an empty field.
		return Bytes{}, nil
	}
}

// Plain maps a scalar value onto plain JSON-friendly Go types for display:
// nil, string, int64, float64, bool, RFC 3339 timestamps, and base64 for
// binary. Lossy by design - use EncodeValue where the kind must survive.
func Plain(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Time:
		return time.Time(val).UTC().Format(time.RFC3339Nano)
	case Bytes:
		return base64.StdEncoding.EncodeToString([]byte(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

// decodeNumber parses a bare number, preferring Int over Float.
// The encoder guarantees Float values carry a '.', exponent, or NaN/Inf
// marker, so an exact integer literal is always an Int.
func decodeNumber(data string) (Value, error) {
	if i, err := strconv.ParseInt(data, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(data, 64)
	if err != nil {
		return nil, fmt.Errorf("decode number value %q: %w", data, err)
	}
	return Float(f), nil
}
