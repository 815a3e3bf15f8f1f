package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampKey marks an encoded store-native timestamp: {"$timestamp": "<RFC3339Nano>"}.
const timestampKey = "$timestamp"

// Timestamp is the store-native time value produced when decoding.
type Timestamp struct {
	t time.Time
}

// NewTimestamp wraps t as a store-native timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t.UTC()}
}

// ToTime returns the stored instant.
func (ts Timestamp) ToTime() time.Time {
	return ts.t
}

// MarshalJSON encodes the timestamp in its tagged form.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{timestampKey: ts.t.Format(time.RFC3339Nano)})
}

// encodeValue converts time values into Timestamp so they keep their type on
// the way back out. Other values are left to encoding/json.
func encodeValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return NewTimestamp(x)
	case *time.Time:
		if x == nil {
			return nil
		}
		return NewTimestamp(*x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = encodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

// encodeFields renders each field separately so callers can merge at the JSON level.
func encodeFields(fields map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(encodeValue(v))
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

// Encode renders a whole document body.
func Encode(fields map[string]any) ([]byte, error) {
	enc, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

// merge overlays patch onto body and returns the new body.
// INVARIANT: Fields absent from patch are carried over byte for byte
func merge(body []byte, patch map[string]any) ([]byte, error) {
	current := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &current); err != nil {
			return nil, fmt.Errorf("failed to read stored document: %w", err)
		}
	}
	enc, err := encodeFields(patch)
	if err != nil {
		return nil, err
	}
	for k, v := range enc {
		current[k] = v
	}
	return json.Marshal(current)
}

// Decode parses a document body. Numbers stay json.Number; tagged timestamps become Timestamp.
func Decode(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	for k, v := range raw {
		raw[k] = decodeValue(v)
	}
	return raw, nil
}

func decodeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if s, ok := x[timestampKey].(string); ok && len(x) == 1 {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return Timestamp{t: t}
			}
		}
		for k, e := range x {
			x[k] = decodeValue(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = decodeValue(e)
		}
		return x
	default:
		return v
	}
}
