// Package timestamp normalizes the timestamp-like values found in stored
// payment documents into a single in-memory instant.
package timestamp

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the shape of a stored timestamp-like value.
type Kind int

const (
	KindAbsent Kind = iota
	KindStore
	KindNative
	KindSeconds
	KindRaw
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindStore:
		return "store"
	case KindNative:
		return "native"
	case KindSeconds:
		return "seconds"
	default:
		return "raw"
	}
}

// Converter is implemented by document-store native timestamp types.
type Converter interface {
	ToTime() time.Time
}

// Instant is either a concrete point in time or Unknown.
type Instant struct {
	t  time.Time
	ok bool
}

// Unknown is the Instant for absent or unparsable values.
var Unknown = Instant{}

// Of wraps a concrete time.
func Of(t time.Time) Instant {
	return Instant{t: t, ok: true}
}

// Time returns the instant and whether it is known.
func (i Instant) Time() (time.Time, bool) {
	return i.t, i.ok
}

// Known reports whether the instant carries a concrete time.
func (i Instant) Known() bool {
	return i.ok
}

// Format renders the instant in loc using layout, or fallback when unknown.
func (i Instant) Format(layout string, loc *time.Location, fallback string) string {
	if !i.ok {
		return fallback
	}
	if loc != nil {
		return i.t.In(loc).Format(layout)
	}
	return i.t.Format(layout)
}

// dateLayouts are tried in order for string values.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Jan 2, 2006",
	"January 2, 2006",
}

// Classify reports which variant v belongs to.
// PRE: none
// POST: Returns exactly one Kind; absence is checked first
// INVARIANT: Order is absent, store, native, seconds, raw
func Classify(v any) Kind {
	if isAbsent(v) {
		return KindAbsent
	}
	if _, ok := v.(Converter); ok {
		return KindStore
	}
	switch v.(type) {
	case time.Time, *time.Time:
		return KindNative
	}
	if _, ok := secondsField(v); ok {
		return KindSeconds
	}
	return KindRaw
}

// Normalize converts any supported timestamp shape into an Instant.
// PRE: none
// POST: Returns Unknown for absent or unparsable input; never panics
func Normalize(v any) Instant {
	switch Classify(v) {
	case KindAbsent:
		return Unknown
	case KindStore:
		return Of(v.(Converter).ToTime())
	case KindNative:
		if p, ok := v.(*time.Time); ok {
			return Of(*p)
		}
		return Of(v.(time.Time))
	case KindSeconds:
		m := v.(map[string]any)
		secs, _ := secondsField(m)
		nanos, _ := toFloat(firstOf(m, "nanoseconds", "nanos"))
		whole, frac := math.Modf(secs)
		return Of(time.Unix(int64(whole), int64(frac*1e9)+int64(nanos)))
	default:
		return parseRaw(v)
	}
}

func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *time.Time:
		return x == nil
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func secondsField(v any) (float64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	raw, present := m["seconds"]
	if !present {
		return 0, false
	}
	return toFloat(raw)
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// parseRaw handles strings (date layouts) and numbers (epoch milliseconds).
func parseRaw(v any) Instant {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Of(t)
			}
		}
		if ms, err := strconv.ParseFloat(s, 64); err == nil {
			return fromMillis(ms)
		}
		return Unknown
	}
	if ms, ok := toFloat(v); ok {
		return fromMillis(ms)
	}
	return Unknown
}

func fromMillis(ms float64) Instant {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Unknown
	}
	return Of(time.UnixMilli(int64(ms)))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
