// Package normalize converts raw server-shaped records into the canonical
// client entities in internal/domain. The remote API mixes snake_case and
// camelCase field names across endpoints; every accessor here looks up the
// snake_case key first and falls back to its camelCase variant, which makes
// the whole package idempotent: feeding an already-normalized entity back in
// yields the same entity.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is a raw, untyped server record. Keeping the untyped boundary
// behind a named type marks every place raw data enters the client.
type Record map[string]any

// AsRecord coerces a decoded JSON value into a Record. Non-object input
// yields nil, which all accessors tolerate.
func AsRecord(v any) Record {
	switch m := v.(type) {
	case Record:
		return m
	case map[string]any:
		return m
	default:
		return nil
	}
}

// camel derives the camelCase variant of a snake_case key. The mapping table
// for each entity lists only snake_case names; the fallback variant is
// derived, never written out by hand.
func camel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func (r Record) lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[key]; ok && v != nil {
		return v, true
	}
	if alt := camel(key); alt != key {
		if v, ok := r[alt]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) str(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// num tolerates the three ways the server serializes numbers: JSON numbers,
// decimal strings ("45000.00"), and json.Number.
func (r Record) num(key string) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return 0
	}
	return toFloat(v)
}

func (r Record) numPtr(key string) *float64 {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	f := toFloat(v)
	return &f
}

func (r Record) integer(key string) int {
	return int(r.num(key))
}

func (r Record) boolean(key string) bool {
	v, ok := r.lookup(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	case float64:
		return b != 0
	}
	return false
}

func (r Record) timeAt(key string) time.Time {
	raw := r.str(key)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r Record) record(key string) Record {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	return AsRecord(v)
}

func (r Record) list(key string) []any {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	return items
}

// id returns the entity identifier as a string regardless of whether the
// server sent a numeric or string id.
func (r Record) id(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatInt(int64(s), 10)
	case json.Number:
		return s.String()
	}
	return ""
}

func firstTime(values ...time.Time) time.Time {
	for _, v := range values {
		if !v.IsZero() {
			return v
		}
	}
	return time.Time{}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
