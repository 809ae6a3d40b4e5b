package configtree

import (
	"strconv"
	"strings"
)

// Get walks a dot path from the root and returns the resolved Value, or
// nil if any segment is missing or an intermediate node is not a
// mapping. Numeric sequence indices are deliberately not supported by
// this core path API.
func (v *Value) Get(path string) *Value {
	cur := v
	for _, seg := range splitPath(path) {
		if cur == nil || !cur.IsMapping() {
			return nil
		}
		cur = cur.Child(seg)
	}
	return cur
}

// GetString resolves path and returns its string form, applying the same
// scalar-to-string rendering as AsString; returns def on any miss or
// type mismatch.
func GetString(v *Value, path string, def string) string {
	resolved := v.Get(path)
	if s, ok := resolved.AsString(); ok {
		return s
	}
	return def
}

// GetInt resolves path and coerces it to an integer: native ints pass
// through, floats truncate, and strings are parsed with strconv. Any
// failure returns def.
func GetInt(v *Value, path string, def int64) int64 {
	resolved := v.Get(path)
	if resolved == nil {
		return def
	}
	switch resolved.Kind() {
	case KindInt:
		i, _ := resolved.AsInt()
		return i
	case KindFloat:
		f, _ := resolved.AsFloat()
		return int64(f)
	case KindString:
		s, _ := resolved.AsString()
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
		return def
	default:
		return def
	}
}

// GetFloat resolves path and coerces it to a float the same way GetInt
// coerces to an integer.
func GetFloat(v *Value, path string, def float64) float64 {
	resolved := v.Get(path)
	if resolved == nil {
		return def
	}
	switch resolved.Kind() {
	case KindFloat:
		f, _ := resolved.AsFloat()
		return f
	case KindInt:
		i, _ := resolved.AsInt()
		return float64(i)
	case KindString:
		s, _ := resolved.AsString()
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}

// GetBool resolves path and coerces it to a bool: native bools pass
// through; strings are matched case-insensitively against
// true/false/yes/no/on/off/1/0. Any other value or a missing path
// returns def.
func GetBool(v *Value, path string, def bool) bool {
	resolved := v.Get(path)
	if resolved == nil {
		return def
	}
	switch resolved.Kind() {
	case KindBool:
		b, _ := resolved.AsBool()
		return b
	case KindString:
		s, _ := resolved.AsString()
		if b, ok := parseBoolString(s); ok {
			return b
		}
		return def
	default:
		return def
	}
}

// GetList resolves path and returns its elements as a Value slice.
// Sequences pass through directly; a comma-separated string is split,
// each item trimmed, and empty items dropped. Any other kind or a
// missing path returns def.
func GetList(v *Value, path string, def []*Value) []*Value {
	resolved := v.Get(path)
	if resolved == nil {
		return def
	}
	switch resolved.Kind() {
	case KindSequence:
		return resolved.Elements()
	case KindString:
		s, _ := resolved.AsString()
		parts := strings.Split(s, ",")
		out := make([]*Value, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			out = append(out, String(p))
		}
		return out
	default:
		return def
	}
}

func parseBoolString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	default:
		return false, false
	}
}
