// Package configtree implements the composed configuration value: a
// recursive mapping/sequence/scalar tree with dot-path access, typed
// accessors that never raise, and the deep-merge rule that governs how
// higher-precedence sources override lower-precedence ones.
package configtree

import (
	"sort"
	"strconv"
	"strings"
)

// Kind tags the dynamic shape of a Value.
type Kind int

const (
	// KindNull marks an explicit null scalar.
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindMapping
	KindSequence
)

// Value is the tagged sum type described by the composition engine: a
// mapping (string keys), a sequence, or one of the scalar kinds. Set and
// Append edit a mapping or sequence in place, for building a tree; Merge
// and Clone return new Values and never edit their inputs.
type Value struct {
	kind Kind

	str string
	i   int64
	f   float64
	b   bool

	mapping  map[string]*Value
	mapOrder []string
	seq      []*Value
}

// Null returns the null scalar value.
func Null() *Value { return &Value{kind: KindNull} }

// String wraps a string scalar.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Int wraps an integer scalar.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float wraps a floating-point scalar.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// Bool wraps a boolean scalar.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// NewMapping builds an (initially empty) mapping value.
func NewMapping() *Value {
	return &Value{kind: KindMapping, mapping: map[string]*Value{}}
}

// NewSequence builds a sequence value from the given elements.
func NewSequence(elems ...*Value) *Value {
	return &Value{kind: KindSequence, seq: append([]*Value{}, elems...)}
}

// Kind returns the value's dynamic kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is nil or an explicit null scalar.
func (v *Value) IsNull() bool { return v == nil || v.kind == KindNull }

// IsMapping reports whether v is a mapping.
func (v *Value) IsMapping() bool { return v != nil && v.kind == KindMapping }

// IsSequence reports whether v is a sequence.
func (v *Value) IsSequence() bool { return v != nil && v.kind == KindSequence }

// Set inserts or replaces a key in a mapping value. Set is a no-op on a
// non-mapping value.
func (v *Value) Set(key string, child *Value) {
	if v == nil || v.kind != KindMapping {
		return
	}
	if _, exists := v.mapping[key]; !exists {
		v.mapOrder = append(v.mapOrder, key)
	}
	v.mapping[key] = child
}

// Append adds an element to a sequence value. Append is a no-op on a
// non-sequence value.
func (v *Value) Append(child *Value) {
	if v == nil || v.kind != KindSequence {
		return
	}
	v.seq = append(v.seq, child)
}

// Keys returns a mapping's keys in stable (insertion) order, or nil for
// any other kind.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindMapping {
		return nil
	}
	out := make([]string, len(v.mapOrder))
	copy(out, v.mapOrder)
	return out
}

// SortedKeys returns a mapping's keys sorted lexically, used wherever a
// canonical (reproducible) iteration order is required, such as
// fingerprint computation.
func (v *Value) SortedKeys() []string {
	keys := v.Keys()
	sort.Strings(keys)
	return keys
}

// Child looks up a direct mapping key; returns nil if absent or v is not
// a mapping.
func (v *Value) Child(key string) *Value {
	if v == nil || v.kind != KindMapping {
		return nil
	}
	return v.mapping[key]
}

// Elements returns a sequence's elements, or nil for any other kind.
func (v *Value) Elements() []*Value {
	if v == nil || v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// Len returns the number of mapping keys or sequence elements; zero for
// scalars and nil.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindMapping:
		return len(v.mapOrder)
	case KindSequence:
		return len(v.seq)
	default:
		return 0
	}
}

// AsString returns the scalar string form and whether the conversion
// applies directly (without the looser coercion typed accessors perform).
func (v *Value) AsString() (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.kind {
	case KindString:
		return v.str, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// AsInt returns the raw integer and whether v is exactly an int scalar.
func (v *Value) AsInt() (int64, bool) {
	if v == nil || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the raw float and whether v is exactly a float scalar.
func (v *Value) AsFloat() (float64, bool) {
	if v == nil || v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsBool returns the raw bool and whether v is exactly a bool scalar.
func (v *Value) AsBool() (bool, bool) {
	if v == nil || v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Clone performs a deep copy; the composer relies on this to hand out
// snapshots (e.g. to the masking pass) that can never alias the live
// tree.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindMapping:
		out := NewMapping()
		for _, k := range v.mapOrder {
			out.Set(k, v.mapping[k].Clone())
		}
		return out
	case KindSequence:
		out := NewSequence()
		for _, e := range v.seq {
			out.Append(e.Clone())
		}
		return out
	default:
		cp := *v
		return &cp
	}
}

// FromGo converts a plain Go value (as produced by encoding/json,
// yaml.v3, BurntSushi/toml, or ini.v1's generic decode) into a Value
// tree. Unrecognized types become null.
func FromGo(x interface{}) *Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case *Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case map[string]interface{}:
		m := NewMapping()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromGo(t[k]))
		}
		return m
	case map[interface{}]interface{}:
		m := NewMapping()
		keys := make([]string, 0, len(t))
		strKeyOf := map[string]interface{}{}
		for k := range t {
			ks, _ := k.(string)
			keys = append(keys, ks)
			strKeyOf[ks] = t[k]
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromGo(strKeyOf[k]))
		}
		return m
	case []interface{}:
		s := NewSequence()
		for _, e := range t {
			s.Append(FromGo(e))
		}
		return s
	case []map[string]interface{}:
		s := NewSequence()
		for _, e := range t {
			s.Append(FromGo(e))
		}
		return s
	default:
		return Null()
	}
}

// ToGo converts a Value tree back into plain Go values suitable for
// encoding/json marshaling or equality comparisons in tests.
func (v *Value) ToGo() interface{} {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindMapping:
		m := make(map[string]interface{}, len(v.mapOrder))
		for _, k := range v.mapOrder {
			m[k] = v.mapping[k].ToGo()
		}
		return m
	case KindSequence:
		s := make([]interface{}, len(v.seq))
		for i, e := range v.seq {
			s[i] = e.ToGo()
		}
		return s
	default:
		return nil
	}
}

// splitPath splits a dot path into segments; an empty path yields no
// segments (the root itself).
func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
