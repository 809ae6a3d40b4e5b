package configtree

import "encoding/json"

// wireValue is the on-the-wire form Marshal/Unmarshal round-trip
// through, carrying the Kind tag alongside the scalar so int-vs-float
// survives JSON's native decode-everything-to-float64 behavior. Mapping
// order is carried as parallel Keys/Map slices rather than a Go map,
// since map iteration order is not stable and the tree's own insertion
// order is observable (e.g. via Keys()).
type wireValue struct {
	Kind Kind         `json:"kind"`
	Str  string       `json:"str,omitempty"`
	Int  int64        `json:"int,omitempty"`
	Flt  float64      `json:"flt,omitempty"`
	Bool bool         `json:"bool,omitempty"`
	Keys []string     `json:"keys,omitempty"`
	Map  []*wireValue `json:"map,omitempty"`
	Seq  []*wireValue `json:"seq,omitempty"`
}

func toWire(v *Value) *wireValue {
	if v == nil {
		return &wireValue{Kind: KindNull}
	}
	w := &wireValue{Kind: v.kind}
	switch v.kind {
	case KindString:
		w.Str = v.str
	case KindInt:
		w.Int = v.i
	case KindFloat:
		w.Flt = v.f
	case KindBool:
		w.Bool = v.b
	case KindMapping:
		for _, k := range v.mapOrder {
			w.Keys = append(w.Keys, k)
			w.Map = append(w.Map, toWire(v.mapping[k]))
		}
	case KindSequence:
		for _, e := range v.seq {
			w.Seq = append(w.Seq, toWire(e))
		}
	}
	return w
}

func fromWire(w *wireValue) *Value {
	if w == nil {
		return Null()
	}
	switch w.Kind {
	case KindString:
		return String(w.Str)
	case KindInt:
		return Int(w.Int)
	case KindFloat:
		return Float(w.Flt)
	case KindBool:
		return Bool(w.Bool)
	case KindMapping:
		m := NewMapping()
		for i, k := range w.Keys {
			var child *wireValue
			if i < len(w.Map) {
				child = w.Map[i]
			}
			m.Set(k, fromWire(child))
		}
		return m
	case KindSequence:
		s := NewSequence()
		for _, e := range w.Seq {
			s.Append(fromWire(e))
		}
		return s
	default:
		return Null()
	}
}

// Marshal encodes v as JSON through a Kind-tagged wire form, for callers
// (the cache layer) that need an opaque byte representation which
// round-trips exactly — including the int/float distinction that plain
// encoding/json loses when decoding through interface{} (every number
// becomes float64). ok is false only if v's wire form somehow fails to
// marshal, which does not happen for any tree Value can represent.
func Marshal(v *Value) ([]byte, bool) {
	data, err := json.Marshal(toWire(v))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Unmarshal decodes bytes previously produced by Marshal back into a
// Value tree, preserving each scalar's original Kind.
func Unmarshal(data []byte) (*Value, bool) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false
	}
	return fromWire(&w), true
}
