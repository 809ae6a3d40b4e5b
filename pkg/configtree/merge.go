package configtree

// Merge deep-merges high over low and returns a new Value; neither input
// is mutated. For each key present in both: if both child values are
// mappings, the merge recurses; otherwise the high-precedence value wins
// outright. Sequences are replaced wholesale, never concatenated, and a
// null at a key always overrides a non-null value beneath it — the same
// recursive "last writer wins at the leaves" rule the composer applies
// once per source in its ordered stack.
func Merge(low, high *Value) *Value {
	if low == nil || !low.IsMapping() {
		return cloneOrNull(high)
	}
	if high == nil || !high.IsMapping() {
		return cloneOrNull(high)
	}

	out := NewMapping()
	for _, k := range low.Keys() {
		out.Set(k, low.Child(k).Clone())
	}
	for _, k := range high.Keys() {
		hv := high.Child(k)
		lv := out.Child(k)
		if lv != nil && lv.IsMapping() && hv != nil && hv.IsMapping() {
			out.Set(k, Merge(lv, hv))
		} else {
			out.Set(k, hv.Clone())
		}
	}
	return out
}

func cloneOrNull(v *Value) *Value {
	if v == nil {
		return Null()
	}
	return v.Clone()
}

// MergeAll folds Merge over an ordered list of layers, first to last,
// mirroring the composer's source-list precedence rule: the last layer
// in the slice has the highest precedence.
func MergeAll(layers ...*Value) *Value {
	acc := NewMapping()
	for _, l := range layers {
		acc = Merge(acc, l)
	}
	return acc
}
