package configtree

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Canonical renders v into a stable string encoding: mapping keys sorted
// lexically, scalars rendered deterministically. Two structurally equal
// trees always render identically regardless of original insertion
// order, which is what lets dynamic sources derive a content-hash
// fingerprint for cache-key purposes (see pkg/configsource).
func Canonical(v *Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

// Hash returns the SHA-256 hash (hex-encoded) of v's canonical encoding.
func Hash(v *Value) string {
	sum := sha256.Sum256([]byte(Canonical(v)))
	return hex.EncodeToString(sum[:])
}

func writeCanonical(b *strings.Builder, v *Value) {
	if v == nil {
		b.WriteString("null")
		return
	}
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindMapping:
		b.WriteByte('{')
		for i, k := range v.SortedKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			writeCanonical(b, v.mapping[k])
		}
		b.WriteByte('}')
	case KindSequence:
		b.WriteByte('[')
		for i, e := range v.seq {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, e)
		}
		b.WriteByte(']')
	}
}

// Equal reports whether two trees are structurally equal, used by the
// composer to decide whether a reload actually changed anything worth
// swapping for.
func Equal(a, b *Value) bool {
	return Canonical(a) == Canonical(b)
}
