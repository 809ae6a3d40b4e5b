package configtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(pairs ...interface{}) *Value {
	m := NewMapping()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(*Value))
	}
	return m
}

func TestMerge_ScalarReplacesAtLeaf(t *testing.T) {
	low := mapping("db", mapping("host", String("h1"), "port", Int(1)))
	high := mapping("db", mapping("host", String("h2")))

	merged := Merge(low, high)

	require.Equal(t, "h2", GetString(merged, "db.host", ""))
	assert.Equal(t, int64(1), GetInt(merged, "db.port", 0))
}

func TestMerge_PreservesDisjointSiblings(t *testing.T) {
	low := mapping("a", mapping("x", Int(1)))
	high := mapping("a", mapping("y", Int(2)))

	merged := Merge(low, high)

	assert.Equal(t, int64(1), GetInt(merged, "a.x", 0))
	assert.Equal(t, int64(2), GetInt(merged, "a.y", 0))
}

func TestMerge_SequenceReplacedNotConcatenated(t *testing.T) {
	low := mapping("features", NewSequence(String("a"), String("b")))
	high := mapping("features", NewSequence(String("c")))

	merged := Merge(low, high)
	elems := merged.Get("features").Elements()

	require.Len(t, elems, 1)
	s, _ := elems[0].AsString()
	assert.Equal(t, "c", s)
}

func TestMerge_NullOverridesNonNull(t *testing.T) {
	low := mapping("x", String("present"))
	high := mapping("x", Null())

	merged := Merge(low, high)

	assert.True(t, merged.Get("x").IsNull())
}

func TestMergeAll_LastAddedWins(t *testing.T) {
	layers := []*Value{
		mapping("a", Int(1)),
		mapping("a", Int(2)),
		mapping("a", Int(3)),
	}
	merged := MergeAll(layers...)
	assert.Equal(t, int64(3), GetInt(merged, "a", 0))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	low := mapping("a", mapping("x", Int(1)))
	high := mapping("a", mapping("y", Int(2)))

	_ = Merge(low, high)

	assert.Nil(t, low.Get("a.y"))
	assert.Nil(t, high.Get("a.x"))
}
