package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareLeaf(t *testing.T) {
	assert.Equal(t, -1, CompareLeaf(int32(1), int32(2)))
	assert.Equal(t, 1, CompareLeaf("b", "a"))
	assert.Equal(t, 0, CompareLeaf(1.5, 1.5))
	assert.Equal(t, -1, CompareLeaf(false, true))
	assert.Equal(t, 0, CompareLeaf(true, true))
	assert.Equal(t, -1, CompareLeaf(math.NaN(), 0.0))
	assert.Equal(t, 0, CompareLeaf(int32(1), "1"))
}

func TestCompareTupleKey(t *testing.T) {
	a := TupleKey(int32(1), "b")
	b := TupleKey(int32(1), "c")
	c := TupleKey(int32(2), "a")
	assert.Equal(t, -1, CompareLeaf(a, b))
	assert.Equal(t, -1, CompareLeaf(b, c))
	assert.Equal(t, 1, CompareLeaf(c, a))
	assert.Equal(t, 0, CompareLeaf(a, TupleKey(int32(1), "b")))
	assert.Equal(t, 0, CompareLeaf(a, []any{int32(1), "b"}))
	assert.Equal(t, -1, CompareLeaf(TupleKey(int32(1)), a))
	assert.Equal(t, 0, CompareLeaf(a, int32(1)))

	nested := TupleKey(int32(1), TupleKey(true, 2.5))
	assert.Equal(t, 1, CompareLeaf(nested, TupleKey(int32(1), TupleKey(false, 9.0))))
}

func TestTupleKey(t *testing.T) {
	k := TupleKey(int32(1), "x")
	assert.Equal(t, [2]any{int32(1), "x"}, k)

	m := map[any]int{k: 1}
	assert.Equal(t, 1, m[TupleKey(int32(1), "x")])

	items, ok := TupleElems(k)
	assert.True(t, ok)
	assert.Equal(t, []any{int32(1), "x"}, items)
	_, ok = TupleElems([2]int32{1, 2})
	assert.False(t, ok)
	_, ok = TupleElems(nil)
	assert.False(t, ok)
}
