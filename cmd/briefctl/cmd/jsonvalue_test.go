package cmd

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

func TestFromJSONLeaves(t *testing.T) {
	v, err := fromJSON(schema.Int32(), stdjson.Number("42"), "x")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = fromJSON(schema.Int32(), float64(3), "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = fromJSON(schema.Int32(), stdjson.Number("1.5"), "x")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	v, err = fromJSON(schema.Float64(), stdjson.Number("1.5"), "x")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	_, err = fromJSON(schema.Text(), nil, "x")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = fromJSON(schema.Float64(), "1.5", "x")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)
}

func TestFromJSONComposites(t *testing.T) {
	v, err := fromJSON(schema.SetOf(schema.Text()), []any{"b", "a", "b"}, "s")
	require.NoError(t, err)
	assert.True(t, typeutil.NewSet[any]("a", "b").Equal(v.(typeutil.Set[any])))

	v, err = fromJSON(schema.TupleOf(schema.Int32(), schema.Text()), []any{stdjson.Number("1"), "a"}, "t")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a"}, v)

	_, err = fromJSON(schema.TupleOf(schema.Int32()), []any{}, "t")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	m := schema.MapOf(schema.Int32(), schema.Bool())
	v, err = fromJSON(m, []any{[]any{stdjson.Number("2"), true}}, "m")
	require.NoError(t, err)
	assert.Equal(t, map[any]any{int64(2): true}, v)

	_, err = fromJSON(m, map[string]any{"2": true}, "m")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = fromJSON(m, []any{[]any{stdjson.Number("2")}}, "m")
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = fromJSON(m, []any{
		[]any{stdjson.Number("2"), true},
		[]any{stdjson.Number("2"), false},
	}, "m")
	assert.ErrorIs(t, err, merr.ErrEncoding)

	v, err = fromJSON(schema.MapOf(schema.Text(), schema.Int32()), map[string]any{"a": stdjson.Number("1")}, "m")
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"a": int64(1)}, v)
}

func TestToJSON(t *testing.T) {
	pt := schema.MustNew("Pt", schema.F("x", schema.Int32()), schema.F("ok", schema.Bool()))
	desc := schema.RecordOf(schema.MustNew("Doc",
		schema.F("tags", schema.SetOf(schema.Int32())),
		schema.F("m", schema.MapOf(schema.Text(), schema.Float64())),
		schema.F("pairs", schema.MapOf(schema.Int32(), schema.Text())),
		schema.F("pts", schema.SequenceOf(schema.RecordOf(pt))),
	))

	got := toJSON(desc, schema.Record{
		"tags":  typeutil.NewSet[any](int32(3), int32(1), int32(2)),
		"m":     map[any]any{"b": 2.0, "a": 1.0},
		"pairs": map[any]any{int32(9): "z", int32(-1): "a"},
		"pts":   []any{schema.Record{"x": int32(1), "ok": true}},
	})
	assert.Equal(t, map[string]any{
		"tags":  []any{int32(1), int32(2), int32(3)},
		"m":     map[string]any{"a": 1.0, "b": 2.0},
		"pairs": []any{[]any{int32(-1), "a"}, []any{int32(9), "z"}},
		"pts":   []any{map[string]any{"x": int32(1), "ok": true}},
	}, got)
}

func TestTupleKeysJSON(t *testing.T) {
	cells := schema.SetOf(schema.TupleOf(schema.Int32(), schema.Int32()))
	v, err := fromJSON(cells, []any{
		[]any{stdjson.Number("2"), stdjson.Number("1")},
		[]any{stdjson.Number("1"), stdjson.Number("5")},
	}, "cells")
	require.NoError(t, err)
	assert.Equal(t, typeutil.NewSet[any]([2]any{int64(2), int64(1)}, [2]any{int64(1), int64(5)}), v)

	weights := schema.MapOf(schema.TupleOf(schema.Text(), schema.Int32()), schema.Float64())
	v, err = fromJSON(weights, []any{
		[]any{[]any{"a", stdjson.Number("1")}, stdjson.Number("0.5")},
	}, "w")
	require.NoError(t, err)
	assert.Equal(t, map[any]any{[2]any{"a", int64(1)}: 0.5}, v)

	_, err = fromJSON(weights, []any{
		[]any{[]any{"a", stdjson.Number("1")}, stdjson.Number("0.5")},
		[]any{[]any{"a", stdjson.Number("1")}, stdjson.Number("0.7")},
	}, "w")
	assert.ErrorIs(t, err, merr.ErrEncoding)

	got := toJSON(cells, typeutil.NewSet[any]([2]any{int32(2), int32(1)}, [2]any{int32(1), int32(5)}))
	assert.Equal(t, []any{[]any{int32(1), int32(5)}, []any{int32(2), int32(1)}}, got)

	got = toJSON(weights, map[any]any{[2]any{"b", int32(0)}: 1.0, [2]any{"a", int32(3)}: 2.0})
	assert.Equal(t, []any{
		[]any{[]any{"a", int32(3)}, 2.0},
		[]any{[]any{"b", int32(0)}, 1.0},
	}, got)
}
