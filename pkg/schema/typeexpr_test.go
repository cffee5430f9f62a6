package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

func TestParseType(t *testing.T) {
	point := MustNew("Point", F("x", Int32()), F("y", Int32()))
	lookup := func(name string) (*Schema, error) {
		if name == "Point" {
			return point, nil
		}
		return nil, merr.WrapErrSchemaNotFound(name)
	}

	cases := []struct {
		expr string
		want *Descriptor
	}{
		{"int32", Int32()},
		{"int", Int32()},
		{" float64 ", Float64()},
		{"bool", Bool()},
		{"string", Text()},
		{"seq<text>", SequenceOf(Text())},
		{"list<int32>", SequenceOf(Int32())},
		{"set< text >", SetOf(Text())},
		{"map<text, seq<Point>>", MapOf(Text(), SequenceOf(RecordOf(point)))},
		{"tuple<int32,text,Point>", TupleOf(Int32(), Text(), RecordOf(point))},
		{"Point", RecordOf(point)},
	}
	for _, c := range cases {
		got, err := ParseType(c.expr, lookup)
		require.NoError(t, err, c.expr)
		assert.True(t, c.want.Equal(got), "%s: got %s", c.expr, got)
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	point := MustNew("Point", F("x", Int32()))
	lookup := func(string) (*Schema, error) { return point, nil }
	for _, d := range []*Descriptor{
		MapOf(Int32(), SetOf(Text())),
		TupleOf(Float64(), SequenceOf(RecordOf(point))),
		SequenceOf(SequenceOf(Bool())),
	} {
		got, err := ParseType(d.String(), lookup)
		require.NoError(t, err)
		assert.True(t, d.Equal(got), d.String())
	}
}

func TestParseTypeErrors(t *testing.T) {
	malformed := []string{
		"",
		"seq",
		"seq<",
		"seq<int32",
		"seq<int32,text>",
		"map<text>",
		"set<>",
		"int32 text",
		"seq<int32>>",
		"<int32>",
		"tuple<int32,>",
	}
	for _, expr := range malformed {
		_, err := ParseType(expr, nil)
		assert.ErrorIs(t, err, merr.ErrTypeExprMalformed, expr)
	}

	_, err := ParseType("Unknown", nil)
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = ParseType("seq<Unknown>", func(name string) (*Schema, error) {
		return nil, merr.WrapErrSchemaNotFound(name)
	})
	assert.ErrorIs(t, err, merr.ErrSchemaNotFound)

	_, err = ParseType("set<seq<int32>>", nil)
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	_, err = ParseType("tuple<>", nil)
	assert.ErrorIs(t, err, merr.ErrSchemaInvalid)
	_, err = ParseType("seq<tuple<>>", nil)
	assert.ErrorIs(t, err, merr.ErrSchemaInvalid)

	d, err := ParseType("set<tuple<int32,text>>", nil)
	require.NoError(t, err)
	assert.True(t, SetOf(TupleOf(Int32(), Text())).Equal(d))
}
