package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

type profile struct {
	ID      int32  `brief:"id" json:"id"`
	Name    string `brief:"name" json:"name"`
	Active  bool   `brief:"active" json:"active"`
	Friends []int  `brief:"friends" json:"friends"`
}

func TestBriefSerializer(t *testing.T) {
	var s Serializer = NewBriefSerializer(nil)

	want := profile{ID: 7, Name: "ok", Active: true, Friends: []int{1, 2}}
	data, err := s.Marshal(want)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 7,
		0, 0, 0, 2, 'o', 'k',
		0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2,
		0x01,
	}, data)

	var got profile
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestBriefSerializerErrors(t *testing.T) {
	s := NewBriefSerializer(codec.New(codec.WithMetrics(false)))

	_, err := s.Marshal(nil)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	_, err = s.Marshal(map[string]int{"a": 1})
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	var p profile
	assert.ErrorIs(t, s.Unmarshal(nil, p), merr.ErrParameterInvalid)
	assert.ErrorIs(t, s.Unmarshal([]byte{0, 0}, &p), merr.ErrTruncatedBuffer)
}

func TestJSONSerializer(t *testing.T) {
	var s Serializer = JSONSerializer{}

	want := profile{ID: 7, Name: "ok", Active: true, Friends: []int{3}}
	data, err := s.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"ok","active":true,"friends":[3]}`, string(data))

	var got profile
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}
