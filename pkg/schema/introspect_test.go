package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

type testPoint struct {
	Tuple
	X int32
	Y int32
}

type testAddress struct {
	City string `brief:"city"`
	Zip  int
}

type testUser struct {
	ID       int64 `brief:"id"`
	Name     string
	Active   bool
	Score    float32
	Tags     typeutil.Set[string]
	Labels   map[string]struct{}
	Counts   map[string][]uint16
	Home     testAddress
	Previous *testAddress
	Origin   testPoint
	Pair     [2]string
	Secret   string `brief:"-"`
	internal int
}

type testNode struct {
	Value    int32
	Children []testNode
}

type testBadField struct {
	Ch chan int
}

type testBadKey struct {
	M map[testAddress]int32
}

type IntrospectSuite struct {
	suite.Suite
	introspector *ReflectIntrospector
}

func (s *IntrospectSuite) SetupTest() {
	s.introspector = NewReflectIntrospector()
}

func (s *IntrospectSuite) TestStruct() {
	sc, err := s.introspector.Introspect(reflect.TypeOf(testUser{}))
	s.Require().NoError(err)
	s.Equal("testUser", sc.Name)
	s.Equal(reflect.TypeOf(testUser{}), sc.GoType)

	want := []struct {
		name string
		typ  string
	}{
		{"id", "int32"},
		{"Name", "text"},
		{"Active", "bool"},
		{"Score", "float64"},
		{"Tags", "set<text>"},
		{"Labels", "set<text>"},
		{"Counts", "map<text,seq<int32>>"},
		{"Home", "testAddress"},
		{"Previous", "testAddress"},
		{"Origin", "tuple<int32,int32>"},
		{"Pair", "tuple<text,text>"},
	}
	s.Require().Len(sc.Fields, len(want))
	for i, w := range want {
		s.Equal(w.name, sc.Fields[i].Name)
		s.Equal(w.typ, sc.Fields[i].Type.String(), w.name)
	}
	s.Equal(1, sc.BoolCount())

	home, _ := sc.Field("Home")
	s.Equal([]string{"city", "Zip"}, []string{home.Type.Record.Fields[0].Name, home.Type.Record.Fields[1].Name})
	prev, _ := sc.Field("Previous")
	s.Same(home.Type.Record, prev.Type.Record)
}

func (s *IntrospectSuite) TestMemoized() {
	a, err := s.introspector.Introspect(reflect.TypeOf(testUser{}))
	s.Require().NoError(err)
	b, err := s.introspector.Introspect(reflect.TypeOf(&testUser{}))
	s.Require().NoError(err)
	s.Same(a, b)

	c, err := SchemaFor[testUser]()
	s.Require().NoError(err)
	d, err := Of(&testUser{})
	s.Require().NoError(err)
	s.Same(c, d)
}

func (s *IntrospectSuite) TestRejects() {
	_, err := s.introspector.Introspect(reflect.TypeOf(testNode{}))
	s.ErrorIs(err, merr.ErrUnsupportedType)

	_, err = s.introspector.Introspect(reflect.TypeOf(testBadField{}))
	s.ErrorIs(err, merr.ErrUnsupportedType)
	s.Contains(err.Error(), "testBadField.Ch")

	_, err = s.introspector.Introspect(reflect.TypeOf(testBadKey{}))
	s.ErrorIs(err, merr.ErrUnsupportedType)

	_, err = s.introspector.Introspect(reflect.TypeOf(42))
	s.ErrorIs(err, merr.ErrUnsupportedType)

	_, err = s.introspector.Introspect(reflect.TypeOf(testPoint{}))
	s.ErrorIs(err, merr.ErrUnsupportedType)

	_, err = s.introspector.Introspect(nil)
	s.ErrorIs(err, merr.ErrUnsupportedType)
}

func (s *IntrospectSuite) TestTupleFields() {
	t := reflect.TypeOf(testPoint{})
	s.True(IsTupleStruct(t))
	s.False(IsTupleStruct(reflect.TypeOf(testAddress{})))
	s.False(IsTupleStruct(reflect.TypeOf(1)))
	s.Equal([]int{1, 2}, TupleFields(t))
}

func TestIntrospect(t *testing.T) {
	suite.Run(t, new(IntrospectSuite))
}
