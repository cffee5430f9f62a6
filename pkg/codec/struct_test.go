package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

type lineItem struct {
	SKU   string `brief:"sku"`
	Qty   uint16
	Price float64
	Gift  bool
}

type coord struct {
	schema.Tuple
	Lat float64
	Lng float64
}

type order struct {
	ID       int64
	Customer string
	Items    []lineItem
	Tags     typeutil.Set[string]
	Totals   map[string]float64
	Where    coord
	Paid     bool
	Rush     bool
	Ref      *lineItem
	Window   [2]int32
	Comment  string `brief:"-"`
}

func sampleOrder() order {
	return order{
		ID:       77,
		Customer: "zion",
		Items: []lineItem{
			{SKU: "a", Qty: 2, Price: 9.5, Gift: true},
			{SKU: "b", Qty: 65535, Price: 0},
		},
		Tags:   typeutil.NewSet("vip", "express"),
		Totals: map[string]float64{"eur": 19, "usd": 21.5},
		Where:  coord{Lat: 59.9, Lng: 10.7},
		Paid:   true,
		Ref:    &lineItem{SKU: "ref", Qty: 1},
		Window: [2]int32{-1, 1},
	}
}

func TestStructRoundTrip(t *testing.T) {
	s, err := schema.SchemaFor[order]()
	require.NoError(t, err)

	c := New()
	want := sampleOrder()
	data, err := c.Encode(want, s)
	require.NoError(t, err)

	var got order
	require.NoError(t, c.DecodeInto(data, s, &got))
	assert.Equal(t, want, got)

	// 指针与值编码结果一致
	fromPtr, err := c.Encode(&want, s)
	require.NoError(t, err)
	assert.Equal(t, data, fromPtr)

	// 相同布局的动态 Record 产生相同字节
	dynamic := schema.Record{
		"ID":       77,
		"Customer": "zion",
		"Items": []any{
			schema.Record{"sku": "a", "Qty": 2, "Price": 9.5, "Gift": true},
			schema.Record{"sku": "b", "Qty": 65535, "Price": 0.0, "Gift": false},
		},
		"Tags":   typeutil.NewSet[any]("express", "vip"),
		"Totals": map[any]any{"usd": 21.5, "eur": 19.0},
		"Where":  []any{59.9, 10.7},
		"Paid":   true,
		"Rush":   false,
		"Ref":    schema.Record{"sku": "ref", "Qty": 1, "Price": 0.0, "Gift": false},
		"Window": []any{-1, 1},
	}
	fromRecord, err := c.Encode(dynamic, s)
	require.NoError(t, err)
	assert.Equal(t, data, fromRecord)
}

type route struct {
	Cells  typeutil.Set[[2]int32]
	Stops  map[coord]string
	Weight map[[2]string]float64
}

func TestStructTupleKeys(t *testing.T) {
	s, err := schema.SchemaFor[route]()
	require.NoError(t, err)
	assert.Equal(t, "route{Cells set<tuple<int32,int32>>, Stops map<tuple<float64,float64>,text>, Weight map<tuple<text,text>,float64>}", s.String())

	c := New()
	want := route{
		Cells:  typeutil.NewSet([2]int32{0, 1}, [2]int32{-3, 4}),
		Stops:  map[coord]string{{Lat: 1, Lng: 2}: "a", {Lat: -1, Lng: 0}: "b"},
		Weight: map[[2]string]float64{{"oslo", "bergen"}: 463},
	}
	data, err := c.Encode(want, s)
	require.NoError(t, err)

	var got route
	require.NoError(t, c.DecodeInto(data, s, &got))
	assert.Equal(t, want, got)

	again, err := c.Encode(&got, s)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestStructDecodeOverflow(t *testing.T) {
	s, err := schema.SchemaFor[lineItem]()
	require.NoError(t, err)

	c := New()
	data, err := c.Encode(schema.Record{"sku": "x", "Qty": 70000, "Price": 1.0, "Gift": false}, s)
	require.NoError(t, err)

	_, err = c.Decode(data, s)
	assert.ErrorIs(t, err, merr.ErrIntegerOverflow)
	assert.Contains(t, err.Error(), "lineItem.Qty")
}

func TestStructNilPointer(t *testing.T) {
	s, err := schema.SchemaFor[order]()
	require.NoError(t, err)

	o := sampleOrder()
	o.Ref = nil
	_, err = New().Encode(o, s)
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "order.Ref")
}

func TestDecodeIntoInvalidTarget(t *testing.T) {
	s, err := schema.SchemaFor[lineItem]()
	require.NoError(t, err)
	c := New()
	data, err := c.Encode(lineItem{SKU: "x"}, s)
	require.NoError(t, err)

	var li lineItem
	assert.ErrorIs(t, c.DecodeInto(data, s, li), merr.ErrParameterInvalid)
	assert.ErrorIs(t, c.DecodeInto(data, s, (*lineItem)(nil)), merr.ErrParameterInvalid)

	var rec schema.Record
	assert.ErrorIs(t, c.DecodeInto(data, s, &rec), merr.ErrUnsupportedType)

	var anyV any
	require.NoError(t, c.DecodeInto(data, s, &anyV))
	assert.Equal(t, lineItem{SKU: "x"}, anyV)
}

func TestRecordBinderOnly(t *testing.T) {
	s, err := schema.SchemaFor[lineItem]()
	require.NoError(t, err)
	c := New(WithBinder(schema.RecordBinder{}))

	_, err = c.Encode(lineItem{SKU: "x"}, s)
	assert.ErrorIs(t, err, merr.ErrUnsupportedType)

	data, err := c.Encode(schema.Record{"sku": "x", "Qty": 1, "Price": 2.0, "Gift": true}, s)
	require.NoError(t, err)
	v, err := c.Decode(data, s)
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"sku": "x", "Qty": int32(1), "Price": 2.0, "Gift": true}, v)
}
