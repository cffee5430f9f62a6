package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

func TestRegistryDefine(t *testing.T) {
	r := NewRegistry()
	err := r.Define(map[string][]FieldDef{
		"Order": {
			{Name: "id", Type: "int32"},
			{Name: "items", Type: "seq<Item>"},
			{Name: "paid", Type: "bool"},
		},
		"Item": {
			{Name: "sku", Type: "text"},
			{Name: "price", Type: "float64"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Order"}, r.Names())

	order, err := r.Lookup("Order")
	require.NoError(t, err)
	item, err := r.Lookup("Item")
	require.NoError(t, err)
	f, ok := order.Field("items")
	require.True(t, ok)
	assert.Same(t, item, f.Type.Elem.Record)
	assert.Equal(t, 1, order.BoolCount())

	_, err = r.Lookup("Missing")
	assert.ErrorIs(t, err, merr.ErrSchemaNotFound)
}

func TestRegistryDefineErrors(t *testing.T) {
	err := NewRegistry().Define(map[string][]FieldDef{
		"A": {{Name: "b", Type: "B"}},
		"B": {{Name: "a", Type: "seq<A>"}},
	})
	assert.ErrorIs(t, err, merr.ErrSchemaInvalid)

	err = NewRegistry().Define(map[string][]FieldDef{
		"A": {{Name: "b", Type: "Nope"}},
	})
	assert.ErrorIs(t, err, merr.ErrSchemaNotFound)

	err = NewRegistry().Define(map[string][]FieldDef{
		"A": {{Name: "x", Type: "seq<"}},
	})
	assert.ErrorIs(t, err, merr.ErrTypeExprMalformed)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	a := MustNew("A", F("x", Int32()))
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(a))
	assert.ErrorIs(t, r.Register(MustNew("A", F("y", Int32()))), merr.ErrSchemaInvalid)

	// 已注册的 Schema 可以被后续定义引用
	require.NoError(t, r.Define(map[string][]FieldDef{
		"B": {{Name: "a", Type: "A"}},
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("B")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
