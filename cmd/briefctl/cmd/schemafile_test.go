package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

const shopSchema = `
root: Order
records:
  - name: Order
    fields:
      - {name: id, type: int32}
      - {name: tags, type: set<text>}
      - {name: prices, type: "map<int32,float64>"}
      - {name: items, type: seq<Item>}
      - {name: paid, type: bool}
  - name: Item
    fields:
      - {name: sku, type: text}
      - {name: qty, type: int32}
`

func writeSchema(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSchemaFile(t *testing.T) {
	reg, root, err := loadSchemaFile(writeSchema(t, shopSchema))
	require.NoError(t, err)

	assert.Equal(t, "Order", root.Name)
	assert.Equal(t, []string{"Item", "Order"}, reg.Names())
	assert.Equal(t, "Order{id int32, tags set<text>, prices map<int32,float64>, items seq<Item>, paid bool}", root.String())

	item, err := reg.Lookup("Item")
	require.NoError(t, err)
	assert.Same(t, item, root.Fields[3].Type.Elem.Record)
}

func TestLoadSchemaFileMissing(t *testing.T) {
	_, _, err := loadSchemaFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, merr.ErrIoFailed)
}

func TestBuildRegistry(t *testing.T) {
	t.Run("root defaults to first record", func(t *testing.T) {
		_, root, err := buildRegistry(schemaFile{Records: []recordDef{
			{Name: "Point", Fields: []schema.FieldDef{{Name: "x", Type: "int32"}}},
		}})
		require.NoError(t, err)
		assert.Equal(t, "Point", root.Name)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := buildRegistry(schemaFile{})
		assert.ErrorIs(t, err, merr.ErrSchemaInvalid)
	})

	t.Run("duplicate record", func(t *testing.T) {
		_, _, err := buildRegistry(schemaFile{Records: []recordDef{{Name: "A"}, {Name: "A"}}})
		assert.ErrorIs(t, err, merr.ErrSchemaInvalid)
	})

	t.Run("cycle", func(t *testing.T) {
		_, _, err := buildRegistry(schemaFile{Records: []recordDef{
			{Name: "A", Fields: []schema.FieldDef{{Name: "b", Type: "B"}}},
			{Name: "B", Fields: []schema.FieldDef{{Name: "a", Type: "seq<A>"}}},
		}})
		assert.ErrorIs(t, err, merr.ErrSchemaInvalid)
	})

	t.Run("unknown root", func(t *testing.T) {
		_, _, err := buildRegistry(schemaFile{Root: "Nope", Records: []recordDef{{Name: "A"}}})
		assert.ErrorIs(t, err, merr.ErrSchemaNotFound)
	})

	t.Run("bad type expression", func(t *testing.T) {
		_, _, err := buildRegistry(schemaFile{Records: []recordDef{
			{Name: "A", Fields: []schema.FieldDef{{Name: "m", Type: "map<int32"}}},
		}})
		assert.ErrorIs(t, err, merr.ErrTypeExprMalformed)
	})
}
