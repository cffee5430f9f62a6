package cmd

import (
	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	zviper "github.com/lk2023060901/databrief-go/pkg/util/viper"
)

// schemaFile 为 schema 文件的结构。记录使用列表而非 map 声明，
// 因为配置 key 大小写不敏感，而记录名需要保留原样。
//
//	root: Order
//	records:
//	  - name: Order
//	    fields:
//	      - {name: id, type: int32}
//	      - {name: items, type: seq<Item>}
//	  - name: Item
//	    fields:
//	      - {name: sku, type: text}
type schemaFile struct {
	Root    string      `mapstructure:"root"`
	Records []recordDef `mapstructure:"records"`
}

type recordDef struct {
	Name   string            `mapstructure:"name"`
	Fields []schema.FieldDef `mapstructure:"fields"`
}

// loadSchemaFile 读取 schema 文件，返回注册表与根记录。
func loadSchemaFile(path string) (*schema.Registry, *schema.Schema, error) {
	cfg := zviper.New()
	if err := cfg.LoadFile(path); err != nil {
		return nil, nil, err
	}
	var sf schemaFile
	if err := cfg.Unmarshal(&sf); err != nil {
		return nil, nil, merr.WrapErrSchemaInvalid(path, err.Error())
	}
	return buildRegistry(sf)
}

func buildRegistry(sf schemaFile) (*schema.Registry, *schema.Schema, error) {
	if len(sf.Records) == 0 {
		return nil, nil, merr.WrapErrSchemaInvalid(sf.Root, "no records declared")
	}
	defs := make(map[string][]schema.FieldDef, len(sf.Records))
	for _, rd := range sf.Records {
		if rd.Name == "" {
			return nil, nil, merr.WrapErrSchemaInvalid("", "record without name")
		}
		if _, ok := defs[rd.Name]; ok {
			return nil, nil, merr.WrapErrSchemaInvalid(rd.Name, "record declared twice")
		}
		defs[rd.Name] = rd.Fields
	}

	reg := schema.NewRegistry()
	if err := reg.Define(defs); err != nil {
		return nil, nil, err
	}
	root := sf.Root
	if root == "" {
		root = sf.Records[0].Name
	}
	s, err := reg.Lookup(root)
	if err != nil {
		return nil, nil, err
	}
	return reg, s, nil
}
