package cmd

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

// jsonNumber 匹配 UseNumber 解码出的数字类型。
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// fromJSON 按描述符把 JSON 值转换为编解码器接受的动态值。
//
// 集合用数组表示；映射在键为 text 时可用对象，否则用 [[key, value], ...]。
func fromJSON(desc *schema.Descriptor, v any, path string) (any, error) {
	if v == nil {
		return nil, merr.WrapErrUnsupportedType(path, nil, "null value for "+desc.String())
	}
	switch desc.Kind {
	case schema.KindInt32:
		switch n := v.(type) {
		case jsonNumber:
			i, err := n.Int64()
			if err != nil {
				return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect integer")
			}
			return i, nil
		case float64:
			if n != math.Trunc(n) {
				return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect integer")
			}
			return int64(n), nil
		}
	case schema.KindFloat64:
		switch n := v.(type) {
		case jsonNumber:
			f, err := n.Float64()
			if err != nil {
				return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect number")
			}
			return f, nil
		case float64:
			return n, nil
		}
	case schema.KindBool, schema.KindText:
		return v, nil
	case schema.KindRecord:
		return recordFromJSON(desc.Record, v, path)
	case schema.KindSequence, schema.KindSet, schema.KindTuple:
		arr, ok := v.([]any)
		if !ok {
			break
		}
		return listFromJSON(desc, arr, path)
	case schema.KindMap:
		return mapFromJSON(desc, v, path)
	}
	return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect "+desc.String())
}

func recordFromJSON(s *schema.Schema, v any, path string) (schema.Record, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect object for record "+s.Name)
	}
	rec := make(schema.Record, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := obj[f.Name]
		if !ok {
			// 缺失字段交给编码器报告 FieldNotFound。
			continue
		}
		fv, err := fromJSON(f.Type, raw, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = fv
	}
	return rec, nil
}

func listFromJSON(desc *schema.Descriptor, arr []any, path string) (any, error) {
	switch desc.Kind {
	case schema.KindTuple:
		if len(arr) != len(desc.Elems) {
			return nil, merr.WrapErrUnsupportedType(path, "tuple", fmt.Sprintf("arity %d, want %d", len(arr), len(desc.Elems)))
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			ev, err := fromJSON(desc.Elems[i], e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case schema.KindSet:
		set := typeutil.NewSet[any]()
		for i, e := range arr {
			ev, err := keyFromJSON(desc.Elem, e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			set.Insert(ev)
		}
		return set, nil
	default:
		out := make([]any, len(arr))
		for i, e := range arr {
			ev, err := fromJSON(desc.Elem, e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
}

// keyFromJSON 转换集合元素或映射键，元组键打包为 schema.TupleKey 以便放入 Go map。
func keyFromJSON(desc *schema.Descriptor, v any, path string) (any, error) {
	kv, err := fromJSON(desc, v, path)
	if err != nil {
		return nil, err
	}
	return packKey(desc, kv), nil
}

func packKey(desc *schema.Descriptor, v any) any {
	items, ok := v.([]any)
	if desc.Kind != schema.KindTuple || !ok {
		return v
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = packKey(desc.Elems[i], item)
	}
	return schema.TupleKey(out...)
}

func mapFromJSON(desc *schema.Descriptor, v any, path string) (any, error) {
	out := make(map[any]any)
	put := func(k, val any, at string) error {
		kv, err := keyFromJSON(desc.Key, k, at)
		if err != nil {
			return err
		}
		vv, err := fromJSON(desc.Value, val, at)
		if err != nil {
			return err
		}
		if _, dup := out[kv]; dup {
			return merr.WrapErrEncoding(at, "duplicate map key")
		}
		out[kv] = vv
		return nil
	}

	switch m := v.(type) {
	case map[string]any:
		if desc.Key.Kind != schema.KindText {
			return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "object form requires text keys, use [[key, value], ...]")
		}
		for k, val := range m {
			if err := put(k, val, path+"{"+k+"}"); err != nil {
				return nil, err
			}
		}
	case []any:
		for i, e := range m {
			pair, ok := e.([]any)
			at := fmt.Sprintf("%s{%d}", path, i)
			if !ok || len(pair) != 2 {
				return nil, merr.WrapErrUnsupportedType(at, reflect.TypeOf(e), "expect [key, value] pair")
			}
			if err := put(pair[0], pair[1], at); err != nil {
				return nil, err
			}
		}
	default:
		return nil, merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "expect "+desc.String())
	}
	return out, nil
}

// toJSON 把解码结果转换为可稳定输出的 JSON 值：
// 集合输出为有序数组，映射输出为按键排序的 [[key, value], ...]，
// 键为 text 的映射输出为对象。
func toJSON(desc *schema.Descriptor, v any) any {
	switch desc.Kind {
	case schema.KindRecord:
		rec, ok := v.(schema.Record)
		if !ok {
			return v
		}
		obj := make(map[string]any, len(rec))
		for _, f := range desc.Record.Fields {
			obj[f.Name] = toJSON(f.Type, rec[f.Name])
		}
		return obj
	case schema.KindSequence:
		arr, _ := v.([]any)
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = toJSON(desc.Elem, e)
		}
		return out
	case schema.KindTuple:
		arr, _ := v.([]any)
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = toJSON(desc.Elems[i], e)
		}
		return out
	case schema.KindSet:
		set, _ := v.(typeutil.Set[any])
		keys := set.Collect()
		sortLeaves(keys)
		for i, k := range keys {
			keys[i] = keyToJSON(k)
		}
		return keys
	case schema.KindMap:
		m, _ := v.(map[any]any)
		if desc.Key.Kind == schema.KindText {
			obj := make(map[string]any, len(m))
			for k, val := range m {
				obj[k.(string)] = toJSON(desc.Value, val)
			}
			return obj
		}
		keys := make([]any, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sortLeaves(keys)
		pairs := make([]any, len(keys))
		for i, k := range keys {
			pairs[i] = []any{keyToJSON(k), toJSON(desc.Value, m[k])}
		}
		return pairs
	default:
		return v
	}
}

// keyToJSON 把元组键还原为数组。
func keyToJSON(k any) any {
	items, ok := schema.TupleElems(k)
	if !ok {
		return k
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = keyToJSON(item)
	}
	return out
}

func sortLeaves(keys []any) {
	sort.Slice(keys, func(i, j int) bool {
		return schema.CompareLeaf(keys[i], keys[j]) < 0
	})
}
