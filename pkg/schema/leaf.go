package schema

import (
	"cmp"
	"reflect"
)

var anyType = reflect.TypeFor[any]()

// CompareLeaf 比较两个同类型的规范键值，用于 Set 元素与 Map 键的确定性排序。
// 键值为叶子（int32、float64、bool、string），或由键值组成的元组（[]any 或 TupleKey 生成的数组），
// 元组逐个元素比较，前缀相同时较短者在前。类型不一致时返回 0。
func CompareLeaf(a, b any) int {
	switch x := a.(type) {
	case int32:
		if y, ok := b.(int32); ok {
			return cmp.Compare(x, y)
		}
		return 0
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
		return 0
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
		return 0
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
		return 0
	}

	xs, ok := TupleElems(a)
	if !ok {
		return 0
	}
	ys, ok := TupleElems(b)
	if !ok {
		return 0
	}
	for i := range min(len(xs), len(ys)) {
		if c := CompareLeaf(xs[i], ys[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(xs), len(ys))
}

// TupleKey 将元组元素打包为 [N]any 数组，可作为 Go map 的键。
// 元素本身必须可比较。
func TupleKey(elems ...any) any {
	arr := reflect.New(reflect.ArrayOf(len(elems), anyType)).Elem()
	for i := range elems {
		arr.Index(i).Set(reflect.ValueOf(&elems[i]).Elem())
	}
	return arr.Interface()
}

// TupleElems 展开 []any 或 [N]any 形式的元组。
func TupleElems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Array || rv.Type().Elem() != anyType {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
