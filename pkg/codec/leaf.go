package codec

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// 叶子类型的取值转换。编码端接受所有 Go 整数、浮点、布尔与字符串类型（含具名类型与指针），
// 并统一转换为 int32 / float64 / bool / string 四种规范形式。

func typeOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// indirect 解引用指针，nil 指针返回 false。
func indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return rv, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func toInt32(v any, p *fieldPath) (int32, error) {
	switch x := v.(type) {
	case int32:
		return x, nil
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, merr.WrapErrIntegerOverflow(p.String(), x)
		}
		return int32(x), nil
	case int64:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, merr.WrapErrIntegerOverflow(p.String(), x)
		}
		return int32(x), nil
	}
	rv, ok := indirect(v)
	if !ok {
		return 0, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected int32")
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, merr.WrapErrIntegerOverflow(p.String(), n)
		}
		return int32(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return 0, merr.WrapErrIntegerOverflow(p.String(), n)
		}
		return int32(n), nil
	}
	return 0, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected int32")
}

func toFloat64(v any, p *fieldPath) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	rv, ok := indirect(v)
	if ok && (rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64) {
		return rv.Float(), nil
	}
	return 0, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected float64")
}

func toBool(v any, p *fieldPath) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	rv, ok := indirect(v)
	if ok && rv.Kind() == reflect.Bool {
		return rv.Bool(), nil
	}
	return false, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected bool")
}

func toText(v any, p *fieldPath) (string, error) {
	s, ok := v.(string)
	if !ok {
		rv, valid := indirect(v)
		if !valid || rv.Kind() != reflect.String {
			return "", merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected text")
		}
		s = rv.String()
	}
	if !utf8.ValidString(s) {
		return "", merr.WrapErrEncoding(p.String(), "text is not valid UTF-8")
	}
	return s, nil
}

// canonicalKey 将 Set 元素或 Map 键转换为规范形式，用于排序与去重。
// 元组键逐元素规范化后打包为 schema.TupleKey 数组。
func canonicalKey(d *schema.Descriptor, v any, p *fieldPath) (any, error) {
	switch d.Kind {
	case schema.KindInt32:
		return toInt32(v, p)
	case schema.KindFloat64:
		return toFloat64(v, p)
	case schema.KindBool:
		return toBool(v, p)
	case schema.KindText:
		return toText(v, p)
	case schema.KindTuple:
		items, err := tupleItems(d, v, p)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if items[i], err = canonicalKey(d.Elems[i], items[i], p.elem(i)); err != nil {
				return nil, err
			}
		}
		return schema.TupleKey(items...), nil
	default:
		return nil, merr.WrapErrUnsupportedType(p.String(), d.String(), "set element and map key must be a leaf or tuple of leaves")
	}
}

// tupleItems 按位置取出元组元素，接受 []any、切片、数组以及嵌入了 schema.Tuple 的结构体。
func tupleItems(d *schema.Descriptor, v any, p *fieldPath) ([]any, error) {
	arity := len(d.Elems)
	if items, ok := v.([]any); ok {
		if len(items) != arity {
			return nil, tupleArityErr(p, len(items), arity)
		}
		return items, nil
	}
	rv, ok := indirect(v)
	if !ok {
		return nil, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected "+d.String())
	}
	switch {
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		if rv.Len() != arity {
			return nil, tupleArityErr(p, rv.Len(), arity)
		}
		items := make([]any, arity)
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	case schema.IsTupleStruct(rv.Type()):
		fields := schema.TupleFields(rv.Type())
		if len(fields) != arity {
			return nil, tupleArityErr(p, len(fields), arity)
		}
		items := make([]any, arity)
		for i, idx := range fields {
			items[i] = rv.Field(idx).Interface()
		}
		return items, nil
	}
	return nil, merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected "+d.String())
}

// minEncodedSize 返回该类型一个值编码后的最小字节数，用于在分配前粗略校验计数前缀。
func minEncodedSize(d *schema.Descriptor) int {
	switch d.Kind {
	case schema.KindInt32, schema.KindText, schema.KindSequence, schema.KindSet,
		schema.KindMap, schema.KindRecord:
		return 4
	case schema.KindFloat64:
		return 8
	case schema.KindBool:
		return 1
	case schema.KindTuple:
		n := 0
		for _, e := range d.Elems {
			n += minEncodedSize(e)
		}
		return n
	}
	return 0
}
