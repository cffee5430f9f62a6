package schema

import (
	"math"
	"reflect"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

// Assign 将解码得到的动态值写入 dst。
// 支持 []any、[N]any 元组键、map[any]any、typeutil.Set[any]、Record 到具体 Go 类型的转换。
// v 为 nil 时不修改 dst。
func Assign(dst reflect.Value, v any, path string) error {
	if v == nil {
		return nil
	}
	if dst.Kind() == reflect.Ptr {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return Assign(dst.Elem(), v, path)
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt64(src)
		if !ok {
			return mismatch(dst, v, path)
		}
		if dst.OverflowInt(n) {
			return merr.WrapErrIntegerOverflow(path, n)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asInt64(src)
		if !ok {
			return mismatch(dst, v, path)
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return merr.WrapErrIntegerOverflow(path, n)
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		if src.Kind() != reflect.Float32 && src.Kind() != reflect.Float64 {
			return mismatch(dst, v, path)
		}
		f := src.Float()
		if dst.Kind() == reflect.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) && dst.OverflowFloat(f) {
			return merr.WrapErrIntegerOverflow(path, f)
		}
		dst.SetFloat(f)
	case reflect.Bool:
		if src.Kind() != reflect.Bool {
			return mismatch(dst, v, path)
		}
		dst.SetBool(src.Bool())
	case reflect.String:
		if src.Kind() != reflect.String {
			return mismatch(dst, v, path)
		}
		dst.SetString(src.String())
	case reflect.Slice:
		items, ok := TupleElems(v)
		if !ok {
			return mismatch(dst, v, path)
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := Assign(out.Index(i), item, indexPath(path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
	case reflect.Array:
		items, ok := TupleElems(v)
		if !ok || len(items) != dst.Len() {
			return mismatch(dst, v, path)
		}
		for i, item := range items {
			if err := Assign(dst.Index(i), item, indexPath(path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		return assignMap(dst, v, path)
	case reflect.Struct:
		return assignStruct(dst, v, path)
	case reflect.Interface:
		if !src.Type().Implements(dst.Type()) {
			return mismatch(dst, v, path)
		}
		dst.Set(src)
	default:
		return mismatch(dst, v, path)
	}
	return nil
}

func assignMap(dst reflect.Value, v any, path string) error {
	t := dst.Type()
	if isEmptyStruct(t.Elem()) {
		set, ok := v.(typeutil.Set[any])
		if !ok {
			return mismatch(dst, v, path)
		}
		out := reflect.MakeMapWithSize(t, set.Len())
		for item := range set {
			key := reflect.New(t.Key()).Elem()
			if err := Assign(key, item, path+"{key}"); err != nil {
				return err
			}
			out.SetMapIndex(key, reflect.New(t.Elem()).Elem())
		}
		dst.Set(out)
		return nil
	}
	m, ok := v.(map[any]any)
	if !ok {
		return mismatch(dst, v, path)
	}
	out := reflect.MakeMapWithSize(t, len(m))
	for k, item := range m {
		key := reflect.New(t.Key()).Elem()
		if err := Assign(key, k, path+"{key}"); err != nil {
			return err
		}
		val := reflect.New(t.Elem()).Elem()
		if err := Assign(val, item, path+"{value}"); err != nil {
			return err
		}
		out.SetMapIndex(key, val)
	}
	dst.Set(out)
	return nil
}

func assignStruct(dst reflect.Value, v any, path string) error {
	t := dst.Type()
	if items, ok := TupleElems(v); ok {
		if !isTupleStruct(t) {
			return mismatch(dst, v, path)
		}
		fields := TupleFields(t)
		if len(fields) != len(items) {
			return mismatch(dst, v, path)
		}
		for i, idx := range fields {
			if err := Assign(dst.Field(idx), items[i], indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	switch src := v.(type) {
	case Record:
		for name, item := range src {
			fv, ok := structField(dst, name)
			if !ok {
				return merr.WrapErrFieldNotFound(name, "in "+t.String())
			}
			if err := Assign(fv, item, joinPath(path, name)); err != nil {
				return err
			}
		}
		return nil
	}
	return mismatch(dst, v, path)
}

func asInt64(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func mismatch(dst reflect.Value, v any, path string) error {
	return merr.WrapErrUnsupportedType(path, reflect.TypeOf(v), "cannot assign to "+dst.Type().String())
}
