package schema

import (
	"reflect"
	"strings"
	"sync"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// TagName 为反射生成 Schema 时读取的结构体标签。
// `brief:"name"` 重命名字段，`brief:"-"` 忽略字段。
const TagName = "brief"

// Tuple 作为匿名字段嵌入时，将结构体标记为定长元组。
// 其余导出字段按声明顺序作为元组元素。
//
//	type Point struct {
//		schema.Tuple
//		X, Y int32
//	}
type Tuple struct{}

var tupleType = reflect.TypeOf(Tuple{})

// Introspector 根据记录类型推导 Schema。
type Introspector interface {
	Introspect(t reflect.Type) (*Schema, error)
}

// ReflectIntrospector 基于反射从 Go 结构体生成 Schema。
// 结果按类型缓存，同一类型总是返回同一个 *Schema。
type ReflectIntrospector struct {
	cache sync.Map // reflect.Type -> *Schema
}

var defaultIntrospector = NewReflectIntrospector()

func NewReflectIntrospector() *ReflectIntrospector {
	return &ReflectIntrospector{}
}

// Of 使用默认 Introspector 推导 v 的动态类型对应的 Schema。
func Of(v any) (*Schema, error) {
	return defaultIntrospector.Introspect(reflect.TypeOf(v))
}

// SchemaFor 使用默认 Introspector 推导 T 的 Schema。
func SchemaFor[T any]() (*Schema, error) {
	return defaultIntrospector.Introspect(reflect.TypeOf((*T)(nil)).Elem())
}

func (r *ReflectIntrospector) Introspect(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, merr.WrapErrUnsupportedType("", "nil")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || isTupleStruct(t) {
		return nil, merr.WrapErrUnsupportedType("", t.String(), "record type must be a struct")
	}
	return r.record(t, map[reflect.Type]bool{})
}

func (r *ReflectIntrospector) record(t reflect.Type, visiting map[reflect.Type]bool) (*Schema, error) {
	if cached, ok := r.cache.Load(t); ok {
		return cached.(*Schema), nil
	}
	if visiting[t] {
		return nil, merr.WrapErrUnsupportedType(typeName(t), t.String(), "recursive record type")
	}
	visiting[t] = true
	defer delete(visiting, t)

	name := typeName(t)
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldName := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				fieldName = tag
			}
		}
		d, err := r.resolve(sf.Type, joinPath(name, fieldName), visiting)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: fieldName, Type: d, Index: sf.Index})
	}

	s, err := New(name, fields...)
	if err != nil {
		return nil, err
	}
	s.GoType = t
	actual, _ := r.cache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

func (r *ReflectIntrospector) resolve(t reflect.Type, path string, visiting map[reflect.Type]bool) (*Descriptor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int32(), nil
	case reflect.Float32, reflect.Float64:
		return Float64(), nil
	case reflect.Bool:
		return Bool(), nil
	case reflect.String:
		return Text(), nil
	case reflect.Slice:
		elem, err := r.resolve(t.Elem(), path+"[]", visiting)
		if err != nil {
			return nil, err
		}
		return SequenceOf(elem), nil
	case reflect.Array:
		elem, err := r.resolve(t.Elem(), path+"[]", visiting)
		if err != nil {
			return nil, err
		}
		elems := make([]*Descriptor, t.Len())
		for i := range elems {
			elems[i] = elem
		}
		return TupleOf(elems...), nil
	case reflect.Map:
		key, err := r.resolve(t.Key(), path+"{key}", visiting)
		if err != nil {
			return nil, err
		}
		if isEmptyStruct(t.Elem()) {
			return SetOf(key), nil
		}
		value, err := r.resolve(t.Elem(), path+"{value}", visiting)
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), nil
	case reflect.Struct:
		if isTupleStruct(t) {
			return r.tuple(t, path, visiting)
		}
		s, err := r.record(t, visiting)
		if err != nil {
			return nil, err
		}
		return RecordOf(s), nil
	default:
		return nil, merr.WrapErrUnsupportedType(path, t.String())
	}
}

func (r *ReflectIntrospector) tuple(t reflect.Type, path string, visiting map[reflect.Type]bool) (*Descriptor, error) {
	fields := TupleFields(t)
	elems := make([]*Descriptor, 0, len(fields))
	for i, idx := range fields {
		d, err := r.resolve(t.Field(idx).Type, indexPath(path, i), visiting)
		if err != nil {
			return nil, err
		}
		elems = append(elems, d)
	}
	return TupleOf(elems...), nil
}

// TupleFields 返回元组结构体中元素字段的下标。
func TupleFields(t reflect.Type) []int {
	out := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == tupleType {
			continue
		}
		if !sf.IsExported() || sf.Tag.Get(TagName) == "-" {
			continue
		}
		out = append(out, i)
	}
	return out
}

// IsTupleStruct 判断 t 是否嵌入了 Tuple 标记。
func IsTupleStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && isTupleStruct(t)
}

func isTupleStruct(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == tupleType {
			return true
		}
	}
	return false
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
