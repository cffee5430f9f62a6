package schema

import (
	"reflect"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// Binder 负责记录实例与字段值之间的转换：
//   - 编码时从实例中读取字段值；
//   - 解码时根据字段值构造实例。
type Binder interface {
	// Field 返回 instance 中第 i 个字段的值。
	Field(s *Schema, instance any, i int) (any, error)
	// Construct 根据以字段名为键的 values 构造实例。
	Construct(s *Schema, values Record) (any, error)
}

// RecordBinder 仅处理动态 Record。
type RecordBinder struct{}

var _ Binder = RecordBinder{}

func (RecordBinder) Field(s *Schema, instance any, i int) (any, error) {
	var m map[string]any
	switch r := instance.(type) {
	case Record:
		m = r
	case map[string]any:
		m = r
	case *Record:
		if r != nil {
			m = *r
		}
	default:
		return nil, merr.WrapErrUnsupportedType(s.Name, reflect.TypeOf(instance), "expected a record")
	}
	name := s.Fields[i].Name
	v, ok := m[name]
	if !ok {
		return nil, merr.WrapErrFieldNotFound(name, "in "+s.Name)
	}
	return v, nil
}

func (RecordBinder) Construct(_ *Schema, values Record) (any, error) {
	return values, nil
}

// ReflectBinder 同时支持 Go 结构体与 Record。
// Schema 带有 GoType 时解码为该结构体，否则解码为 Record。
type ReflectBinder struct {
	RecordBinder
}

var _ Binder = ReflectBinder{}

func (b ReflectBinder) Field(s *Schema, instance any, i int) (any, error) {
	switch instance.(type) {
	case Record, map[string]any, *Record:
		return b.RecordBinder.Field(s, instance, i)
	}
	rv := reflect.ValueOf(instance)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, merr.WrapErrUnsupportedType(s.Name, reflect.TypeOf(instance), "nil record")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, merr.WrapErrUnsupportedType(s.Name, reflect.TypeOf(instance), "expected a struct")
	}
	f := s.Fields[i]
	if f.Index != nil && rv.Type() == s.GoType {
		return rv.FieldByIndex(f.Index).Interface(), nil
	}
	fv, ok := structField(rv, f.Name)
	if !ok {
		return nil, merr.WrapErrFieldNotFound(f.Name, "in "+rv.Type().String())
	}
	return fv.Interface(), nil
}

func (b ReflectBinder) Construct(s *Schema, values Record) (any, error) {
	if s.GoType == nil {
		return values, nil
	}
	rv := reflect.New(s.GoType).Elem()
	for _, f := range s.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		var dst reflect.Value
		if f.Index != nil {
			dst = rv.FieldByIndex(f.Index)
		} else if dst, ok = structField(rv, f.Name); !ok {
			return nil, merr.WrapErrFieldNotFound(f.Name, "in "+s.GoType.String())
		}
		if err := Assign(dst, v, joinPath(s.Name, f.Name)); err != nil {
			return nil, err
		}
	}
	return rv.Interface(), nil
}

// structField 按字段名（考虑 brief 标签）查找结构体字段。
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get(TagName)
		if tag == name || (tag == "" && sf.Name == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
