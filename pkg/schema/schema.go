package schema

import (
	"reflect"
	"strconv"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// Record 是记录实例的动态形式，以字段名为键。
type Record map[string]any

// Field 为 Schema 中的一个具名字段。
type Field struct {
	Name string
	Type *Descriptor
	// Index 为通过反射生成 Schema 时对应的结构体字段下标。
	Index []int
}

// Schema 描述一个记录类型的有序字段列表，字段顺序即编码顺序。
// 推荐通过 New 构造；直接以字面量构造时跳过字段名校验，但编解码行为一致。
// 开始使用后不得再修改。
type Schema struct {
	Name   string
	Fields []Field
	// GoType 非空时，ReflectBinder 解码会构造该结构体类型。
	GoType reflect.Type

	index map[string]int
}

// New 根据字段列表构建 Schema，字段名不能为空或重复。
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		Name:   name,
		Fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, merr.WrapErrSchemaInvalid(name, "field "+strconv.Itoa(i)+" has no name")
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, merr.WrapErrSchemaInvalid(name, "duplicate field name "+f.Name)
		}
		if err := f.Type.Validate(joinPath(name, f.Name)); err != nil {
			return nil, err
		}
		s.index[f.Name] = i
	}
	return s, nil
}

// MustNew 与 New 相同，出错时 panic。适用于包级变量。
func MustNew(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// F 为构造 Field 的简写。
func F(name string, typ *Descriptor) Field {
	return Field{Name: name, Type: typ}
}

func (s *Schema) FieldIndex(name string) (int, bool) {
	if s.index == nil {
		for i, f := range s.Fields {
			if f.Name == name {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.FieldIndex(name)
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// BoolCount 返回 Bool 类型字段的数量，每次都从 Fields 重新统计。
func (s *Schema) BoolCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Type.Kind == KindBool {
			n++
		}
	}
	return n
}

// TrailerSize 返回尾部布尔位图的字节数。
func (s *Schema) TrailerSize() int {
	return (s.BoolCount() + 7) / 8
}

// String 输出形如 "Name{field type, ...}" 的描述。
func (s *Schema) String() string {
	buf := make([]byte, 0, 32)
	buf = append(buf, s.Name...)
	buf = append(buf, '{')
	for i, f := range s.Fields {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, f.Name...)
		buf = append(buf, ' ')
		buf = append(buf, f.Type.String()...)
	}
	buf = append(buf, '}')
	return string(buf)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
