package schema

import (
	"strings"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// Descriptor 描述一个字段类型。
//
// 仅与 Kind 对应的成员有效：
//   - Sequence / Set 使用 Elem；
//   - Map 使用 Key 与 Value；
//   - Tuple 使用 Elems；
//   - Record 使用 Record 指向嵌套的 Schema。
//
// Descriptor 构建后不可修改，可在多个 goroutine 间共享。
type Descriptor struct {
	Kind   Kind
	Elem   *Descriptor
	Key    *Descriptor
	Value  *Descriptor
	Elems  []*Descriptor
	Record *Schema
}

var (
	int32Desc   = &Descriptor{Kind: KindInt32}
	float64Desc = &Descriptor{Kind: KindFloat64}
	boolDesc    = &Descriptor{Kind: KindBool}
	textDesc    = &Descriptor{Kind: KindText}
)

func Int32() *Descriptor   { return int32Desc }
func Float64() *Descriptor { return float64Desc }
func Bool() *Descriptor    { return boolDesc }
func Text() *Descriptor    { return textDesc }

func RecordOf(s *Schema) *Descriptor {
	return &Descriptor{Kind: KindRecord, Record: s}
}

func SequenceOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindSequence, Elem: elem}
}

func SetOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindSet, Elem: elem}
}

func TupleOf(elems ...*Descriptor) *Descriptor {
	return &Descriptor{Kind: KindTuple, Elems: elems}
}

func MapOf(key, value *Descriptor) *Descriptor {
	return &Descriptor{Kind: KindMap, Key: key, Value: value}
}

// String 以 ParseType 可解析的类型表达式形式输出。
func (d *Descriptor) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}

func (d *Descriptor) writeTo(b *strings.Builder) {
	if d == nil {
		b.WriteString("<nil>")
		return
	}
	switch d.Kind {
	case KindRecord:
		if d.Record == nil {
			b.WriteString("record")
			return
		}
		b.WriteString(d.Record.Name)
	case KindSequence, KindSet:
		b.WriteString(d.Kind.String())
		b.WriteByte('<')
		d.Elem.writeTo(b)
		b.WriteByte('>')
	case KindMap:
		b.WriteString("map<")
		d.Key.writeTo(b)
		b.WriteByte(',')
		d.Value.writeTo(b)
		b.WriteByte('>')
	case KindTuple:
		b.WriteString("tuple<")
		for i, e := range d.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeTo(b)
		}
		b.WriteByte('>')
	default:
		b.WriteString(d.Kind.String())
	}
}

// Validate 校验类型树是否合法。
// Set 元素与 Map 键必须是叶子类型或由它们组成的元组，解码结果会放入 Go map，且编码时按键排序输出。
func (d *Descriptor) Validate(path string) error {
	if d == nil {
		return merr.WrapErrSchemaInvalid(path, "nil type descriptor")
	}
	switch d.Kind {
	case KindInt32, KindFloat64, KindBool, KindText:
		return nil
	case KindRecord:
		if d.Record == nil {
			return merr.WrapErrSchemaInvalid(path, "record descriptor without schema")
		}
		// 嵌套 Schema 在构建时已校验
		return nil
	case KindSequence:
		return d.Elem.Validate(path + "[]")
	case KindSet:
		if err := d.Elem.Validate(path + "[]"); err != nil {
			return err
		}
		if !d.Elem.IsKey() {
			return merr.WrapErrUnsupportedType(path, d.String(), "set element must be a leaf or tuple of leaves")
		}
		return nil
	case KindMap:
		if err := d.Key.Validate(path + "{key}"); err != nil {
			return err
		}
		if !d.Key.IsKey() {
			return merr.WrapErrUnsupportedType(path, d.String(), "map key must be a leaf or tuple of leaves")
		}
		return d.Value.Validate(path + "{value}")
	case KindTuple:
		if len(d.Elems) == 0 {
			return merr.WrapErrSchemaInvalid(path, "tuple must have at least one element")
		}
		for i, e := range d.Elems {
			if err := e.Validate(indexPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return merr.WrapErrUnsupportedType(path, d.Kind.String())
	}
}

// IsKey 判断该类型能否作为 Set 元素或 Map 键。
func (d *Descriptor) IsKey() bool {
	if d == nil {
		return false
	}
	if d.Kind.IsLeaf() {
		return true
	}
	if d.Kind != KindTuple || len(d.Elems) == 0 {
		return false
	}
	for _, e := range d.Elems {
		if !e.IsKey() {
			return false
		}
	}
	return true
}

// Equal 判断结构是否相同，Record 按 Schema 指针比较。
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Kind != other.Kind {
		return false
	}
	switch d.Kind {
	case KindRecord:
		return d.Record == other.Record
	case KindSequence, KindSet:
		return d.Elem.Equal(other.Elem)
	case KindMap:
		return d.Key.Equal(other.Key) && d.Value.Equal(other.Value)
	case KindTuple:
		if len(d.Elems) != len(other.Elems) {
			return false
		}
		for i := range d.Elems {
			if !d.Elems[i].Equal(other.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
