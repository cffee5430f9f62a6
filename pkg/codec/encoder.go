package codec

import (
	"encoding/binary"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// encoder 持有单次 Encode 调用独占的缓冲区，调用结束后归还到池中。
type encoder struct {
	c   *Codec
	buf *bytebufferpool.ByteBuffer
}

func newEncoder(c *Codec) *encoder {
	return &encoder{
		c:   c,
		buf: bytebufferpool.Get(),
	}
}

func (e *encoder) release() {
	bytebufferpool.Put(e.buf)
	e.buf = nil
}

// bytes 返回缓冲区内容的拷贝，缓冲区本身会被复用。
func (e *encoder) bytes() []byte {
	out := make([]byte, len(e.buf.B))
	copy(out, e.buf.B)
	return out
}

func (e *encoder) putInt32(v int32) {
	e.buf.B = binary.BigEndian.AppendUint32(e.buf.B, uint32(v))
}

func (e *encoder) putFloat64(v float64) {
	e.buf.B = binary.BigEndian.AppendUint64(e.buf.B, math.Float64bits(v))
}

// putLength 写入长度或计数前缀。
func (e *encoder) putLength(n int, p *fieldPath) error {
	if n > math.MaxInt32 {
		return merr.WrapErrEncoding(p.String(), "length "+strconv.Itoa(n)+" exceeds int32")
	}
	e.putInt32(int32(n))
	return nil
}

func (e *encoder) checkDepth(depth int, p *fieldPath) error {
	if depth > e.c.cfg.MaxDepth {
		return merr.WrapErrDepthExceeded(p.String(), e.c.cfg.MaxDepth)
	}
	return nil
}

// encodeRecord 按字段声明顺序编码非布尔字段，布尔字段延后打包为尾部位图。
func (e *encoder) encodeRecord(v any, s *schema.Schema, p *fieldPath, depth int) error {
	if err := e.checkDepth(depth, p); err != nil {
		return err
	}
	if v == nil {
		return merr.WrapErrUnsupportedType(p.String(), "nil", "expected a "+s.Name+" record")
	}

	var bools []bool
	if n := s.BoolCount(); n > 0 {
		bools = make([]bool, 0, n)
	}
	for i, f := range s.Fields {
		fp := p.field(f.Name)
		fv, err := e.c.binder.Field(s, v, i)
		if err != nil {
			return errors.Wrap(err, fp.String())
		}
		if f.Type.Kind == schema.KindBool {
			b, err := toBool(fv, fp)
			if err != nil {
				return err
			}
			bools = append(bools, b)
			continue
		}
		if err := e.encodeValue(f.Type, fv, fp, depth+1); err != nil {
			return err
		}
	}
	e.putTrailer(bools)
	return nil
}

// putTrailer 将布尔值按 8 个一组打包：第 i 个字节的第 j 位对应第 8*i+j 个布尔字段。
func (e *encoder) putTrailer(bools []bool) {
	if len(bools) == 0 {
		return
	}
	start := len(e.buf.B)
	e.buf.B = append(e.buf.B, make([]byte, (len(bools)+7)/8)...)
	for j, b := range bools {
		if b {
			e.buf.B[start+j/8] |= 1 << (j % 8)
		}
	}
}

func (e *encoder) encodeValue(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	if err := e.checkDepth(depth, p); err != nil {
		return err
	}
	switch d.Kind {
	case schema.KindInt32:
		n, err := toInt32(v, p)
		if err != nil {
			return err
		}
		e.putInt32(n)
	case schema.KindFloat64:
		f, err := toFloat64(v, p)
		if err != nil {
			return err
		}
		e.putFloat64(f)
	case schema.KindBool:
		// 复合类型中的布尔值没有所属记录的位图，按单字节编码
		b, err := toBool(v, p)
		if err != nil {
			return err
		}
		if b {
			e.buf.B = append(e.buf.B, 1)
		} else {
			e.buf.B = append(e.buf.B, 0)
		}
	case schema.KindText:
		s, err := toText(v, p)
		if err != nil {
			return err
		}
		if err := e.putLength(len(s), p); err != nil {
			return err
		}
		e.buf.B = append(e.buf.B, s...)
	case schema.KindSequence:
		return e.encodeSequence(d, v, p, depth)
	case schema.KindSet:
		return e.encodeSet(d, v, p, depth)
	case schema.KindTuple:
		return e.encodeTuple(d, v, p, depth)
	case schema.KindMap:
		return e.encodeMap(d, v, p, depth)
	case schema.KindRecord:
		return e.encodeNested(d, v, p, depth)
	default:
		return merr.WrapErrUnsupportedType(p.String(), d.Kind.String())
	}
	return nil
}

func (e *encoder) encodeSequence(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	if items, ok := v.([]any); ok {
		if err := e.putLength(len(items), p); err != nil {
			return err
		}
		for i, item := range items {
			if err := e.encodeValue(d.Elem, item, p.elem(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	rv, ok := indirect(v)
	if !ok || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected "+d.String())
	}
	n := rv.Len()
	if err := e.putLength(n, p); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.encodeValue(d.Elem, rv.Index(i).Interface(), p.elem(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// encodeSet 按元素升序编码，保证相同集合的编码结果一致。
func (e *encoder) encodeSet(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.Map {
		return merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected "+d.String())
	}
	elems := make([]any, 0, rv.Len())
	iter := rv.MapRange()
	for i := 0; iter.Next(); i++ {
		elem, err := canonicalKey(d.Elem, iter.Key().Interface(), p.elem(i))
		if err != nil {
			return err
		}
		elems = append(elems, elem)
	}
	slices.SortFunc(elems, schema.CompareLeaf)
	// 不同 Go 类型的键可能规范化为同一个值，例如 Set[any]{int32(1), int64(1)}
	elems = slices.CompactFunc(elems, func(a, b any) bool { return schema.CompareLeaf(a, b) == 0 })

	if err := e.putLength(len(elems), p); err != nil {
		return err
	}
	for i, elem := range elems {
		if err := e.encodeValue(d.Elem, elem, p.elem(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

type mapEntry struct {
	key   any
	value any
}

// encodeMap 按键升序编码键值对。
func (e *encoder) encodeMap(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.Map {
		return merr.WrapErrUnsupportedType(p.String(), typeOf(v), "expected "+d.String())
	}
	entries := make([]mapEntry, 0, rv.Len())
	iter := rv.MapRange()
	for i := 0; iter.Next(); i++ {
		key, err := canonicalKey(d.Key, iter.Key().Interface(), p.key(i))
		if err != nil {
			return err
		}
		entries = append(entries, mapEntry{key: key, value: iter.Value().Interface()})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int { return schema.CompareLeaf(a.key, b.key) })
	for i := 1; i < len(entries); i++ {
		if schema.CompareLeaf(entries[i-1].key, entries[i].key) == 0 {
			return merr.WrapErrEncoding(p.key(i).String(), "duplicate map key after normalization")
		}
	}

	if err := e.putLength(len(entries), p); err != nil {
		return err
	}
	for i, entry := range entries {
		if err := e.encodeValue(d.Key, entry.key, p.key(i), depth+1); err != nil {
			return err
		}
		if err := e.encodeValue(d.Value, entry.value, p.elem(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// encodeTuple 按位置编码，元组没有计数前缀。
func (e *encoder) encodeTuple(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	items, err := tupleItems(d, v, p)
	if err != nil {
		return err
	}
	for i, item := range items {
		if err := e.encodeValue(d.Elems[i], item, p.elem(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func tupleArityErr(p *fieldPath, got, want int) error {
	return merr.WrapErrUnsupportedType(p.String(), "tuple",
		"arity "+strconv.Itoa(got)+", want "+strconv.Itoa(want))
}

// encodeNested 先预留 4 字节长度前缀，嵌套记录编码完成后回填其字节长度。
func (e *encoder) encodeNested(d *schema.Descriptor, v any, p *fieldPath, depth int) error {
	pos := len(e.buf.B)
	e.buf.B = append(e.buf.B, 0, 0, 0, 0)
	if err := e.encodeRecord(v, d.Record, p, depth); err != nil {
		return err
	}
	span := len(e.buf.B) - pos - 4
	if span > math.MaxInt32 {
		return merr.WrapErrEncoding(p.String(), "record span "+strconv.Itoa(span)+" exceeds int32")
	}
	binary.BigEndian.PutUint32(e.buf.B[pos:], uint32(span))
	return nil
}
