package codec

import (
	"encoding/binary"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	"github.com/lk2023060901/databrief-go/pkg/util/typeutil"
)

// cursor 为只读缓冲区上的读取位置，所有读取都先做边界检查。
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) take(n int, p *fieldPath) ([]byte, error) {
	if n > c.remaining() {
		return nil, merr.WrapErrTruncatedBuffer(p.String(), n, c.remaining())
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) readInt32(p *fieldPath) (int32, error) {
	b, err := c.take(4, p)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// readLength 读取文本或嵌套记录的字节长度前缀。
func (c *cursor) readLength(p *fieldPath) (int, error) {
	n, err := c.readInt32(p)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, merr.WrapErrInvalidCount(p.String(), int64(n), "negative length prefix")
	}
	return int(n), nil
}

type decoder struct {
	c   *Codec
	cur cursor
}

func (d *decoder) checkDepth(depth int, p *fieldPath) error {
	if depth > d.c.cfg.MaxDepth {
		return merr.WrapErrDepthExceeded(p.String(), d.c.cfg.MaxDepth)
	}
	return nil
}

// readCount 读取元素计数，并在分配内存前依据剩余字节数与 MaxElements 校验。
func (d *decoder) readCount(elem int, p *fieldPath) (int, error) {
	n, err := d.cur.readInt32(p)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, merr.WrapErrInvalidCount(p.String(), int64(n), "negative element count")
	}
	if int(n) > d.c.cfg.MaxElements {
		return 0, merr.WrapErrInvalidCount(p.String(), int64(n), "element count exceeds limit")
	}
	// 零宽元素（如 tuple<>）也按 1 字节计，避免空缓冲区撑起巨大的分配。
	cost := max(elem, 1)
	if int(n) > d.cur.remaining()/cost {
		return 0, merr.WrapErrTruncatedBuffer(p.String(), int(n)*cost, d.cur.remaining())
	}
	return int(n), nil
}

// decodeRecord 与 encodeRecord 的遍历顺序完全一致：先按声明顺序解码非布尔字段，
// 再读取尾部位图为布尔字段赋值，最后交由 Binder 构造实例。
func (d *decoder) decodeRecord(s *schema.Schema, p *fieldPath, depth int) (any, error) {
	if err := d.checkDepth(depth, p); err != nil {
		return nil, err
	}
	values := make(schema.Record, len(s.Fields))
	var bools []string
	for _, f := range s.Fields {
		if f.Type.Kind == schema.KindBool {
			bools = append(bools, f.Name)
			continue
		}
		v, err := d.decodeValue(f.Type, p.field(f.Name), depth+1)
		if err != nil {
			return nil, err
		}
		values[f.Name] = v
	}

	if len(bools) > 0 {
		trailer, err := d.cur.take((len(bools)+7)/8, p)
		if err != nil {
			return nil, err
		}
		for j, name := range bools {
			values[name] = trailer[j/8]>>(j%8)&1 == 1
		}
	}

	inst, err := d.c.binder.Construct(s, values)
	if err != nil {
		if merr.IsBriefError(err) {
			return nil, errors.Wrap(err, "construct "+s.Name)
		}
		return nil, merr.WrapErrConstructFailed(s.Name, err)
	}
	return inst, nil
}

func (d *decoder) decodeValue(t *schema.Descriptor, p *fieldPath, depth int) (any, error) {
	if err := d.checkDepth(depth, p); err != nil {
		return nil, err
	}
	switch t.Kind {
	case schema.KindInt32:
		return d.cur.readInt32(p)
	case schema.KindFloat64:
		b, err := d.cur.take(8, p)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case schema.KindBool:
		b, err := d.cur.take(1, p)
		if err != nil {
			return nil, err
		}
		return b[0] != 0, nil
	case schema.KindText:
		n, err := d.cur.readLength(p)
		if err != nil {
			return nil, err
		}
		b, err := d.cur.take(n, p)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, merr.WrapErrInvalidUtf8(p.String(), n)
		}
		return string(b), nil
	case schema.KindSequence:
		n, err := d.readCount(minEncodedSize(t.Elem), p)
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := range out {
			if out[i], err = d.decodeValue(t.Elem, p.elem(i), depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case schema.KindSet:
		n, err := d.readCount(minEncodedSize(t.Elem), p)
		if err != nil {
			return nil, err
		}
		out := make(typeutil.Set[any], n)
		for i := 0; i < n; i++ {
			v, err := d.decodeKey(t.Elem, p.elem(i), depth+1)
			if err != nil {
				return nil, err
			}
			out.Insert(v)
		}
		return out, nil
	case schema.KindTuple:
		out := make([]any, len(t.Elems))
		for i, et := range t.Elems {
			v, err := d.decodeValue(et, p.elem(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case schema.KindMap:
		n, err := d.readCount(minEncodedSize(t.Key)+minEncodedSize(t.Value), p)
		if err != nil {
			return nil, err
		}
		out := make(map[any]any, n)
		for i := 0; i < n; i++ {
			k, err := d.decodeKey(t.Key, p.key(i), depth+1)
			if err != nil {
				return nil, err
			}
			v, err := d.decodeValue(t.Value, p.elem(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case schema.KindRecord:
		return d.decodeNested(t.Record, p, depth)
	default:
		return nil, merr.WrapErrUnsupportedType(p.String(), t.Kind.String())
	}
}

// decodeKey 解码 Set 元素或 Map 键。元组键解码为 schema.TupleKey 数组，使其可放入 Go map。
func (d *decoder) decodeKey(t *schema.Descriptor, p *fieldPath, depth int) (any, error) {
	if t.Kind != schema.KindTuple {
		return d.decodeValue(t, p, depth)
	}
	if err := d.checkDepth(depth, p); err != nil {
		return nil, err
	}
	items := make([]any, len(t.Elems))
	for i, et := range t.Elems {
		v, err := d.decodeKey(et, p.elem(i), depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return schema.TupleKey(items...), nil
}

// decodeNested 读取长度前缀并截取对应字节，嵌套记录只在该片段内解码，且必须恰好读完。
func (d *decoder) decodeNested(s *schema.Schema, p *fieldPath, depth int) (any, error) {
	n, err := d.cur.readLength(p)
	if err != nil {
		return nil, err
	}
	span, err := d.cur.take(n, p)
	if err != nil {
		return nil, err
	}
	sub := &decoder{c: d.c, cur: cursor{data: span}}
	v, err := sub.decodeRecord(s, p, depth)
	if err != nil {
		return nil, err
	}
	if sub.cur.remaining() != 0 {
		return nil, merr.WrapErrInvalidCount(p.String(), int64(n), "record span not fully consumed")
	}
	return v, nil
}

// assignResult 将解码结果写入调用方提供的指针。
func assignResult(out any, v any, name string) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return merr.WrapErrParameterInvalidMsg("decode target must be a non-nil pointer, got %T", out)
	}
	return schema.Assign(rv.Elem(), v, name)
}
