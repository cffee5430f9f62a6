package codec

import (
	"strconv"
	"strings"
)

type segmentKind uint8

const (
	segmentRoot segmentKind = iota
	segmentField
	segmentIndex
	segmentKey
)

// fieldPath 以链表形式记录当前正在处理的字段路径，仅在出错时才拼接为字符串，
// 例如 order.items[2].price、prices{1}（第 1 个键值对的键）。
type fieldPath struct {
	parent *fieldPath
	kind   segmentKind
	name   string
	index  int
}

func rootPath(name string) *fieldPath {
	return &fieldPath{kind: segmentRoot, name: name}
}

func (p *fieldPath) field(name string) *fieldPath {
	return &fieldPath{parent: p, kind: segmentField, name: name}
}

func (p *fieldPath) elem(i int) *fieldPath {
	return &fieldPath{parent: p, kind: segmentIndex, index: i}
}

func (p *fieldPath) key(i int) *fieldPath {
	return &fieldPath{parent: p, kind: segmentKey, index: i}
}

func (p *fieldPath) String() string {
	if p == nil {
		return ""
	}
	var segs []*fieldPath
	for cur := p; cur != nil; cur = cur.parent {
		segs = append(segs, cur)
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		seg := segs[i]
		switch seg.kind {
		case segmentRoot:
			b.WriteString(seg.name)
		case segmentField:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.name)
		case segmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte(']')
		case segmentKey:
			b.WriteByte('{')
			b.WriteString(strconv.Itoa(seg.index))
			b.WriteByte('}')
		}
	}
	return b.String()
}
