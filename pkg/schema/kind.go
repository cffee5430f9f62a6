package schema

// Kind 表示字段类型的分类，取值集合是封闭的。
type Kind uint8

const (
	KindInt32 Kind = iota
	KindFloat64
	KindBool
	KindText
	KindRecord
	KindSequence
	KindSet
	KindTuple
	KindMap
)

var kindNames = [...]string{
	KindInt32:    "int32",
	KindFloat64:  "float64",
	KindBool:     "bool",
	KindText:     "text",
	KindRecord:   "record",
	KindSequence: "seq",
	KindSet:      "set",
	KindTuple:    "tuple",
	KindMap:      "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsLeaf 判断该类型是否为叶子类型（直接编码，无需递归分派）。
func (k Kind) IsLeaf() bool {
	return k <= KindText
}

// FixedSize 返回定长叶子类型的编码宽度，非定长类型返回 -1。
// Bool 在记录中不占内联字节，而是放入尾部位图。
func (k Kind) FixedSize() int {
	switch k {
	case KindInt32:
		return 4
	case KindFloat64:
		return 8
	default:
		return -1
	}
}
