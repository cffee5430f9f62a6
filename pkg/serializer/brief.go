package serializer

import (
	"reflect"

	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// BriefSerializer 使用 codec 进行二进制序列化，Schema 由传入对象的结构体类型推导并缓存。
//
// 注意：编码结果不携带类型信息，Unmarshal 的目标类型必须与 Marshal 时的类型一致。
type BriefSerializer struct {
	codec        *codec.Codec
	introspector schema.Introspector
}

// 编译期断言：确保 BriefSerializer 实现了 Serializer 接口。
var _ Serializer = (*BriefSerializer)(nil)

// NewBriefSerializer 创建 BriefSerializer。c 为 nil 时使用默认配置的 Codec。
func NewBriefSerializer(c *codec.Codec) *BriefSerializer {
	if c == nil {
		c = codec.New()
	}
	return &BriefSerializer{
		codec:        c,
		introspector: schema.NewReflectIntrospector(),
	}
}

func (b *BriefSerializer) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, merr.WrapErrParameterMissing("value")
	}
	s, err := b.introspector.Introspect(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	return b.codec.Encode(v, s)
}

func (b *BriefSerializer) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return merr.WrapErrParameterInvalidMsg("serializer: BriefSerializer requires a non-nil pointer, got %T", v)
	}
	s, err := b.introspector.Introspect(rv.Type())
	if err != nil {
		return err
	}
	return b.codec.DecodeInto(data, s, v)
}
