package codec

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/metrics"
	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/conc"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

type binder = schema.Binder

// Codec 根据 Schema 在记录值与字节序列之间转换。
//
// 约定：
//   - 编码格式不携带任何类型信息，解码方必须持有与编码方相同的 Schema；
//   - 所有定长整数与长度前缀均为 4 字节大端有符号整数；
//   - 每个记录的布尔字段打包为该记录编码末尾的位图。
//
// Codec 除批量接口共用的协程池外不保存调用间的可变状态，可被多个 goroutine 并发使用。
type Codec struct {
	log.Binder

	cfg    Config
	binder binder

	poolMu sync.Mutex
	pool   *conc.Pool[any]
	closed bool
}

var defaultCodec = New()

// New 创建一个 Codec。
func New(opts ...Option) *Codec {
	c := &Codec{
		cfg:    DefaultConfig(),
		binder: schema.ReflectBinder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg.normalize()
	c.SetLogger(log.With(log.FieldComponent("codec")))
	return c
}

// batchPool 在首次批量调用时创建协程池，之后所有批量调用共用。
func (c *Codec) batchPool() (*conc.Pool[any], error) {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	if c.closed {
		return nil, merr.WrapErrParameterInvalidMsg("codec is closed")
	}
	if c.pool == nil {
		opts := []conc.PoolOption{conc.WithConcealPanic(true)}
		if c.cfg.BatchIdleTimeout > 0 {
			opts = append(opts, conc.WithExpiryDuration(c.cfg.BatchIdleTimeout))
		}
		c.pool = conc.NewPool[any](c.cfg.BatchWorkers, opts...)
	}
	return c.pool, nil
}

// Close 释放批量协程池。之后的批量调用返回错误，单条编解码不受影响。
func (c *Codec) Close() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	c.closed = true
	if c.pool != nil {
		c.pool.Release()
		c.pool = nil
	}
}

// Config 返回生效中的配置。
func (c *Codec) Config() Config {
	return c.cfg
}

// Encode 使用默认 Codec 编码 v。
func Encode(v any, s *schema.Schema) ([]byte, error) {
	return defaultCodec.Encode(v, s)
}

// Decode 使用默认 Codec 解码 data。
func Decode(data []byte, s *schema.Schema) (any, error) {
	return defaultCodec.Decode(data, s)
}

// Encode 将记录 v 按 s 编码，返回的切片归调用方所有。
// 失败时不返回任何部分结果。
func (c *Codec) Encode(v any, s *schema.Schema) ([]byte, error) {
	if s == nil {
		return nil, merr.WrapErrParameterMissing("schema")
	}
	start := time.Now()

	enc := newEncoder(c)
	defer enc.release()
	err := enc.encodeRecord(v, s, rootPath(s.Name), 0)

	var out []byte
	if err == nil {
		out = enc.bytes()
	}
	c.observe(metrics.OpEncode, s.Name, len(out), start, err)
	if err != nil {
		c.Logger().RatedWarn(1, "encode record failed",
			log.FieldSchema(s.Name), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// Decode 按 s 解码 data，返回由 Binder 构造的记录实例。
// 缓冲区格式错误时直接失败，不会返回部分填充的记录。
func (c *Codec) Decode(data []byte, s *schema.Schema) (any, error) {
	if s == nil {
		return nil, merr.WrapErrParameterMissing("schema")
	}
	start := time.Now()

	dec := &decoder{c: c, cur: cursor{data: data}}
	v, err := dec.decodeRecord(s, rootPath(s.Name), 0)
	if err == nil && !c.cfg.AllowTrailingBytes && dec.cur.remaining() > 0 {
		err = merr.WrapErrTrailingBytes(s.Name, dec.cur.remaining())
	}
	c.observe(metrics.OpDecode, s.Name, dec.cur.off, start, err)
	if err != nil {
		c.Logger().RatedWarn(1, "decode record failed",
			log.FieldSchema(s.Name), zap.Int("size", len(data)), zap.Error(err))
		return nil, err
	}
	return v, nil
}

// DecodeInto 解码 data 并写入 out 指向的值，out 必须为非 nil 指针。
func (c *Codec) DecodeInto(data []byte, s *schema.Schema, out any) error {
	v, err := c.Decode(data, s)
	if err != nil {
		return err
	}
	return assignResult(out, v, s.Name)
}

func (c *Codec) observe(op, schemaName string, size int, start time.Time, err error) {
	if !c.cfg.EnableMetrics {
		return
	}
	status := metrics.StatusOK
	if err != nil {
		status = merr.Kind(err)
	}
	metrics.CodecOps.WithLabelValues(op, schemaName, status).Inc()
	if err != nil {
		return
	}
	metrics.CodecBytes.WithLabelValues(op, schemaName).Observe(float64(size))
	metrics.CodecLatency.WithLabelValues(op, schemaName).Observe(float64(time.Since(start).Microseconds()))
}
