package codec

import (
	"time"

	"github.com/lk2023060901/databrief-go/pkg/schema"
)

const (
	defaultMaxDepth     = 64
	defaultMaxElements  = 1 << 24
	defaultBatchWorkers = 0 // 0 表示使用 GOMAXPROCS
)

// Config 为编解码器的可配置项，可通过 paramtable 从 YAML 加载。
type Config struct {
	// MaxDepth 限制记录与复合类型的最大嵌套深度，编码与解码均生效。
	MaxDepth int `mapstructure:"maxDepth" json:"maxDepth"`
	// MaxElements 限制解码时单个计数前缀允许的最大元素个数，在分配内存之前校验。
	MaxElements int `mapstructure:"maxElements" json:"maxElements"`
	// AllowTrailingBytes 为 true 时，顶层解码允许缓冲区末尾存在未读取的字节。
	AllowTrailingBytes bool `mapstructure:"allowTrailingBytes" json:"allowTrailingBytes"`
	// BatchWorkers 为批量编解码使用的协程数，<= 0 时使用 GOMAXPROCS。
	BatchWorkers int `mapstructure:"batchWorkers" json:"batchWorkers"`
	// BatchIdleTimeout 为批量协程池中空闲 worker 的回收间隔，<= 0 时使用 ants 的默认值。
	BatchIdleTimeout time.Duration `mapstructure:"batchIdleTimeout" json:"batchIdleTimeout"`
	// EnableMetrics 控制是否上报 Prometheus 指标。
	EnableMetrics bool `mapstructure:"enableMetrics" json:"enableMetrics"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		MaxDepth:      defaultMaxDepth,
		MaxElements:   defaultMaxElements,
		BatchWorkers:  defaultBatchWorkers,
		EnableMetrics: true,
	}
}

func (c *Config) normalize() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.MaxElements <= 0 {
		c.MaxElements = defaultMaxElements
	}
}

// Option 用于配置 Codec 的选项函数。
type Option func(c *Codec)

// WithConfig 整体替换配置。
func WithConfig(cfg Config) Option {
	return func(c *Codec) {
		c.cfg = cfg
	}
}

// WithBinder 指定记录实例的访问与构造方式，默认为 schema.ReflectBinder。
func WithBinder(b schema.Binder) Option {
	return func(c *Codec) {
		c.binder = b
	}
}

func WithMaxDepth(n int) Option {
	return func(c *Codec) {
		c.cfg.MaxDepth = n
	}
}

func WithMaxElements(n int) Option {
	return func(c *Codec) {
		c.cfg.MaxElements = n
	}
}

func WithAllowTrailingBytes(v bool) Option {
	return func(c *Codec) {
		c.cfg.AllowTrailingBytes = v
	}
}

func WithBatchWorkers(n int) Option {
	return func(c *Codec) {
		c.cfg.BatchWorkers = n
	}
}

func WithBatchIdleTimeout(d time.Duration) Option {
	return func(c *Codec) {
		c.cfg.BatchIdleTimeout = d
	}
}

func WithMetrics(v bool) Option {
	return func(c *Codec) {
		c.cfg.EnableMetrics = v
	}
}
