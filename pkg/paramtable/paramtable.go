// Package paramtable 汇总各组件的配置项，并提供默认值。
package paramtable

import (
	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/util/viper"
)

// ComponentParam 为进程级配置，对应配置文件的顶层结构：
//
//	codec:
//	  maxDepth: 64
//	  allowTrailingBytes: false
//	log:
//	  level: info
//	metrics:
//	  enabled: true
type ComponentParam struct {
	Codec   codec.Config  `mapstructure:"codec"`
	Log     log.Config    `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig 控制 Prometheus 指标的注册。
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default 返回全部使用默认值的配置。
func Default() *ComponentParam {
	return &ComponentParam{
		Codec: codec.DefaultConfig(),
		Log: log.Config{
			Level:  "info",
			Format: "text",
			Stdout: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load 以默认值为基础，用 cfg 中出现的配置项覆盖。cfg 为 nil 时直接返回默认值。
func Load(cfg *viper.Config) (*ComponentParam, error) {
	params := Default()
	if cfg == nil {
		return params, nil
	}
	if err := cfg.Unmarshal(params); err != nil {
		return nil, err
	}
	params.Codec.EnableMetrics = params.Codec.EnableMetrics && params.Metrics.Enabled
	return params, nil
}

// CodecOptions 将配置转换为 codec.Option。
func (p *ComponentParam) CodecOptions() []codec.Option {
	return []codec.Option{codec.WithConfig(p.Codec)}
}
