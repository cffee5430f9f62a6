package log

import (
	"os"
	"strconv"
	"strings"

	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/zap"

	"github.com/lk2023060901/databrief-go/pkg/metrics"
)

// RateLimiter 为限流日志使用的最小接口，jaeger 的 ReconfigurableRateLimiter 满足该接口。
type RateLimiter interface {
	CheckCredit(delta float64) bool
}

type nopRateLimiter struct{}

func (nopRateLimiter) CheckCredit(float64) bool { return true }

// limiterBox 固定 atomic.Value 中保存的具体类型。
type limiterBox struct{ RateLimiter }

// RateLimitConfig 配置全局限流日志，关闭时 RatedWarn 总是输出。
// 解码热路径上的失败日志都走限流，避免坏输入刷屏。
type RateLimitConfig struct {
	Enable          bool    `toml:"enable" json:"enable" mapstructure:"enable"`
	CreditPerSecond float64 `toml:"credit-per-second" json:"credit-per-second" mapstructure:"credit-per-second"`
	MaxBalance      float64 `toml:"max-balance" json:"max-balance" mapstructure:"max-balance"`
}

const (
	defaultCreditPerSecond = 1.0
	defaultMaxBalance      = 60.0
)

// SetRateLimit 替换全局 RateLimiter。
func SetRateLimit(cfg RateLimitConfig) {
	if !cfg.Enable {
		_globalR.Store(limiterBox{nopRateLimiter{}})
		return
	}
	if cfg.CreditPerSecond <= 0 {
		cfg.CreditPerSecond = defaultCreditPerSecond
	}
	if cfg.MaxBalance <= 0 {
		cfg.MaxBalance = defaultMaxBalance
	}
	_globalR.Store(limiterBox{utils.NewRateLimiter(cfg.CreditPerSecond, cfg.MaxBalance)})
}

// R 返回全局 RateLimiter。
func R() RateLimiter {
	if b, ok := _globalR.Load().(limiterBox); ok && b.RateLimiter != nil {
		return b.RateLimiter
	}
	return nopRateLimiter{}
}

// RateLimitFromEnv 读取 BRIEF_LOG_RATE_ENABLE、BRIEF_LOG_RATE_CREDIT_PER_SECOND
// 与 BRIEF_LOG_RATE_MAX_BALANCE，未设置的项保留 base 中的值。
func RateLimitFromEnv(base RateLimitConfig) RateLimitConfig {
	if v, ok := lookupEnv("BRIEF_LOG_RATE_ENABLE"); ok {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			base.Enable = true
		case "0", "false", "no", "off":
			base.Enable = false
		}
	}
	if v, ok := lookupEnv("BRIEF_LOG_RATE_CREDIT_PER_SECOND"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			base.CreditPerSecond = f
		}
	}
	if v, ok := lookupEnv("BRIEF_LOG_RATE_MAX_BALANCE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			base.MaxBalance = f
		}
	}
	return base
}

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// RatedWarn 额度足够时以 Warn 级别输出，返回是否输出。
func (l *MLogger) RatedWarn(cost float64, msg string, fields ...zap.Field) bool {
	if !R().CheckCredit(cost) {
		metrics.LoggingRatedDropped.WithLabelValues("warn").Inc()
		return false
	}
	l.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
	return true
}
