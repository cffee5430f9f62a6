package log

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// testingWriter 把日志转发到 t.Logf，写法参照 zaptest 的同名实现。
type testingWriter struct {
	t          zaptest.TestingT
	markFailed bool
}

func (w testingWriter) Write(p []byte) (int, error) {
	// t.Logf 会自行换行
	w.t.Logf("%s", bytes.TrimRight(p, "\n"))
	if w.markFailed {
		w.t.Fail()
	}
	return len(p), nil
}

func (w testingWriter) Sync() error { return nil }

// InitTestLogger 创建输出到测试日志的 Logger。zap 内部错误会使测试失败。
// 返回的 Logger 不要在测试结束后继续使用。
func InitTestLogger(t zaptest.TestingT, cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	out := testingWriter{t: t}
	failOnError := testingWriter{t: t, markFailed: true}
	opts = append([]zap.Option{zap.ErrorOutput(zapcore.AddSync(failOnError))}, opts...)
	return InitLoggerWithWriteSyncer(cfg, out, opts...)
}
