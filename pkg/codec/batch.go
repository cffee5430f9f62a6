package codec

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/metrics"
	"github.com/lk2023060901/databrief-go/pkg/schema"
	"github.com/lk2023060901/databrief-go/pkg/util/conc"
)

// EncodeBatch 并发编码多条记录，结果与输入顺序一致。
// 任一记录失败时返回第一个失败项（按下标）的错误。
func (c *Codec) EncodeBatch(ctx context.Context, s *schema.Schema, values []any) ([][]byte, error) {
	return runBatch(ctx, c, s, len(values), func(i int) ([]byte, error) {
		return c.Encode(values[i], s)
	})
}

// DecodeBatch 并发解码多个缓冲区，结果与输入顺序一致。
func (c *Codec) DecodeBatch(ctx context.Context, s *schema.Schema, bufs [][]byte) ([]any, error) {
	return runBatch(ctx, c, s, len(bufs), func(i int) (any, error) {
		return c.Decode(bufs[i], s)
	})
}

func runBatch[T any](ctx context.Context, c *Codec, s *schema.Schema, n int, fn func(i int) (T, error)) ([]T, error) {
	if n == 0 {
		return []T{}, nil
	}
	pool, err := c.batchPool()
	if err != nil {
		return nil, err
	}
	logger := log.Ctx(ctx).WithSchema(s.Name)
	logger.Debug("batch started", zap.Int("size", n))

	futures := make([]*conc.Future[any], n)
	for i := 0; i < n; i++ {
		futures[i] = pool.Submit(func() (any, error) {
			if c.cfg.EnableMetrics {
				metrics.BatchInflight.Inc()
				defer metrics.BatchInflight.Dec()
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := fn(i)
			return v, err
		})
	}

	out := make([]T, n)
	for i, f := range futures {
		v, err := f.Await()
		if err != nil {
			// 等待剩余任务结束，避免返回后仍有任务访问输入
			_ = conc.AwaitAll(futures[i+1:]...)
			logger.Warn("batch failed", zap.Int("index", i), zap.Error(err))
			return nil, errors.Wrapf(err, "batch item %d", i)
		}
		out[i], _ = v.(T)
	}
	logger.Debug("batch finished", zap.Int("size", n))
	return out, nil
}
