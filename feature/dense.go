package feature

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
)

// TextEmbedder 把文本批量映射为定长向量，由 model.BERTModel 等实现。
type TextEmbedder interface {
	Name() string
	Dimension() int
	EncodeTexts(ctx context.Context, texts []string) ([][]float64, error)
	Health(ctx context.Context) error
}

// DenseConfig 稠密编码器配置
type DenseConfig struct {
	BatchSize   int // 每批文本数
	Concurrency int // 并发批次数

	// DegradeOnUnavailable 为 true 时，启动探测失败后仍返回零向量占位而不是报错
	DegradeOnUnavailable bool

	BreakerMaxFailures uint32        // 连续失败多少次后熔断
	BreakerOpenTimeout time.Duration // 熔断后多久进入半开
}

// DenseEncoder 基于预训练模型的稠密编码器。
//
// 失败策略：
//   - 空文档不调用模型，直接得到零向量
//   - 批次失败时逐条重试，仍失败的文档得到零向量
//   - Init 探测失败会被记录，之后按 DegradeOnUnavailable 决定快速失败还是全部零向量
type DenseEncoder struct {
	embedder TextEmbedder
	cfg      DenseConfig
	breaker  *gobreaker.CircuitBreaker[[][]float64]

	mu      sync.RWMutex
	initErr error
}

// NewDenseEncoder 创建稠密编码器
func NewDenseEncoder(embedder TextEmbedder, cfg DenseConfig) *DenseEncoder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}
	e := &DenseEncoder{embedder: embedder, cfg: cfg}
	e.breaker = gobreaker.NewCircuitBreaker[[][]float64](gobreaker.Settings{
		Name:    "embedder:" + embedder.Name(),
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("embedder circuit breaker state changed")
		},
	})
	return e
}

func (e *DenseEncoder) Name() string { return e.embedder.Name() }

func (e *DenseEncoder) Kind() Kind { return KindDense }

func (e *DenseEncoder) Dimension() int { return e.embedder.Dimension() }

// Init 探测模型服务；失败时记录 ErrEncoderUnavailable 并返回。
func (e *DenseEncoder) Init(ctx context.Context) error {
	var initErr error
	if err := e.embedder.Health(ctx); err != nil {
		initErr = core.ErrEncoderUnavailable.Wrap(err)
		logging.Ctx(ctx).Error().Err(err).Str("encoder", e.Name()).
			Bool("degrade", e.cfg.DegradeOnUnavailable).
			Msg("embedder health check failed")
	}
	e.mu.Lock()
	e.initErr = initErr
	e.mu.Unlock()
	return initErr
}

// Unavailable 返回 Init 记录的错误，正常时为 nil
func (e *DenseEncoder) Unavailable() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initErr
}

// FitTransform 分批并发编码全部文档，行顺序与 docs 一致。
// 只有 ctx 取消或启动探测失败（且未开启降级）时才返回错误。
func (e *DenseEncoder) FitTransform(ctx context.Context, docs []string) (*Matrix, error) {
	dim := e.Dimension()
	initErr := e.Unavailable()
	if initErr != nil && !e.cfg.DegradeOnUnavailable {
		return nil, initErr
	}
	rows := make([]Vector, len(docs))
	if initErr != nil {
		for i := range rows {
			rows[i] = Zero(dim, initErr)
		}
		metrics.EncodeDegenerate.WithLabelValues(e.Name()).Add(float64(len(rows)))
		return NewMatrix(dim, rows), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for start := 0; start < len(docs); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(docs))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			copy(rows[start:end], e.encodeBatch(gctx, docs[start:end]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewMatrix(dim, rows), nil
}

// Transform 编码单个查询文本，失败时返回零向量。
func (e *DenseEncoder) Transform(ctx context.Context, doc string) (Vector, error) {
	initErr := e.Unavailable()
	if initErr != nil {
		if !e.cfg.DegradeOnUnavailable {
			return Vector{}, initErr
		}
		return Zero(e.Dimension(), initErr), nil
	}
	return e.encodeBatch(ctx, []string{doc})[0], nil
}

// encodeBatch 编码一批文本，结果长度恒等于 len(docs)。
func (e *DenseEncoder) encodeBatch(ctx context.Context, docs []string) []Vector {
	dim := e.Dimension()
	out := make([]Vector, len(docs))

	texts := make([]string, 0, len(docs))
	idx := make([]int, 0, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d) == "" {
			out[i] = Zero(dim, core.ErrDegenerateInput)
			continue
		}
		texts = append(texts, d)
		idx = append(idx, i)
	}
	if len(texts) == 0 {
		metrics.EncodeDegenerate.WithLabelValues(e.Name()).Add(float64(len(docs)))
		return out
	}

	vecs, err := e.embed(ctx, texts)
	if err == nil {
		metrics.EncodeBatches.WithLabelValues(e.Name(), "ok").Inc()
		for j, i := range idx {
			out[i] = e.wrap(vecs[j])
		}
	} else {
		metrics.EncodeBatches.WithLabelValues(e.Name(), "fallback").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("encoder", e.Name()).
			Int("batch", len(texts)).Msg("embed batch failed, retrying per item")
		for j, i := range idx {
			one, err := e.embed(ctx, texts[j:j+1])
			if err != nil {
				out[i] = Zero(dim, core.ErrEncoderUnavailable.Wrap(err))
				continue
			}
			out[i] = e.wrap(one[0])
		}
	}

	degenerate := 0
	for _, v := range out {
		if v.Degenerate {
			degenerate++
		}
	}
	if degenerate > 0 {
		metrics.EncodeDegenerate.WithLabelValues(e.Name()).Add(float64(degenerate))
	}
	return out
}

// embed 经熔断器调用模型，并校验返回条数与维度。
func (e *DenseEncoder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	dim := e.Dimension()
	return e.breaker.Execute(func() ([][]float64, error) {
		vecs, err := e.embedder.EncodeTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vecs))
		}
		for _, v := range vecs {
			if len(v) != dim {
				return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", dim, len(v))
			}
		}
		return vecs, nil
	})
}

func (e *DenseEncoder) wrap(values []float64) Vector {
	return Dense(values, core.ErrDegenerateInput)
}
