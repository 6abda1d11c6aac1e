package recall

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/corpus"
	"github.com/rushteam/animerec/feature"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/pkg/utils"
)

// Content 是基于内容的相似度排序器（Similarity Ranker）。
//
// 核心思想："与查询作品文本/语义最接近的作品最值得推荐"
//
// Content 持有一次构建的全部状态：Catalog、编码器、特征矩阵。
// 矩阵按需构建并记忆，构建后只读，可被任意数量的请求并发共享；
// 并发的首次请求只会触发一次构建。
// Catalog 变化时需创建新的 Content 或调用 Rebuild。
type Content struct {
	catalog *core.Catalog
	encoder feature.Encoder
	cache   cache.Cache // 仅用于稠密编码器

	group  singleflight.Group
	mu     sync.RWMutex
	matrix *feature.Matrix
}

// ContentOption Content 配置选项
type ContentOption func(*Content)

// WithCache 设置矩阵缓存（稀疏编码器忽略此项：词表需在当前语料上重新拟合）。
func WithCache(c cache.Cache) ContentOption {
	return func(r *Content) {
		r.cache = c
	}
}

// NewContent 创建相似度排序器
func NewContent(catalog *core.Catalog, encoder feature.Encoder, opts ...ContentOption) *Content {
	r := &Content{catalog: catalog, encoder: encoder}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Content) Name() string { return "recall.content" }

// Catalog 返回构建矩阵所用的 Catalog
func (r *Content) Catalog() *core.Catalog { return r.catalog }

// Encoder 返回当前编码器
func (r *Content) Encoder() feature.Encoder { return r.encoder }

// Matrix 返回特征矩阵，首次调用时构建（build-or-get）。
func (r *Content) Matrix(ctx context.Context) (*feature.Matrix, error) {
	r.mu.RLock()
	m := r.matrix
	r.mu.RUnlock()
	if m != nil {
		return m, nil
	}
	return r.build(ctx, true)
}

// Rebuild 丢弃当前矩阵并重新编码，不读取缓存。
func (r *Content) Rebuild(ctx context.Context) (*feature.Matrix, error) {
	r.mu.Lock()
	r.matrix = nil
	r.mu.Unlock()
	return r.build(ctx, false)
}

// build 通过 singleflight 合并并发构建；构建本身不随单个调用方取消。
func (r *Content) build(ctx context.Context, useCache bool) (*feature.Matrix, error) {
	key := "matrix"
	if !useCache {
		key = "rebuild"
	}
	ch := r.group.DoChan(key, func() (any, error) {
		m, err := r.buildMatrix(context.WithoutCancel(ctx), useCache)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.matrix = m
		r.mu.Unlock()
		return m, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*feature.Matrix), nil
	}
}

func (r *Content) buildMatrix(ctx context.Context, useCache bool) (*feature.Matrix, error) {
	name := r.encoder.Name()
	log := logging.Ctx(ctx).With().Str("encoder", name).Logger()
	dense := r.encoder.Kind() == feature.KindDense && r.cache != nil

	if dense && useCache {
		if m, ok := r.loadCached(ctx); ok {
			return m, nil
		}
	}

	start := time.Now()
	log.Info().Int("items", r.catalog.Len()).Msg("building feature matrix")
	m, err := r.encoder.FitTransform(ctx, corpus.BuildCorpus(r.catalog))
	if err != nil {
		log.Error().Err(err).Msg("feature matrix build failed")
		return nil, err
	}
	if m.Len() != r.catalog.Len() {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInternalError,
			fmt.Sprintf("encoder: %d rows for %d items", m.Len(), r.catalog.Len()))
	}

	elapsed := time.Since(start)
	degenerate := m.DegenerateCount()
	metrics.RecordMatrixBuild(name, elapsed, m.Len(), degenerate)
	log.Info().Int("rows", m.Len()).Int("dim", m.Dim).Int("degenerate", degenerate).
		Dur("elapsed", elapsed).Msg("feature matrix built")

	if dense {
		if outage := unavailableRows(m); outage > 0 {
			metrics.CacheLookups.WithLabelValues(r.cache.Name(), "skip_save").Inc()
			log.Warn().Int("unavailable", outage).Str("cache", r.cache.Name()).
				Msg("feature matrix has rows lost to embedder outage, not caching")
			return m, nil
		}
		if err := r.cache.Save(ctx, m); err != nil {
			metrics.CacheLookups.WithLabelValues(r.cache.Name(), "save_error").Inc()
			log.Warn().Err(err).Str("cache", r.cache.Name()).Msg("failed to save feature matrix")
		}
	}
	return m, nil
}

// unavailableRows 统计因模型不可用而占位的行；含这类行的矩阵不写入缓存。
func unavailableRows(m *feature.Matrix) int {
	n := 0
	for _, row := range m.Rows {
		if row.Degenerate && core.IsUnavailable(row.Reason) {
			n++
		}
	}
	return n
}

// loadCached 读取缓存并做形状校验；不可用时返回 false，由调用方重建。
func (r *Content) loadCached(ctx context.Context) (*feature.Matrix, bool) {
	log := logging.Ctx(ctx).With().Str("cache", r.cache.Name()).Logger()
	m, err := r.cache.Load(ctx)
	switch {
	case err == nil:
	case core.IsNotFound(err):
		metrics.CacheLookups.WithLabelValues(r.cache.Name(), "miss").Inc()
		log.Info().Msg("feature matrix cache miss")
		return nil, false
	case core.IsStale(err):
		r.discard(ctx, err)
		return nil, false
	default:
		metrics.CacheLookups.WithLabelValues(r.cache.Name(), "error").Inc()
		log.Warn().Err(err).Msg("feature matrix cache unreadable")
		return nil, false
	}

	if err := cache.CheckShape(m, r.catalog.Len(), r.encoder.Dimension()); err != nil {
		r.discard(ctx, err)
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(r.cache.Name(), "hit").Inc()
	log.Info().Int("rows", m.Len()).Int("dim", m.Dim).Msg("feature matrix loaded from cache")
	return m, true
}

func (r *Content) discard(ctx context.Context, reason error) {
	metrics.CacheLookups.WithLabelValues(r.cache.Name(), "stale").Inc()
	logging.Ctx(ctx).Warn().Err(reason).Str("cache", r.cache.Name()).
		Msg("discarding stale feature matrix cache")
	if err := r.cache.Delete(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("cache", r.cache.Name()).Msg("failed to delete stale cache")
	}
}

// Recommend 返回与 title 最相似的 topN 个作品（不含自身）。
//
// 结果长度为 min(topN, |items|-1)；topN <= 0 返回空列表；
// title 不存在时返回 core.ErrItemNotFound，且不会触发矩阵构建。
func (r *Content) Recommend(ctx context.Context, title string, topN int) ([]core.Recommendation, error) {
	idx, ok := r.catalog.IndexOf(title)
	if !ok {
		metrics.Recommendations.WithLabelValues("content", "not_found").Inc()
		return nil, core.ErrItemNotFound.WithMessage(fmt.Sprintf("catalog: item %q not found", title))
	}
	if topN <= 0 {
		return []core.Recommendation{}, nil
	}

	m, err := r.Matrix(ctx)
	if err != nil {
		metrics.Recommendations.WithLabelValues("content", "error").Inc()
		return nil, err
	}
	query := m.Row(idx)
	out := r.rank(m, query, idx, topN)
	metrics.Recommendations.WithLabelValues("content", "ok").Inc()
	return out, nil
}

// RecommendByText 以任意文本为查询，对全部作品排序（不排除任何作品）。
// 查询退化时所有分数为 0，按语料顺序返回。
func (r *Content) RecommendByText(ctx context.Context, text string, topN int) ([]core.Recommendation, error) {
	if topN <= 0 {
		return []core.Recommendation{}, nil
	}
	m, err := r.Matrix(ctx)
	if err != nil {
		metrics.Recommendations.WithLabelValues("content_text", "error").Inc()
		return nil, err
	}
	query, err := r.encoder.Transform(ctx, text)
	if err != nil {
		metrics.Recommendations.WithLabelValues("content_text", "error").Inc()
		return nil, err
	}
	out := r.rank(m, query, -1, topN)
	metrics.Recommendations.WithLabelValues("content_text", "ok").Inc()
	return out, nil
}

// rank 按相似度降序稳定排序，exclude 为被排除的行号（-1 表示不排除）。
func (r *Content) rank(m *feature.Matrix, query feature.Vector, exclude, topN int) []core.Recommendation {
	sims := m.Similarities(query)

	order := make([]int, 0, len(sims))
	for i := range sims {
		if i != exclude {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	out := make([]core.Recommendation, 0, len(order))
	for _, i := range order {
		it := r.catalog.At(i)
		rec := core.Recommendation{
			Title:           it.Title,
			Genres:          append([]string(nil), it.Genres...),
			Description:     it.Description,
			SimilarityScore: sims[i],
			RatingScore:     it.RatingScore,
		}
		rec.PutLabel(utils.LabelRecallSource, utils.Label{Value: r.Name(), Source: "recall"})
		rec.PutLabel(utils.LabelEncoder, utils.Label{Value: r.encoder.Name(), Source: "recall"})
		switch {
		case query.Degenerate:
			rec.PutLabel(utils.LabelSignal, utils.Label{Value: "degenerate_query", Source: "recall"})
		case m.Row(i).Degenerate:
			rec.PutLabel(utils.LabelSignal, utils.Label{Value: "degenerate_item", Source: "recall"})
		}
		out = append(out, rec)
	}
	return out
}
