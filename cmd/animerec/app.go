package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/config"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/feast"
	"github.com/rushteam/animerec/feature"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/model"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/service"
	"github.com/rushteam/animerec/source"
	"github.com/rushteam/animerec/store"
)

// app 是一次进程生命周期内装配好的组件
type app struct {
	cfg     *config.Config
	catalog *core.Catalog
	content *recall.Content
	genre   *recall.Genre
	store   core.Store // 可能为 nil
	closers []io.Closer
}

// loadConfig 加载配置并初始化日志
func loadConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	logging.Init(cfg.Log)
	return cfg, nil
}

// newCatalogApp 只装配数据源、Feast 评分覆盖与 Catalog，体裁推荐不需要编码器。
func newCatalogApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	items, err := a.loadItems(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	catalog, err := core.NewCatalog(items)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = catalog
	a.genre = recall.NewGenre(catalog)
	return a, nil
}

// newApp 在 Catalog 之上继续装配编码器、缓存与相似度排序器。
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := newCatalogApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(ctx, cfg.Encoder)
	if err != nil {
		a.Close()
		return nil, err
	}

	var opts []recall.ContentOption
	c, err := a.newCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c != nil {
		opts = append(opts, recall.WithCache(c))
	}

	a.content = recall.NewContent(a.catalog, encoder, opts...)
	logging.Info().
		Int("items", a.catalog.Len()).
		Str("encoder", encoder.Name()).
		Str("kind", string(encoder.Kind())).
		Msg("recommender assembled")
	return a, nil
}

func (a *app) loadItems(ctx context.Context) ([]core.Item, error) {
	src, err := source.Open(ctx, source.Kind(a.cfg.Source.Kind), a.cfg.Source.Path)
	if err != nil {
		return nil, err
	}
	if cl, ok := src.(io.Closer); ok {
		a.closers = append(a.closers, cl)
	}
	items, err := src.LoadItems(ctx)
	if err != nil {
		return nil, err
	}

	fc := a.cfg.Feast
	if !fc.Enabled {
		return items, nil
	}
	var opts []feast.ClientOption
	if fc.Token != "" {
		opts = append(opts, feast.WithAuth(&feast.AuthConfig{Type: "static", Token: fc.Token, TLS: true}))
	}
	client, err := feast.NewClient(fc.Endpoint, fc.Project, opts...)
	if err != nil {
		logging.Warn().Err(err).Msg("feast unavailable, using dataset ratings")
		return items, nil
	}
	a.closers = append(a.closers, client)

	enricher := &feast.RatingEnricher{
		Client:       client,
		Project:      fc.Project,
		EntityKey:    fc.EntityKey,
		ScoreFeature: fc.ScoreFeature,
		CountFeature: fc.CountFeature,
	}
	enriched, err := enricher.Enrich(ctx, items)
	if err != nil {
		logging.Warn().Err(err).Msg("feast enrichment failed, using dataset ratings")
		return items, nil
	}
	return enriched, nil
}

// newEncoder 按 encoder.kind 选择稀疏或稠密编码器
func newEncoder(ctx context.Context, cfg config.EncoderConfig) (feature.Encoder, error) {
	switch feature.Kind(cfg.Kind) {
	case feature.KindSparse:
		sw, err := feature.LoadStopWords(cfg.StopWords)
		if err != nil {
			return nil, err
		}
		if cfg.StopWordsFile != "" {
			if sw, err = feature.LoadStopWordsFile(cfg.StopWordsFile, sw); err != nil {
				return nil, err
			}
		}
		return feature.NewTFIDFEncoder(feature.TFIDFConfig{
			MaxFeatures: cfg.MaxFeatures,
			NGramMax:    cfg.NGramMax,
			StopWords:   sw,
		}), nil

	case feature.KindDense:
		svc, err := service.NewMLService(&cfg.Service)
		if err != nil {
			return nil, err
		}
		bert := model.NewBERTModel(svc, cfg.Dimension).
			WithModelName(cfg.Service.ModelName).
			WithModelVersion(cfg.Service.ModelVersion)
		if cfg.MaxLength > 0 {
			bert = bert.WithMaxLength(cfg.MaxLength)
		}
		enc := feature.NewDenseEncoder(bert, feature.DenseConfig{
			BatchSize:            cfg.BatchSize,
			Concurrency:          cfg.Concurrency,
			DegradeOnUnavailable: cfg.DegradeOnUnavailable,
			BreakerMaxFailures:   cfg.Breaker.MaxFailures,
			BreakerOpenTimeout:   cfg.Breaker.OpenTimeout,
		})
		// 探测失败已被记录，请求时按降级策略处理
		_ = enc.Init(ctx)
		return enc, nil

	default:
		return nil, fmt.Errorf("unsupported encoder kind %q", cfg.Kind)
	}
}

// newCache 创建矩阵缓存；redis / memory 缓存的 Store 同时供黑名单使用。
func (a *app) newCache(ctx context.Context) (cache.Cache, error) {
	cc := a.cfg.Cache
	switch cc.Kind {
	case "", "none":
		return nil, nil
	case "file":
		return cache.NewFileCache(cc.Path), nil
	case "redis":
		st, err := store.NewRedisStore(ctx, cc.RedisAddr, cc.RedisDB)
		if err != nil {
			return nil, err
		}
		a.store = st
		a.closers = append(a.closers, st)
		return cache.NewStoreCache(st, cc.Key, cc.TTL), nil
	case "memory":
		st := store.NewMemoryStore()
		a.store = st
		a.closers = append(a.closers, st)
		return cache.NewStoreCache(st, cc.Key, cc.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache kind %q", cc.Kind)
	}
}

// filters 返回始终生效的结果过滤器
func (a *app) filters() []filter.Filter {
	rc := a.cfg.Recommend
	var adapter *filter.StoreAdapter
	if a.store != nil && rc.BlacklistKey != "" {
		adapter = filter.NewStoreAdapter(a.store)
	}
	if len(rc.Blacklist) == 0 && adapter == nil {
		return nil
	}
	return []filter.Filter{filter.NewBlacklistFilter(rc.Blacklist, adapter, rc.BlacklistKey)}
}

// Close 逆序释放资源
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logging.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
