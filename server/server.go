// Package server 是推荐引擎的 HTTP 接入层：解析参数、调用排序器、把领域错误映射为状态码。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/animerec/config"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/recall"
)

// Server 持有排序器与路由
type Server struct {
	content *recall.Content
	genre   *recall.Genre
	cfg     config.RecommendConfig
	filters []filter.Filter
	router  chi.Router
}

// Option Server 配置选项
type Option func(*Server)

// WithFilters 追加对内容推荐结果始终生效的过滤器（例如黑名单）。
func WithFilters(filters ...filter.Filter) Option {
	return func(s *Server) {
		s.filters = append(s.filters, filters...)
	}
}

// New 创建 Server 并注册路由
func New(content *recall.Content, genre *recall.Genre, cfg config.RecommendConfig, opts ...Option) *Server {
	s := &Server{content: content, genre: genre, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler 返回根 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/genres", s.handleGenres)
		r.Route("/recommend", func(r chi.Router) {
			r.Get("/", s.handleRecommend)
			r.Get("/text", s.handleRecommendText)
			r.Get("/genre", s.handleRecommendGenre)
			r.Get("/genre-text", s.handleRecommendGenreText)
		})
	})
	return r
}

// Warm 在接收流量前构建特征矩阵（初始化屏障）。
func (s *Server) Warm(ctx context.Context) error {
	start := time.Now()
	m, err := s.content.Matrix(ctx)
	if err != nil {
		return err
	}
	rows, dim := m.Shape()
	logging.Info().
		Int("rows", rows).
		Int("dim", dim).
		Dur("duration", time.Since(start)).
		Msg("feature matrix ready")
	return nil
}

// prepare 执行预热；编码器不可用时仍继续服务，
// 体裁接口照常可用，内容接口与 /healthz 返回 503。
func (s *Server) prepare(ctx context.Context) error {
	err := s.Warm(ctx)
	if err != nil && core.IsUnavailable(err) {
		logging.Warn().Err(err).Str("encoder", s.content.Encoder().Name()).
			Msg("encoder unavailable at startup, serving genre endpoints only")
		return nil
	}
	return err
}

// Run 预热矩阵后监听 addr，ctx 结束时优雅关闭。
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	if err := s.prepare(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	logging.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
