package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/rerank"
)

type recommendResponse struct {
	Query           string                `json:"query"`
	Encoder         string                `json:"encoder"`
	Recommendations []core.Recommendation `json:"recommendations"`
}

type genreResponse struct {
	Title           string   `json:"title"`
	Recommendations []string `json:"recommendations"`
}

type genreTextResponse struct {
	Genre           string                     `json:"genre"`
	Recommendations []core.GenreRecommendation `json:"recommendations"`
}

type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError 按领域错误码映射 HTTP 状态：
// NOT_FOUND→404, UNAVAILABLE→503, INVALID_INPUT→400, 其它→500。
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := core.ErrorCodeInternalError
	if de := core.GetDomainError(err); de != nil {
		code = de.Code
		switch de.Code {
		case core.ErrorCodeNotFound:
			status = http.StatusNotFound
		case core.ErrorCodeUnavailable:
			status = http.StatusServiceUnavailable
		case core.ErrorCodeInvalidInput:
			status = http.StatusBadRequest
		}
	}
	ev := logging.Ctx(ctx).Warn()
	if status == http.StatusInternalServerError {
		ev = logging.Ctx(ctx).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")

	message := err.Error()
	switch status {
	case http.StatusNotFound:
		message = "no such item"
	case http.StatusServiceUnavailable:
		message = "service unavailable"
	}
	respondJSON(w, status, errorBody{Error: apiError{Code: code, Message: message}})
}

func invalid(format string, args ...any) error {
	return core.ErrInvalidInput.WithMessage(fmt.Sprintf(format, args...))
}

// parseTopN 缺省使用 def；非整数或超过上限返回 INVALID_INPUT，<= 0 合法（返回空列表）。
func (s *Server) parseTopN(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("top_n")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("top_n must be an integer, got %q", raw)
	}
	if s.cfg.MaxTopN > 0 && n > s.cfg.MaxTopN {
		return 0, invalid("top_n must be at most %d", s.cfg.MaxTopN)
	}
	return n, nil
}

// postProcess 根据请求参数组装后处理链；不需要后处理时返回 nil。
func (s *Server) postProcess(r *http.Request, topN int) (*pipeline.Pipeline, error) {
	filters := append([]filter.Filter(nil), s.filters...)
	if expr := strings.TrimSpace(r.URL.Query().Get("filter")); expr != "" {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	var nodes []pipeline.Node
	if len(filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	if raw := r.URL.Query().Get("max_per_genre"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, invalid("max_per_genre must be a non-negative integer, got %q", raw)
		}
		nodes = append(nodes, &rerank.Diversity{MaxPerGenre: n})
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	nodes = append(nodes, &rerank.TopNNode{N: topN})
	return &pipeline.Pipeline{Nodes: nodes}, nil
}

// recommend 需要后处理时先对全部候选排序，再过滤、重排、截断。
func (s *Server) recommend(
	r *http.Request,
	rank func(ctx context.Context, n int) ([]core.Recommendation, error),
) ([]core.Recommendation, error) {
	topN, err := s.parseTopN(r, s.cfg.DefaultTopN)
	if err != nil {
		return nil, err
	}
	p, err := s.postProcess(r, topN)
	if err != nil {
		return nil, err
	}
	if p == nil || topN <= 0 {
		return rank(r.Context(), topN)
	}
	recs, err := rank(r.Context(), s.content.Catalog().Len())
	if err != nil {
		return nil, err
	}
	return p.Run(r.Context(), recs)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respondError(r.Context(), w, invalid("title is required"))
		return
	}
	recs, err := s.recommend(r, func(ctx context.Context, n int) ([]core.Recommendation, error) {
		return s.content.Recommend(ctx, title, n)
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, recommendResponse{
		Query:           title,
		Encoder:         s.content.Encoder().Name(),
		Recommendations: recs,
	})
}

func (s *Server) handleRecommendText(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	recs, err := s.recommend(r, func(ctx context.Context, n int) ([]core.Recommendation, error) {
		return s.content.RecommendByText(ctx, q, n)
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, recommendResponse{
		Query:           q,
		Encoder:         s.content.Encoder().Name(),
		Recommendations: recs,
	})
}

func (s *Server) handleRecommendGenre(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		respondError(r.Context(), w, invalid("title is required"))
		return
	}
	topN, err := s.parseTopN(r, s.cfg.DefaultGenreTopN)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, genreResponse{
		Title:           title,
		Recommendations: s.genre.RecommendByGenre(r.Context(), title, topN),
	})
}

func (s *Server) handleRecommendGenreText(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("genre")
	topN, err := s.parseTopN(r, s.cfg.DefaultGenreTopN)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, genreTextResponse{
		Genre:           genre,
		Recommendations: s.genre.RecommendByGenreText(r.Context(), genre, topN),
	})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"genres": s.genre.Genres()})
}

// handleHealth 稠密编码器启动探测失败时返回 503。
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"items":   s.content.Catalog().Len(),
		"encoder": s.content.Encoder().Name(),
	}
	if u, ok := s.content.Encoder().(interface{ Unavailable() error }); ok {
		if err := u.Unavailable(); err != nil {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	respondJSON(w, http.StatusOK, body)
}
