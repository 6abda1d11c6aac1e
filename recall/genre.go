package recall

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/metrics"
)

// Genre 是体裁热度排序器（Genre-Popularity Ranker）。
//
// 非个性化的降级路径：不依赖特征矩阵，直接基于原始记录按体裁过滤、按评分排序。
type Genre struct {
	catalog *core.Catalog
}

func NewGenre(catalog *core.Catalog) *Genre {
	return &Genre{catalog: catalog}
}

func (r *Genre) Name() string { return "recall.genre" }

// RecommendByGenre 返回与 title 至少共享一个体裁的作品标题，
// 按 (rating_score, rating_count) 降序，缺失值排在最后。
// title 不存在或没有体裁时返回空列表，不报错。
func (r *Genre) RecommendByGenre(ctx context.Context, title string, topN int) []string {
	idx, ok := r.catalog.IndexOf(title)
	if !ok || topN <= 0 {
		metrics.Recommendations.WithLabelValues("genre", "empty").Inc()
		return []string{}
	}
	genres := r.catalog.At(idx).GenreSet()
	if len(genres) == 0 {
		metrics.Recommendations.WithLabelValues("genre", "empty").Inc()
		return []string{}
	}

	candidates := make([]core.Item, 0)
	for i, it := range r.catalog.Items() {
		if i == idx {
			continue
		}
		for g := range it.GenreSet() {
			if _, ok := genres[g]; ok {
				candidates = append(candidates, it)
				break
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if c := compareDesc(candidates[a].RatingScore, candidates[b].RatingScore); c != 0 {
			return c < 0
		}
		return compareDesc(candidates[a].RatingCount, candidates[b].RatingCount) < 0
	})

	n := min(topN, len(candidates))
	out := make([]string, n)
	for i := range out {
		out[i] = candidates[i].Title
	}
	metrics.Recommendations.WithLabelValues("genre", "ok").Inc()
	return out
}

// RecommendByGenreText 按体裁子串（不区分大小写）匹配拼接后的体裁字符串，
// 按 rating_score 降序返回完整记录，缺失评分排在最后并输出 "N/A"。
// 空子串匹配全部作品。
func (r *Genre) RecommendByGenreText(ctx context.Context, genre string, topN int) []core.GenreRecommendation {
	if topN <= 0 {
		return []core.GenreRecommendation{}
	}
	needle := strings.ToLower(genre)

	matched := make([]core.Item, 0)
	for _, it := range r.catalog.Items() {
		if strings.Contains(strings.ToLower(it.JoinedGenres()), needle) {
			matched = append(matched, it)
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		return compareDesc(matched[a].RatingScore, matched[b].RatingScore) < 0
	})

	n := min(topN, len(matched))
	out := make([]core.GenreRecommendation, n)
	for i := range out {
		it := matched[i]
		out[i] = core.GenreRecommendation{
			Title:       it.Title,
			Genres:      append([]string(nil), it.Genres...),
			Description: it.Description,
			RatingScore: core.Score{Value: it.RatingScore},
		}
	}
	metrics.Recommendations.WithLabelValues("genre_text", "ok").Inc()
	return out
}

// Genres 返回去重并排序后的全部体裁
func (r *Genre) Genres() []string {
	set := make(map[string]struct{})
	for _, it := range r.catalog.Items() {
		for g := range it.GenreSet() {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

type number interface {
	~float64 | ~int64
}

// missing 判断值是否缺失（nil 或 NaN）
func missing[T number](p *T) bool {
	return p == nil || *p != *p
}

// compareDesc 三态比较：存在且更大 < 存在且更小 < 缺失。
// 返回负数表示 a 应排在 b 之前。
func compareDesc[T number](a, b *T) int {
	ma, mb := missing(a), missing(b)
	switch {
	case ma && mb:
		return 0
	case ma:
		return 1
	case mb:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
