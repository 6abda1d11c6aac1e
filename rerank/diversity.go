package rerank

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
)

// Diversity 按主体裁（Genres 的第一个元素）打散：同一主体裁最多保留 MaxPerGenre 条，
// 超出部分顺延到列表末尾而不是丢弃。没有体裁的结果不受限制。
type Diversity struct {
	MaxPerGenre int // <= 0 表示不限制
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(_ context.Context, recs []core.Recommendation) ([]core.Recommendation, error) {
	if n.MaxPerGenre <= 0 || len(recs) == 0 {
		return recs, nil
	}

	seen := make(map[string]int, 16)
	out := make([]core.Recommendation, 0, len(recs))
	var deferred []core.Recommendation

	for _, rec := range recs {
		if len(rec.Genres) == 0 {
			out = append(out, rec)
			continue
		}
		primary := rec.Genres[0]
		if seen[primary] >= n.MaxPerGenre {
			deferred = append(deferred, rec)
			continue
		}
		seen[primary]++
		out = append(out, rec)
	}
	return append(out, deferred...), nil
}
