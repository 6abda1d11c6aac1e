package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该结果就会被移除；结果的相对顺序保持不变。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(ctx context.Context, recs []core.Recommendation) ([]core.Recommendation, error) {
	if len(n.Filters) == 0 || len(recs) == 0 {
		return recs, nil
	}

	out := make([]core.Recommendation, 0, len(recs))
	filtered := 0
	for i := range recs {
		rec := &recs[i]

		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rec)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				logging.Ctx(ctx).Debug().Err(err).Str("filter", f.Name()).Str("title", rec.Title).Msg("filter error, keeping item")
				continue
			}
			if ok {
				drop = true
				break
			}
		}
		if drop {
			filtered++
			continue
		}
		out = append(out, *rec)
	}

	if filtered > 0 {
		logging.Ctx(ctx).Debug().Int("filtered", filtered).Int("kept", len(out)).Msg("filter node done")
	}
	return out, nil
}
