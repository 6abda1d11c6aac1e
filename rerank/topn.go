package rerank

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，通常放在过滤节点之后。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &filter.FilterNode{Filters: []filter.Filter{expr}},
//	        &rerank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	// N 要保留的结果数量；N <= 0 时返回空列表
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(_ context.Context, recs []core.Recommendation) ([]core.Recommendation, error) {
	if n.N <= 0 {
		return []core.Recommendation{}, nil
	}
	if len(recs) <= n.N {
		return recs, nil
	}
	return recs[:n.N], nil
}
