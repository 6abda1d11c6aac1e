package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/animerec/core"
)

// Pipeline 把排序后的推荐结果交给一串 Node 依次处理。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行各 Node，任一 Node 出错即返回。
func (p *Pipeline) Run(ctx context.Context, recs []core.Recommendation) ([]core.Recommendation, error) {
	cur := recs
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Len 返回 Node 数量
func (p *Pipeline) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}
