package pipeline

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// Kind 用于标记 Node 类型，方便观测（例如按阶段打点）。
type Kind string

const (
	KindFilter Kind = "filter" // 过滤阶段：剔除不符合约束的结果
	KindReRank Kind = "rerank" // 重排阶段：截断、多样性调整
)

// Node 是后处理链的最小可扩展单元，统一为"输入结果列表 -> 输出结果列表"。
// Node 可以修改入参元素上的 Labels，但不能依赖入参切片在调用后保持不变。
type Node interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, recs []core.Recommendation) ([]core.Recommendation, error)
}
