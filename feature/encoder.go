package feature

import "context"

// Kind 标记编码策略，每个部署只启用一种。
type Kind string

const (
	KindSparse Kind = "sparse" // TF-IDF 词法编码
	KindDense  Kind = "dense"  // 预训练模型语义编码
)

// Encoder 是特征编码器接口：把整个语料转换为定宽矩阵。
//
// 两种实现共享同一契约，排序器不感知当前启用的是哪一种：
//   - TFIDFEncoder：每次 FitTransform 在当前语料上重新拟合词表
//   - DenseEncoder：无需拟合，逐批调用外部模型
//
// FitTransform 得到的模型状态（词表/IDF）在下一次 FitTransform 之前保持不变，
// Transform 复用该状态编码语料之外的查询文本。
type Encoder interface {
	Name() string
	Kind() Kind

	// Dimension 返回向量维度（稀疏编码器拟合前为 0）
	Dimension() int

	// FitTransform 编码全部文档，第 i 行对应 docs[i]
	FitTransform(ctx context.Context, docs []string) (*Matrix, error)

	// Transform 编码单个查询文档
	Transform(ctx context.Context, doc string) (Vector, error)
}
