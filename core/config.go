package core

// 推荐链路的默认参数。
const (
	// DefaultTopN 基于内容推荐的默认返回数量
	DefaultTopN = 5

	// DefaultGenreTopN 体裁热度推荐的默认返回数量
	DefaultGenreTopN = 10

	// DefaultMaxFeatures 稀疏编码器词表上限
	DefaultMaxFeatures = 5000

	// DefaultDimension 稠密编码器向量维度（BERT-base）
	DefaultDimension = 768

	// DefaultMaxLength 稠密编码器最大序列长度
	DefaultMaxLength = 512
)
