package core

import "context"

// MLService 是外部模型推理服务的领域接口，由基础设施层（service）实现。
//
// 在本项目中只用于文本向量化：稠密编码器把文档批量发送给预训练模型，
// 取 [CLS]/pooled 输出作为定长向量。
//
// 实现：
//   - service.TorchServeClient
//   - service.TEIClient（text-embeddings-inference）
type MLService interface {
	// Predict 批量推理
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Health 健康检查，启动时用于判定 EncoderUnavailable
	Health(ctx context.Context) error

	// Close 关闭连接
	Close() error
}

// MLPredictRequest 预测请求
type MLPredictRequest struct {
	// Texts 待编码文本
	Texts []string

	// ModelName 模型名称（可选，如果服务支持多模型）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// Params 额外参数（max_length、pooling 等）
	Params map[string]any
}

// MLPredictResponse 预测响应
type MLPredictResponse struct {
	// Embeddings 与 Texts 一一对应的向量
	Embeddings [][]float64

	// ModelVersion 模型版本（如果服务返回）
	ModelVersion string
}
