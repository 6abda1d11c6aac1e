package model

import (
	"context"
	"fmt"

	"github.com/rushteam/animerec/core"
)

// 池化策略
const (
	PoolingCLS  = "cls"  // [CLS] token 输出
	PoolingMean = "mean" // 平均池化
)

// BERTModel 是 BERT 文本编码模型。
//
// 核心思想：
//   - 使用预训练的 BERT 模型将作品文档编码为稠密向量
//   - 通过外部 ML 服务（TorchServe、text-embeddings-inference）进行推理
//   - 支持批量编码以提高效率
//
// 工程特征：
//   - 实时性：中等（需要 RPC 调用，但支持批量）
//   - 计算复杂度：高（BERT 模型较大）
//   - 语义理解：强（同义改写、跨语言描述也能得到相近向量）
type BERTModel struct {
	// Service ML 服务接口（用于调用外部 BERT 服务）
	Service core.MLService

	// ModelName 模型名称（可选）
	ModelName string

	// ModelVersion 模型版本（可选）
	ModelVersion string

	// MaxLength 最大序列长度，超出部分由服务端截断
	MaxLength int

	// PoolingStrategy 池化策略：cls / mean
	PoolingStrategy string

	dimension int
}

// NewBERTModel 创建一个新的 BERT 模型。
func NewBERTModel(service core.MLService, dimension int) *BERTModel {
	if dimension <= 0 {
		dimension = core.DefaultDimension
	}
	return &BERTModel{
		Service:         service,
		MaxLength:       core.DefaultMaxLength,
		PoolingStrategy: PoolingCLS,
		dimension:       dimension,
	}
}

// WithModelName 设置模型名称。
func (m *BERTModel) WithModelName(name string) *BERTModel {
	m.ModelName = name
	return m
}

// WithModelVersion 设置模型版本。
func (m *BERTModel) WithModelVersion(version string) *BERTModel {
	m.ModelVersion = version
	return m
}

// WithMaxLength 设置最大序列长度。
func (m *BERTModel) WithMaxLength(maxLength int) *BERTModel {
	m.MaxLength = maxLength
	return m
}

// WithPoolingStrategy 设置池化策略：cls / mean。
func (m *BERTModel) WithPoolingStrategy(strategy string) *BERTModel {
	m.PoolingStrategy = strategy
	return m
}

// Name 返回模型名称。
func (m *BERTModel) Name() string {
	return "bert"
}

// Dimension 返回向量维度（BERT-base 为 768）。
func (m *BERTModel) Dimension() int {
	return m.dimension
}

// Health 探测底层服务是否可用。
func (m *BERTModel) Health(ctx context.Context) error {
	if m.Service == nil {
		return fmt.Errorf("ML service is not set")
	}
	return m.Service.Health(ctx)
}

// EncodeText 将单个文本编码为向量。
func (m *BERTModel) EncodeText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := m.EncodeTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeTexts 批量编码文本为向量，结果与 texts 一一对应。
func (m *BERTModel) EncodeTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if m.Service == nil {
		return nil, fmt.Errorf("ML service is not set")
	}
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := m.Service.Predict(ctx, &core.MLPredictRequest{
		Texts:        texts,
		ModelName:    m.ModelName,
		ModelVersion: m.ModelVersion,
		Params: map[string]any{
			"max_length":       m.MaxLength,
			"pooling_strategy": m.PoolingStrategy,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("BERT encoding failed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("vector count mismatch: expected %d, got %d", len(texts), len(resp.Embeddings))
	}
	for i, v := range resp.Embeddings {
		if len(v) != m.dimension {
			return nil, fmt.Errorf("vector %d dimension mismatch: expected %d, got %d", i, m.dimension, len(v))
		}
	}
	return resp.Embeddings, nil
}
