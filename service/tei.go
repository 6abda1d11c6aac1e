package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rushteam/animerec/core"
)

// TEIClient 是 text-embeddings-inference 的客户端。
//
//   - 推理端点：POST /embed，请求体 {"inputs": [...], "truncate": true}
//   - 响应：[[...], ...]（pooled 输出，pooling 方式由服务端模型配置决定）
//   - 健康检查：GET /health
type TEIClient struct {
	Endpoint string
	Timeout  time.Duration
	Auth     *AuthConfig

	httpClient *http.Client
}

// TEIOption TEI 客户端配置选项
type TEIOption func(*TEIClient)

// WithTEITimeout 设置超时时间
func WithTEITimeout(timeout time.Duration) TEIOption {
	return func(c *TEIClient) {
		c.Timeout = timeout
	}
}

// WithTEIAuth 设置认证信息
func WithTEIAuth(auth *AuthConfig) TEIOption {
	return func(c *TEIClient) {
		c.Auth = auth
	}
}

// WithTEIHTTPClient 设置自定义 HTTP 客户端
func WithTEIHTTPClient(httpClient *http.Client) TEIOption {
	return func(c *TEIClient) {
		c.httpClient = httpClient
	}
}

// NewTEIClient 创建 TEI 客户端
func NewTEIClient(endpoint string, opts ...TEIOption) *TEIClient {
	c := &TEIClient{Endpoint: endpoint, Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

type teiRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// Predict 批量编码文本
func (c *TEIClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || len(req.Texts) == 0 {
		return nil, fmt.Errorf("texts are required")
	}
	respBody, err := doJSON(ctx, c.httpClient, c.Auth, http.MethodPost, c.Endpoint+"/embed",
		teiRequest{Inputs: req.Texts, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("tei request failed: %w", err)
	}
	embeddings, err := parseEmbeddings(respBody)
	if err != nil {
		return nil, fmt.Errorf("tei: %w", err)
	}
	return &core.MLPredictResponse{Embeddings: embeddings}, nil
}

// Health 健康检查
func (c *TEIClient) Health(ctx context.Context) error {
	if _, err := doJSON(ctx, c.httpClient, c.Auth, http.MethodGet, c.Endpoint+"/health", nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (c *TEIClient) Close() error { return nil }

var _ core.MLService = (*TEIClient)(nil)
