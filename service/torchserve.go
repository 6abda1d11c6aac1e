package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rushteam/animerec/core"
)

// TorchServeClient 是 TorchServe 的客户端实现。
//
// REST API 格式：
//   - 推理端点：POST /predictions/{model_name}
//   - 请求体：{"data": ["text1", "text2", ...], ...params}
//   - 响应：[[...], ...] 或 {"embeddings": [[...], ...]}，格式由模型 Handler 决定
//   - 健康检查：GET /ping
type TorchServeClient struct {
	// Endpoint 服务端点，如 "http://localhost:8080"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选，通过查询参数传递）
	ModelVersion string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	httpClient *http.Client
}

// NewTorchServeClient 创建一个新的 TorchServe 客户端。
func NewTorchServeClient(endpoint, modelName string, opts ...TorchServeOption) *TorchServeClient {
	client := &TorchServeClient{
		Endpoint:  endpoint,
		ModelName: modelName,
		Timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.Timeout}
	}
	return client
}

// TorchServeOption TorchServe 客户端配置选项
type TorchServeOption func(*TorchServeClient)

// WithTorchServeVersion 设置模型版本
func WithTorchServeVersion(version string) TorchServeOption {
	return func(c *TorchServeClient) {
		c.ModelVersion = version
	}
}

// WithTorchServeTimeout 设置超时时间
func WithTorchServeTimeout(timeout time.Duration) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Timeout = timeout
		if c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTorchServeAuth 设置认证信息
func WithTorchServeAuth(auth *AuthConfig) TorchServeOption {
	return func(c *TorchServeClient) {
		c.Auth = auth
	}
}

// WithTorchServeHTTPClient 设置自定义 HTTP 客户端
func WithTorchServeHTTPClient(httpClient *http.Client) TorchServeOption {
	return func(c *TorchServeClient) {
		c.httpClient = httpClient
	}
}

// Predict 批量编码文本
func (c *TorchServeClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || len(req.Texts) == 0 {
		return nil, fmt.Errorf("texts are required")
	}

	modelName := c.ModelName
	if req.ModelName != "" {
		modelName = req.ModelName
	}
	version := c.ModelVersion
	if req.ModelVersion != "" {
		version = req.ModelVersion
	}

	endpoint := fmt.Sprintf("%s/predictions/%s", c.Endpoint, url.PathEscape(modelName))
	if version != "" {
		endpoint += "?version=" + url.QueryEscape(version)
	}

	body := make(map[string]any, len(req.Params)+1)
	for k, v := range req.Params {
		body[k] = v
	}
	body["data"] = req.Texts

	respBody, err := doJSON(ctx, c.httpClient, c.Auth, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("torchserve request failed: %w", err)
	}
	embeddings, err := parseEmbeddings(respBody)
	if err != nil {
		return nil, fmt.Errorf("torchserve: %w", err)
	}
	return &core.MLPredictResponse{Embeddings: embeddings, ModelVersion: version}, nil
}

// Health 健康检查
func (c *TorchServeClient) Health(ctx context.Context) error {
	if _, err := doJSON(ctx, c.httpClient, c.Auth, http.MethodGet, c.Endpoint+"/ping", nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close 关闭连接（HTTP 客户端无需显式关闭）
func (c *TorchServeClient) Close() error {
	return nil
}

var _ core.MLService = (*TorchServeClient)(nil)
