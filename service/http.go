package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// addAuth 添加认证信息到 HTTP 请求
func addAuth(req *http.Request, auth *AuthConfig) {
	if auth == nil {
		return
	}
	switch auth.Type {
	case "basic":
		req.SetBasicAuth(auth.Username, auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", auth.APIKey)
	}
}

// doJSON 发送 JSON 请求并返回响应体；非 200 状态码视为错误。
func doJSON(ctx context.Context, client *http.Client, auth *AuthConfig, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req, auth)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status=%d, body=%s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// parseEmbeddings 解析常见的向量响应格式：
//   - [[0.1, 0.2, ...], ...]
//   - {"embeddings": [[...], ...]} 或 {"vectors": [[...], ...]}
func parseEmbeddings(body []byte) ([][]float64, error) {
	var arr [][]float64
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}
	var obj struct {
		Embeddings [][]float64 `json:"embeddings"`
		Vectors    [][]float64 `json:"vectors"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("unable to parse response: %w", err)
	}
	if obj.Embeddings != nil {
		return obj.Embeddings, nil
	}
	if obj.Vectors != nil {
		return obj.Vectors, nil
	}
	return nil, fmt.Errorf("unable to parse response: no embeddings")
}
