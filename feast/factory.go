package feast

import (
	"strconv"
	"strings"
)

// NewClient 按端点创建 gRPC 客户端。
//
//	client, err := feast.NewClient("localhost:6565", "anime")
func NewClient(endpoint, project string, opts ...ClientOption) (Client, error) {
	host, port := parseEndpoint(endpoint)
	return NewGrpcClient(host, port, project, opts...)
}

// parseEndpoint 解析端点地址，返回 host 和 port（缺省为 0）
func parseEndpoint(endpoint string) (string, int) {
	endpoint = strings.TrimPrefix(endpoint, "grpc://")
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	if i := strings.LastIndex(endpoint, ":"); i >= 0 {
		if port, err := strconv.Atoi(endpoint[i+1:]); err == nil {
			return endpoint[:i], port
		}
	}
	return endpoint, 0
}
