package service

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeTorchServe ServiceType = "torch_serve" // TorchServe
	ServiceTypeTEI        ServiceType = "tei"         // HuggingFace text-embeddings-inference
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType `koanf:"type"`

	// Endpoint 服务端点
	// TorchServe: "http://localhost:8080"
	// TEI: "http://localhost:8081"
	Endpoint string `koanf:"endpoint"`

	// ModelName 模型名称（TorchServe 必填）
	ModelName string `koanf:"model_name"`

	// ModelVersion 模型版本
	ModelVersion string `koanf:"model_version"`

	// Timeout 超时时间（秒）
	Timeout int `koanf:"timeout"`

	// Auth 认证信息（可选）
	Auth *AuthConfig `koanf:"auth"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string `koanf:"type"` // "basic", "bearer", "api_key"
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Token    string `koanf:"token"`
	APIKey   string `koanf:"api_key"`
}
