// Package config 加载分层配置：内置默认值 → YAML 文件（可选） → ANIMEREC_ 环境变量。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/feature"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/service"
)

// EnvPrefix 环境变量前缀，层级用 "__" 分隔：ANIMEREC_ENCODER__KIND=dense
const EnvPrefix = "ANIMEREC_"

// PathEnvVar 指定配置文件路径的环境变量
const PathEnvVar = EnvPrefix + "CONFIG"

// Config 是进程级配置
type Config struct {
	Log       logging.Config  `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Source    SourceConfig    `koanf:"source"`
	Encoder   EncoderConfig   `koanf:"encoder"`
	Cache     CacheConfig     `koanf:"cache"`
	Feast     FeastConfig     `koanf:"feast"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// SourceConfig 数据来源
type SourceConfig struct {
	Kind string `koanf:"kind"` // json / yaml / sqlite，空串表示按扩展名推断
	Path string `koanf:"path"`
}

// EncoderConfig 特征编码器配置
type EncoderConfig struct {
	Kind string `koanf:"kind"` // sparse / dense

	// 稀疏编码器
	MaxFeatures   int    `koanf:"max_features"`
	NGramMax      int    `koanf:"ngram_max"`
	StopWords     string `koanf:"stop_words"` // english / vietnamese / none
	StopWordsFile string `koanf:"stop_words_file"`

	// 稠密编码器
	Dimension            int                   `koanf:"dimension"`
	MaxLength            int                   `koanf:"max_length"`
	BatchSize            int                   `koanf:"batch_size"`
	Concurrency          int                   `koanf:"concurrency"`
	DegradeOnUnavailable bool                  `koanf:"degrade_on_unavailable"`
	Service              service.ServiceConfig `koanf:"service"`
	Breaker              BreakerConfig         `koanf:"breaker"`
}

// BreakerConfig 稠密编码器熔断配置
type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// CacheConfig 稠密特征矩阵缓存
type CacheConfig struct {
	Kind      string        `koanf:"kind"` // none / file / redis / memory
	Path      string        `koanf:"path"`
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db"`
	Key       string        `koanf:"key"`
	TTL       time.Duration `koanf:"ttl"`
}

// FeastConfig 评分特征覆盖
type FeastConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Endpoint     string `koanf:"endpoint"`
	Project      string `koanf:"project"`
	Token        string `koanf:"token"`
	ScoreFeature string `koanf:"score_feature"`
	CountFeature string `koanf:"count_feature"`
	EntityKey    string `koanf:"entity_key"`
}

// RecommendConfig 推荐参数
type RecommendConfig struct {
	DefaultTopN      int      `koanf:"default_top_n"`
	DefaultGenreTopN int      `koanf:"default_genre_top_n"`
	MaxTopN          int      `koanf:"max_top_n"`
	Blacklist        []string `koanf:"blacklist"`
	BlacklistKey     string   `koanf:"blacklist_key"`
}

// sliceConfigPaths 可能以逗号分隔字符串形式出现在环境变量里的切片字段
var sliceConfigPaths = []string{
	"recommend.blacklist",
}

// Default 返回内置默认配置
func Default() *Config {
	return &Config{
		Log: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Source: SourceConfig{
			Path: "anime.json",
		},
		Encoder: EncoderConfig{
			Kind:        string(feature.KindSparse),
			MaxFeatures: core.DefaultMaxFeatures,
			NGramMax:    2,
			StopWords:   feature.StopWordsEnglish,
			Dimension:   core.DefaultDimension,
			MaxLength:   core.DefaultMaxLength,
			BatchSize:   32,
			Concurrency: 4,
			Service: service.ServiceConfig{
				Type:    service.ServiceTypeTEI,
				Timeout: 30,
			},
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Cache: CacheConfig{
			Kind: "none",
			Path: "anime_embeddings.bin",
			Key:  "animerec:embeddings",
		},
		Feast: FeastConfig{
			EntityKey: "anime_id",
		},
		Recommend: RecommendConfig{
			DefaultTopN:      core.DefaultTopN,
			DefaultGenreTopN: core.DefaultGenreTopN,
			MaxTopN:          100,
		},
	}
}

// Load 按 默认值 → 配置文件 → 环境变量 的顺序加载配置。
// path 为空时读取 ANIMEREC_CONFIG；两者都为空则跳过文件层。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc ANIMEREC_ENCODER__MAX_FEATURES -> encoder.max_features；
// 配置文件路径变量本身不进入配置树。
func envTransformFunc(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

// processSliceFields 把逗号分隔的字符串转换为切片
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
