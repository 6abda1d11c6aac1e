package config

import (
	"fmt"
	"strings"

	"github.com/rushteam/animerec/feature"
	"github.com/rushteam/animerec/service"
	"github.com/rushteam/animerec/source"
)

// Validate 校验枚举值与数值范围
func (c *Config) Validate() error {
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateFeast(); err != nil {
		return err
	}
	return c.validateRecommend()
}

func (c *Config) validateLog() error {
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
}

func (c *Config) validateSource() error {
	switch source.Kind(c.Source.Kind) {
	case "", source.KindJSON, source.KindYAML, source.KindSQLite:
	default:
		return fmt.Errorf("source.kind must be json, yaml or sqlite, got %q", c.Source.Kind)
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	e := c.Encoder
	switch feature.Kind(e.Kind) {
	case feature.KindSparse:
		if e.MaxFeatures <= 0 {
			return fmt.Errorf("encoder.max_features must be positive, got %d", e.MaxFeatures)
		}
		if e.NGramMax <= 0 {
			return fmt.Errorf("encoder.ngram_max must be positive, got %d", e.NGramMax)
		}
		switch e.StopWords {
		case feature.StopWordsEnglish, feature.StopWordsVietnamese, feature.StopWordsNone, "":
		default:
			return fmt.Errorf("encoder.stop_words must be english, vietnamese or none, got %q", e.StopWords)
		}
	case feature.KindDense:
		if e.Dimension <= 0 {
			return fmt.Errorf("encoder.dimension must be positive, got %d", e.Dimension)
		}
		if e.BatchSize <= 0 {
			return fmt.Errorf("encoder.batch_size must be positive, got %d", e.BatchSize)
		}
		if e.Concurrency <= 0 {
			return fmt.Errorf("encoder.concurrency must be positive, got %d", e.Concurrency)
		}
		if err := service.ValidateConfig(&e.Service); err != nil {
			return fmt.Errorf("encoder.service: %w", err)
		}
	default:
		return fmt.Errorf("encoder.kind must be sparse or dense, got %q", e.Kind)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Kind {
	case "", "none", "memory":
	case "file":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for file cache")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.kind must be none, file, redis or memory, got %q", c.Cache.Kind)
	}
	if c.Cache.Kind != "" && c.Cache.Kind != "none" && c.Cache.Kind != "file" && c.Cache.Key == "" {
		return fmt.Errorf("cache.key is required for %s cache", c.Cache.Kind)
	}
	return nil
}

func (c *Config) validateFeast() error {
	if !c.Feast.Enabled {
		return nil
	}
	if c.Feast.Endpoint == "" {
		return fmt.Errorf("feast.endpoint is required when feast is enabled")
	}
	if c.Feast.Project == "" {
		return fmt.Errorf("feast.project is required when feast is enabled")
	}
	if c.Feast.ScoreFeature == "" && c.Feast.CountFeature == "" {
		return fmt.Errorf("feast: at least one of score_feature or count_feature is required")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultTopN <= 0 || r.DefaultGenreTopN <= 0 {
		return fmt.Errorf("recommend default top_n values must be positive")
	}
	if r.MaxTopN < r.DefaultTopN || r.MaxTopN < r.DefaultGenreTopN {
		return fmt.Errorf("recommend.max_top_n (%d) must not be below the defaults", r.MaxTopN)
	}
	return nil
}
