package feast

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
)

// RatingEnricher 从 Feast 在线存储读取最新评分，覆盖 Item 的 RatingScore / RatingCount。
//
// 缺失的特征保留原值；实体键取 Item.ID，ID 为空时退回 Title。
type RatingEnricher struct {
	Client Client

	// Project 覆盖客户端默认项目（可选）
	Project string

	// EntityKey 实体列名，默认 "anime_id"
	EntityKey string

	// ScoreFeature / CountFeature 特征引用，空串表示不读取该字段
	ScoreFeature string
	CountFeature string

	// BatchSize 每次请求的实体行数，默认 100
	BatchSize int
}

// Enrich 实现 core.ItemEnricher，返回新的切片。
func (e *RatingEnricher) Enrich(ctx context.Context, items []core.Item) ([]core.Item, error) {
	out := make([]core.Item, len(items))
	copy(out, items)

	features := e.features()
	if e.Client == nil || len(features) == 0 || len(out) == 0 {
		return out, nil
	}

	batch := e.BatchSize
	if batch <= 0 {
		batch = 100
	}
	key := e.EntityKey
	if key == "" {
		key = "anime_id"
	}

	updated := 0
	for start := 0; start < len(out); start += batch {
		end := min(start+batch, len(out))
		rows := make([]map[string]any, 0, end-start)
		for _, it := range out[start:end] {
			rows = append(rows, map[string]any{key: entityID(it)})
		}

		resp, err := e.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
			Features:   features,
			EntityRows: rows,
			Project:    e.Project,
		})
		if err != nil {
			return nil, fmt.Errorf("feast enrich rows %d-%d: %w", start, end, err)
		}
		if len(resp.FeatureVectors) != end-start {
			return nil, fmt.Errorf("feast enrich: expected %d feature vectors, got %d", end-start, len(resp.FeatureVectors))
		}

		for i, fv := range resp.FeatureVectors {
			if e.apply(&out[start+i], fv.Values) {
				updated++
			}
		}
	}

	logging.Ctx(ctx).Info().
		Int("items", len(out)).
		Int("updated", updated).
		Msg("feast rating enrichment done")
	return out, nil
}

func (e *RatingEnricher) features() []string {
	var fs []string
	if e.ScoreFeature != "" {
		fs = append(fs, e.ScoreFeature)
	}
	if e.CountFeature != "" {
		fs = append(fs, e.CountFeature)
	}
	return fs
}

func (e *RatingEnricher) apply(it *core.Item, values map[string]any) bool {
	changed := false
	if v, ok := numeric(values[e.ScoreFeature]); ok && e.ScoreFeature != "" {
		it.RatingScore = core.Float64(v)
		changed = true
	}
	if v, ok := numeric(values[e.CountFeature]); ok && e.CountFeature != "" && v >= 0 {
		it.RatingCount = core.Int64(int64(v))
		changed = true
	}
	return changed
}

func entityID(it core.Item) string {
	if it.ID != "" {
		return it.ID
	}
	return it.Title
}

func numeric(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var _ core.ItemEnricher = (*RatingEnricher)(nil)
