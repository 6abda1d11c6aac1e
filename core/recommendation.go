package core

import (
	"math"
	"strconv"

	"github.com/rushteam/animerec/pkg/utils"
)

// Recommendation 是基于内容的推荐结果（临时对象，不持久化）。
type Recommendation struct {
	Title           string                 `json:"title"`
	Genres          []string               `json:"genres"`
	Description     string                 `json:"description"`
	SimilarityScore float64                `json:"similarity_score"`
	RatingScore     *float64               `json:"-"`
	Labels          map[string]utils.Label `json:"labels,omitempty"`
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Recommendation) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}

// GenreRecommendation 是体裁子串检索的结果，评分缺失时输出 "N/A"。
type GenreRecommendation struct {
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Description string   `json:"description"`
	RatingScore Score    `json:"rating_score"`
}

// NotAvailable 是评分缺失时的占位输出
const NotAvailable = "N/A"

// Score 是可缺失的评分，序列化为数字或 "N/A"。
type Score struct {
	Value *float64
}

func (s Score) present() bool {
	return s.Value != nil && !math.IsNaN(*s.Value) && !math.IsInf(*s.Value, 0)
}

func (s Score) String() string {
	if !s.present() {
		return NotAvailable
	}
	return strconv.FormatFloat(*s.Value, 'f', -1, 64)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.present() {
		return []byte(`"` + NotAvailable + `"`), nil
	}
	return []byte(strconv.FormatFloat(*s.Value, 'f', -1, 64)), nil
}
