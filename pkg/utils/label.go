package utils

// Label 是推荐结果上的可解释标记：来源、编码器、信号质量等。
// Value 与 Source 的语义由调用方约定；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank ...
}

// 常用的 Label key
const (
	LabelRecallSource = "recall_source"
	LabelEncoder      = "encoder"
	LabelSignal       = "signal"
	LabelFilter       = "filter"
)

// MergeLabel 用于合并同名 Label，保留历史：
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
