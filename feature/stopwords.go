package feature

import (
	_ "embed"
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

// 内置停用词表名称
const (
	StopWordsEnglish    = "english"
	StopWordsVietnamese = "vietnamese"
	StopWordsNone       = "none"
)

//go:embed stopwords/vietnamese.txt
var vietnameseStopWords []byte

// LoadStopWords 按名称加载内置停用词表；"none" 或空串返回 nil（不过滤）。
func LoadStopWords(name string) (analysis.TokenMap, error) {
	switch name {
	case "", StopWordsNone:
		return nil, nil
	case StopWordsEnglish:
		tm := analysis.NewTokenMap()
		if err := tm.LoadBytes(en.EnglishStopWords); err != nil {
			return nil, fmt.Errorf("load english stop words: %w", err)
		}
		return tm, nil
	case StopWordsVietnamese:
		tm := analysis.NewTokenMap()
		if err := tm.LoadBytes(vietnameseStopWords); err != nil {
			return nil, fmt.Errorf("load vietnamese stop words: %w", err)
		}
		return tm, nil
	default:
		return nil, fmt.Errorf("unknown stop word list %q", name)
	}
}

// LoadStopWordsFile 从文件加载停用词表（每行一个或多个词，'#'/'|' 之后为注释），
// 可选地与内置表 base 合并。
func LoadStopWordsFile(path string, base analysis.TokenMap) (analysis.TokenMap, error) {
	tm := analysis.NewTokenMap()
	for w := range base {
		tm.AddToken(w)
	}
	if err := tm.LoadFile(path); err != nil {
		return nil, fmt.Errorf("load stop words file %s: %w", path, err)
	}
	return tm, nil
}
