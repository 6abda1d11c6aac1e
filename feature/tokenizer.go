package feature

import (
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// minTokenRunes 与常见 TF-IDF 实现的默认 token 规则一致：丢弃单字符 token。
const minTokenRunes = 2

// Tokenizer 按 Unicode 词边界切分、转小写、去停用词。
type Tokenizer struct {
	tokenizer analysis.Tokenizer
	lower     analysis.TokenFilter
	stopWords analysis.TokenMap
}

// NewTokenizer 使用给定停用词表创建分词器，stopWords 为 nil 表示不过滤。
func NewTokenizer(stopWords analysis.TokenMap) *Tokenizer {
	return &Tokenizer{
		tokenizer: unicode.NewUnicodeTokenizer(),
		lower:     lowercase.NewLowerCaseFilter(),
		stopWords: stopWords,
	}
}

// Tokens 返回过滤后的 token 序列（保持原文顺序）。
func (t *Tokenizer) Tokens(doc string) []string {
	if doc == "" {
		return nil
	}
	stream := t.lower.Filter(t.tokenizer.Tokenize([]byte(doc)))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < minTokenRunes {
			continue
		}
		term := string(tok.Term)
		if t.stopWords != nil && t.stopWords[term] {
			continue
		}
		out = append(out, term)
	}
	return out
}

// NGrams 在去停用词后的 token 序列上生成 [minN, maxN] 元组，元组内以空格连接。
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	out := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i]
			for _, tok := range tokens[i+1 : i+n] {
				gram += " " + tok
			}
			out = append(out, gram)
		}
	}
	return out
}
