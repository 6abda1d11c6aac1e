package feature

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2/analysis"

	"github.com/rushteam/animerec/core"
)

// TFIDFConfig 稀疏编码器配置
type TFIDFConfig struct {
	MaxFeatures int               // 词表上限，按全语料词频取前 N
	NGramMax    int               // 最大 n 元组长度（1 = 仅单词，2 = 单词 + 双词）
	StopWords   analysis.TokenMap // nil 表示不过滤
}

// tfidfModel 是一次拟合的不可变结果。
type tfidfModel struct {
	vocab map[string]int // term -> 列号
	terms []string       // 列号 -> term（按字母序）
	idf   []float64
}

// TFIDFEncoder 基于 TF-IDF 的稀疏编码器。
//
// 每次 FitTransform 都在给定语料上重新拟合，拟合结果整体替换，
// 并发 Transform 只会看到完整的旧模型或新模型。
type TFIDFEncoder struct {
	tokenizer   *Tokenizer
	maxFeatures int
	ngramMax    int

	mu    sync.RWMutex
	model *tfidfModel
}

// NewTFIDFEncoder 创建稀疏编码器
func NewTFIDFEncoder(cfg TFIDFConfig) *TFIDFEncoder {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = core.DefaultMaxFeatures
	}
	if cfg.NGramMax <= 0 {
		cfg.NGramMax = 2
	}
	return &TFIDFEncoder{
		tokenizer:   NewTokenizer(cfg.StopWords),
		maxFeatures: cfg.MaxFeatures,
		ngramMax:    cfg.NGramMax,
	}
}

func (e *TFIDFEncoder) Name() string { return "tfidf" }

func (e *TFIDFEncoder) Kind() Kind { return KindSparse }

func (e *TFIDFEncoder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return 0
	}
	return len(e.model.terms)
}

// Vocabulary 返回按列号排列的词表副本
func (e *TFIDFEncoder) Vocabulary() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return nil
	}
	return append([]string(nil), e.model.terms...)
}

func (e *TFIDFEncoder) analyze(doc string) []string {
	return NGrams(e.tokenizer.Tokens(doc), 1, e.ngramMax)
}

// FitTransform 拟合词表与 IDF 并编码语料。
// 空语料返回 0 行矩阵；全部文档为空时词表为空，所有行都是零向量。
func (e *TFIDFEncoder) FitTransform(ctx context.Context, docs []string) (*Matrix, error) {
	analyzed := make([][]string, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		terms := e.analyze(doc)
		analyzed[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			total[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	model := buildModel(total, df, len(docs), e.maxFeatures)

	rows := make([]Vector, len(docs))
	for i, terms := range analyzed {
		rows[i] = model.vectorize(terms)
	}

	e.mu.Lock()
	e.model = model
	e.mu.Unlock()

	return NewMatrix(len(model.terms), rows), nil
}

// Transform 用当前模型编码查询文档；未拟合时返回 ErrEncoderNotFitted。
func (e *TFIDFEncoder) Transform(ctx context.Context, doc string) (Vector, error) {
	e.mu.RLock()
	model := e.model
	e.mu.RUnlock()
	if model == nil {
		return Vector{}, core.ErrEncoderNotFitted
	}
	return model.vectorize(e.analyze(doc)), nil
}

// buildModel 选出词频最高的 maxFeatures 个 term（同频按字母序），
// 列号按字母序分配，IDF 采用平滑公式 ln((1+n)/(1+df)) + 1。
func buildModel(total, df map[string]int, n, maxFeatures int) *tfidfModel {
	terms := make([]string, 0, len(total))
	for t := range total {
		terms = append(terms, t)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	m := &tfidfModel{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	for i, t := range terms {
		m.vocab[t] = i
		m.idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	return m
}

// vectorize 计算 tf*idf 并做 L2 归一化；没有命中词表的文档返回零向量。
func (m *tfidfModel) vectorize(terms []string) Vector {
	values := make([]float64, len(m.terms))
	hit := false
	for _, t := range terms {
		if j, ok := m.vocab[t]; ok {
			values[j]++
			hit = true
		}
	}
	if !hit {
		return Zero(len(m.terms), core.ErrDegenerateInput)
	}
	for j := range values {
		values[j] *= m.idf[j]
	}
	n := norm(values)
	for j := range values {
		values[j] /= n
	}
	return Vector{Values: values}
}
