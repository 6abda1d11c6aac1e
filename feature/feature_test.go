package feature

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/rushteam/animerec/core"
)

const eps = 1e-9

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name      string
		stopWords string
		doc       string
		want      []string
	}{
		{"lowercase and punctuation", StopWordsNone, "Hello, World! am x-ray", []string{"hello", "world", "am", "ray"}},
		{"english stop words", StopWordsEnglish, "The hero of the village", []string{"hero", "village"}},
		{"vietnamese stop words", StopWordsVietnamese, "Cậu bé và ninja của làng", []string{"cậu", "bé", "ninja", "làng"}},
		{"empty", StopWordsEnglish, "", nil},
		{"only stop words", StopWordsEnglish, "the and of", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw, err := LoadStopWords(tt.stopWords)
			if err != nil {
				t.Fatalf("LoadStopWords() error = %v", err)
			}
			got := NewTokenizer(sw).Tokens(tt.doc)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestLoadStopWordsUnknown(t *testing.T) {
	if _, err := LoadStopWords("klingon"); err == nil {
		t.Error("LoadStopWords(klingon) expected error")
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"a", "b", "c"}, 1, 2)
	want := []string{"a", "b", "c", "a b", "b c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NGrams() = %v, want %v", got, want)
	}
	if got := NGrams([]string{"a"}, 2, 2); len(got) != 0 {
		t.Errorf("NGrams(single, 2) = %v, want empty", got)
	}
}

func TestCosine(t *testing.T) {
	a := Vector{Values: []float64{1, 0}}
	b := Vector{Values: []float64{0, 1}}
	z := Zero(2, core.ErrDegenerateInput)

	if got := Cosine(a, a); math.Abs(got-1) > eps {
		t.Errorf("Cosine(a, a) = %v, want 1", got)
	}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("Cosine(a, b) = %v, want 0", got)
	}
	if got := Cosine(a, z); got != 0 {
		t.Errorf("Cosine(a, zero) = %v, want 0", got)
	}
	if got := Cosine(z, z); got != 0 || math.IsNaN(got) {
		t.Errorf("Cosine(zero, zero) = %v, want 0", got)
	}
	if got := Cosine(a, Vector{Values: []float64{1}}); got != 0 {
		t.Errorf("Cosine(dim mismatch) = %v, want 0", got)
	}
}

func TestCosineBounded(t *testing.T) {
	for i := 1; i <= 200; i++ {
		v := Vector{Values: []float64{float64(i) / 10, 1, 0.3}}
		if got := Cosine(v, v); got > 1 || got < 1-eps {
			t.Fatalf("Cosine(v%d, v%d) = %v, want within [1-eps, 1]", i, i, got)
		}
		neg := Vector{Values: []float64{-v.Values[0], -1, -0.3}}
		if got := Cosine(v, neg); got < -1 {
			t.Fatalf("Cosine(v%d, -v%d) = %v, want >= -1", i, i, got)
		}
		m := NewMatrix(3, []Vector{v, neg})
		for j, sim := range m.Similarities(v) {
			if sim > 1 || sim < -1 {
				t.Fatalf("Similarities(v%d)[%d] = %v, out of [-1, 1]", i, j, sim)
			}
		}
	}
}

func TestDenseNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"nan", []float64{math.NaN(), 1}},
		{"inf", []float64{1, math.Inf(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Dense(tt.values, core.ErrDegenerateInput)
			if !v.Degenerate || len(v.Values) != 2 || v.Norm() != 0 {
				t.Errorf("Dense(%v) = %+v, want degenerate zero vector", tt.values, v)
			}
			ok := Vector{Values: []float64{1, 1}}
			if got := Cosine(ok, v); got != 0 {
				t.Errorf("Cosine(ok, %s) = %v, want 0", tt.name, got)
			}
		})
	}
}

func newEnglishTFIDF(t *testing.T, maxFeatures, ngramMax int) *TFIDFEncoder {
	t.Helper()
	sw, err := LoadStopWords(StopWordsEnglish)
	if err != nil {
		t.Fatalf("LoadStopWords() error = %v", err)
	}
	return NewTFIDFEncoder(TFIDFConfig{MaxFeatures: maxFeatures, NGramMax: ngramMax, StopWords: sw})
}

func TestTFIDFSimilarityOrdering(t *testing.T) {
	docs := []string{
		"Naruto Action, Adventure A young ninja seeks recognition in his village",
		"Boruto Action, Adventure The son of a ninja leader trains in the village",
		"Clannad Drama, Romance A delinquent student meets a girl at school",
	}
	enc := newEnglishTFIDF(t, 0, 2)
	m, err := enc.FitTransform(context.Background(), docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if rows, dim := m.Shape(); rows != 3 || dim != enc.Dimension() || dim == 0 {
		t.Fatalf("Shape() = (%d, %d), want (3, %d)", rows, dim, enc.Dimension())
	}

	sims := m.Similarities(m.Row(0))
	if math.Abs(sims[0]-1) > 1e-6 {
		t.Errorf("self similarity = %v, want 1", sims[0])
	}
	if sims[1] <= sims[2] {
		t.Errorf("sim(A,B) = %v should exceed sim(A,C) = %v", sims[1], sims[2])
	}

	vocab := enc.Vocabulary()
	if !sortedStrings(vocab) {
		t.Errorf("vocabulary not sorted: %v", vocab)
	}
	if !contains(vocab, "action adventure") {
		t.Errorf("vocabulary missing bigram: %v", vocab)
	}
	if contains(vocab, "the") {
		t.Errorf("vocabulary contains stop word: %v", vocab)
	}
}

func TestTFIDFWeights(t *testing.T) {
	enc := NewTFIDFEncoder(TFIDFConfig{NGramMax: 1})
	m, err := enc.FitTransform(context.Background(), []string{"alpha beta", "alpha gamma"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if got := enc.Vocabulary(); !reflect.DeepEqual(got, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("Vocabulary() = %v", got)
	}
	// idf(alpha) = 1, idf(beta) = ln(3/2) + 1
	idfBeta := math.Log(1.5) + 1
	n := math.Sqrt(1 + idfBeta*idfBeta)
	row := m.Row(0).Values
	want := []float64{1 / n, idfBeta / n, 0}
	for i := range want {
		if math.Abs(row[i]-want[i]) > eps {
			t.Errorf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestTFIDFMaxFeatures(t *testing.T) {
	enc := NewTFIDFEncoder(TFIDFConfig{MaxFeatures: 2, NGramMax: 1})
	if _, err := enc.FitTransform(context.Background(), []string{"apple apple banana cherry"}); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if got := enc.Vocabulary(); !reflect.DeepEqual(got, []string{"apple", "banana"}) {
		t.Errorf("Vocabulary() = %v, want [apple banana]", got)
	}
}

func TestTFIDFDegenerateDocument(t *testing.T) {
	enc := newEnglishTFIDF(t, 0, 2)
	m, err := enc.FitTransform(context.Background(), []string{"ninja village", "", "the of and"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if m.DegenerateCount() != 2 {
		t.Errorf("DegenerateCount() = %d, want 2", m.DegenerateCount())
	}
	empty := m.Row(1)
	if !empty.Degenerate || !errors.Is(empty.Reason, core.ErrDegenerateInput) {
		t.Errorf("empty row = %+v, want degenerate", empty)
	}
	if len(empty.Values) != m.Dim {
		t.Errorf("zero row width = %d, want %d", len(empty.Values), m.Dim)
	}
	for i, s := range m.Similarities(empty) {
		if s != 0 {
			t.Errorf("sim(empty, %d) = %v, want 0", i, s)
		}
	}
}

func TestTFIDFTransform(t *testing.T) {
	enc := newEnglishTFIDF(t, 0, 2)
	if _, err := enc.Transform(context.Background(), "ninja"); !errors.Is(err, core.ErrEncoderNotFitted) {
		t.Fatalf("Transform() before fit error = %v, want ErrEncoderNotFitted", err)
	}
	m, err := enc.FitTransform(context.Background(), []string{"ninja village", "school romance"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	q, err := enc.Transform(context.Background(), "a ninja story")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	sims := m.Similarities(q)
	if sims[0] <= 0 || sims[1] != 0 {
		t.Errorf("Similarities() = %v, want [>0 0]", sims)
	}
	unknown, _ := enc.Transform(context.Background(), "spaceship")
	if !unknown.Degenerate {
		t.Error("out-of-vocabulary query should be degenerate")
	}
}

func TestTFIDFEmptyCorpus(t *testing.T) {
	enc := NewTFIDFEncoder(TFIDFConfig{})
	m, err := enc.FitTransform(context.Background(), nil)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

// fakeEmbedder 以文本长度构造确定性向量；包含 "bad" 的批次整体失败。
type fakeEmbedder struct {
	dim       int
	healthErr error

	mu    sync.Mutex
	calls [][]string
}

func (f *fakeEmbedder) Name() string   { return "fake" }
func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Health(ctx context.Context) error { return f.healthErr }

func (f *fakeEmbedder) EncodeTexts(ctx context.Context, texts []string) ([][]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "bad") {
			return nil, errors.New("model exploded")
		}
		v := make([]float64, f.dim)
		v[0] = float64(len(t))
		v[1] = 1
		if strings.Contains(t, "nan") {
			v[0] = math.NaN()
		}
		if strings.Contains(t, "inf") {
			v[1] = math.Inf(1)
		}
		out[i] = v
	}
	return out, nil
}

func TestDenseEncoderOrderAndFallback(t *testing.T) {
	emb := &fakeEmbedder{dim: 4}
	enc := NewDenseEncoder(emb, DenseConfig{BatchSize: 2, Concurrency: 3})
	if err := enc.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	docs := []string{"a", "bb", "ccc", "bad", "", "ffffff", "ggggggg"}
	m, err := enc.FitTransform(context.Background(), docs)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if rows, dim := m.Shape(); rows != len(docs) || dim != 4 {
		t.Fatalf("Shape() = (%d, %d), want (%d, 4)", rows, dim, len(docs))
	}
	for i, d := range docs {
		row := m.Row(i)
		switch {
		case d == "bad":
			if !row.Degenerate || !core.IsUnavailable(row.Reason) {
				t.Errorf("row %d = %+v, want unavailable zero vector", i, row)
			}
		case d == "":
			if !row.Degenerate || !errors.Is(row.Reason, core.ErrDegenerateInput) {
				t.Errorf("row %d = %+v, want degenerate zero vector", i, row)
			}
		default:
			if row.Degenerate || row.Values[0] != float64(len(d)) {
				t.Errorf("row %d = %+v, want embedding of %q", i, row, d)
			}
		}
	}
	for _, call := range emb.calls {
		for _, text := range call {
			if text == "" {
				t.Error("empty document sent to embedder")
			}
		}
	}
}

func TestDenseEncoderNonFiniteEmbedding(t *testing.T) {
	enc := NewDenseEncoder(&fakeEmbedder{dim: 2}, DenseConfig{BatchSize: 4})
	m, err := enc.FitTransform(context.Background(), []string{"ok", "nan here", "inf here"})
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if m.Row(0).Degenerate {
		t.Errorf("row 0 = %+v, want valid embedding", m.Row(0))
	}
	for i := 1; i < 3; i++ {
		row := m.Row(i)
		if !row.Degenerate || row.Norm() != 0 {
			t.Errorf("row %d = %+v, want degenerate zero vector", i, row)
		}
	}
	for i, sim := range m.Similarities(m.Row(0)) {
		if math.IsNaN(sim) {
			t.Errorf("similarity[%d] is NaN", i)
		}
	}
}

func TestDenseEncoderUnavailable(t *testing.T) {
	emb := &fakeEmbedder{dim: 3, healthErr: errors.New("connection refused")}

	strict := NewDenseEncoder(emb, DenseConfig{})
	if err := strict.Init(context.Background()); !core.IsUnavailable(err) {
		t.Fatalf("Init() error = %v, want unavailable", err)
	}
	if _, err := strict.FitTransform(context.Background(), []string{"x"}); !errors.Is(err, core.ErrEncoderUnavailable) {
		t.Errorf("FitTransform() error = %v, want ErrEncoderUnavailable", err)
	}
	if _, err := strict.Transform(context.Background(), "x"); !errors.Is(err, core.ErrEncoderUnavailable) {
		t.Errorf("Transform() error = %v, want ErrEncoderUnavailable", err)
	}

	degraded := NewDenseEncoder(emb, DenseConfig{DegradeOnUnavailable: true})
	_ = degraded.Init(context.Background())
	m, err := degraded.FitTransform(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("degraded FitTransform() error = %v", err)
	}
	if m.DegenerateCount() != 2 || m.Dim != 3 {
		t.Errorf("degraded matrix = %d degenerate rows, dim %d", m.DegenerateCount(), m.Dim)
	}
	q, err := degraded.Transform(context.Background(), "x")
	if err != nil || !q.Degenerate || len(q.Values) != 3 {
		t.Errorf("degraded Transform() = %+v, %v", q, err)
	}
	if len(emb.calls) != 0 {
		t.Errorf("embedder called %d times while unavailable", len(emb.calls))
	}
}

func TestDenseEncoderCanceled(t *testing.T) {
	enc := NewDenseEncoder(&fakeEmbedder{dim: 2}, DenseConfig{BatchSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := enc.FitTransform(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Errorf("FitTransform() error = %v, want context.Canceled", err)
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
