package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/animerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境，定义 item / label 两个变量
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的推荐结果过滤表达式，使用 CEL (Common Expression Language)。
// 编译一次，可在多个 goroutine 中并发求值。
//
// 可用变量：
//   - item.title / item.description: string
//   - item.genres: list(string)
//   - item.score: 相似度
//   - item.rating: 评分，缺失时为 null
//   - label.<key>: Label 的 Value，例如 label.recall_source
//
// 示例：
//   - `item.score > 0.2`
//   - `"Action" in item.genres && item.rating != null && item.rating >= 8.0`
//   - `!item.title.contains("Movie")`
//   - `has(label.signal)` 检查 Label 是否存在
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 解析并编译表达式
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.ErrInvalidInput.WithMessage(fmt.Sprintf("compile %q: %v", expr, issues.Err()))
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string {
	return p.expr
}

// Match 对单条推荐结果求值，表达式必须返回布尔值。
func (p *Program) Match(rec *core.Recommendation) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(rec))
	if err != nil {
		// 访问不存在的 label key 会报错，表达式应先用 has() 检查
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(rec *core.Recommendation) map[string]any {
	genres := make([]string, len(rec.Genres))
	copy(genres, rec.Genres)

	var rating any
	if rec.RatingScore != nil {
		rating = *rec.RatingScore
	}

	labels := make(map[string]any, len(rec.Labels))
	for k, v := range rec.Labels {
		labels[k] = v.Value
	}

	return map[string]any{
		"item": map[string]any{
			"title":       rec.Title,
			"description": rec.Description,
			"genres":      genres,
			"score":       rec.SimilarityScore,
			"rating":      rating,
		},
		"label": labels,
	}
}
