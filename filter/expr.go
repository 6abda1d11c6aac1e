package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/dsl"
	"github.com/rushteam/animerec/pkg/utils"
)

// ExprFilter 保留表达式为 true 的结果，其余过滤掉。
// 保留的结果会带上 filter Label，记录生效的表达式。
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译 CEL 表达式，语法错误返回 core.ErrInvalidInput。
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, rec *core.Recommendation) (bool, error) {
	ok, err := f.program.Match(rec)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	rec.PutLabel(utils.LabelFilter, utils.Label{Value: f.program.String(), Source: f.Name()})
	return false, nil
}
