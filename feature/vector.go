package feature

import "math"

// Vector 是编码结果：要么是有效向量，要么是显式的"无信号"零向量占位。
//
// 退化向量（Degenerate）的 Values 全为 0 且长度等于矩阵维度，
// 因此下游相似度计算无需分支；Reason 记录退化原因，便于诊断。
type Vector struct {
	Values     []float64
	Degenerate bool
	Reason     error
}

// Zero 返回维度为 dim 的退化零向量。
func Zero(dim int, reason error) Vector {
	return Vector{
		Values:     make([]float64, dim),
		Degenerate: true,
		Reason:     reason,
	}
}

// Dense 把原始向量包装为 Vector；全零向量视为退化，
// 含 NaN/Inf 的向量不可用，替换为同维零向量。
func Dense(values []float64, reason error) Vector {
	for _, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Zero(len(values), reason)
		}
	}
	if norm(values) == 0 {
		return Vector{Values: values, Degenerate: true, Reason: reason}
	}
	return Vector{Values: values}
}

// clamp 把浮点误差导致的越界余弦值收回 [-1, 1]。
func clamp(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// Norm 返回 L2 范数
func (v Vector) Norm() float64 {
	return norm(v.Values)
}

func norm(values []float64) float64 {
	var sum float64
	for _, x := range values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine 计算余弦相似度 dot(a,b)/(|a||b|)。
// 任一操作数为零向量或维度不一致时返回 0，不产生 NaN。
func Cosine(a, b Vector) float64 {
	if len(a.Values) != len(b.Values) {
		return 0
	}
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot(a.Values, b.Values) / (na * nb))
}

// Matrix 是特征矩阵：行与构建时的 Catalog 一一对应，构建后只读。
type Matrix struct {
	Dim   int
	Rows  []Vector
	norms []float64
}

// NewMatrix 创建矩阵并预计算行范数。
func NewMatrix(dim int, rows []Vector) *Matrix {
	m := &Matrix{Dim: dim, Rows: rows, norms: make([]float64, len(rows))}
	for i, r := range rows {
		m.norms[i] = r.Norm()
	}
	return m
}

// Len 返回行数
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Shape 返回 (行数, 维度)
func (m *Matrix) Shape() (int, int) {
	return m.Len(), m.Dim
}

// Row 返回第 i 行
func (m *Matrix) Row(i int) Vector {
	return m.Rows[i]
}

// DegenerateCount 返回退化行数量
func (m *Matrix) DegenerateCount() int {
	n := 0
	for _, r := range m.Rows {
		if r.Degenerate {
			n++
		}
	}
	return n
}

// Similarities 计算 q 与每一行的余弦相似度，结果下标与行号一致。
// 不修改矩阵。
func (m *Matrix) Similarities(q Vector) []float64 {
	out := make([]float64, len(m.Rows))
	qn := q.Norm()
	if qn == 0 {
		return out
	}
	for i, r := range m.Rows {
		if m.norms[i] == 0 || len(r.Values) != len(q.Values) {
			continue
		}
		out[i] = clamp(dot(q.Values, r.Values) / (qn * m.norms[i]))
	}
	return out
}

// Equal 逐元素比较两个矩阵的形状与数值。
func (m *Matrix) Equal(o *Matrix) bool {
	if m.Len() != o.Len() || m.Dim != o.Dim {
		return false
	}
	for i := range m.Rows {
		a, b := m.Rows[i].Values, o.Rows[i].Values
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
