// Package cache 持久化稠密特征矩阵，避免进程重启后重复调用模型。
//
// 缓存只记录形状与数值，不记录生成它的 Catalog；
// 加载方需用 CheckShape 校验行数与维度，不一致时丢弃重建。
package cache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/feature"
)

// 二进制布局（小端）：magic[4] | rows uint32 | dim uint32 | rows*dim float64
var magic = [4]byte{'A', 'R', 'M', 'X'}

const headerSize = 12

// Marshal 把矩阵编码为二进制 blob
func Marshal(m *feature.Matrix) []byte {
	rows, dim := m.Shape()
	buf := make([]byte, headerSize+rows*dim*8)
	copy(buf, magic[:])
	binary.LittleEndian.PutUint32(buf[4:], uint32(rows))
	binary.LittleEndian.PutUint32(buf[8:], uint32(dim))
	off := headerSize
	for i := 0; i < rows; i++ {
		values := m.Row(i).Values
		for j := 0; j < dim; j++ {
			var x float64
			if j < len(values) {
				x = values[j]
			}
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(x))
			off += 8
		}
	}
	return buf
}

// Unmarshal 解码二进制 blob；全零行恢复为退化向量。
func Unmarshal(data []byte) (*feature.Matrix, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic[:]) {
		return nil, core.ErrStaleCache.WithMessage("cache: unrecognized matrix blob")
	}
	rows := int(binary.LittleEndian.Uint32(data[4:]))
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	if want := headerSize + rows*dim*8; len(data) != want {
		return nil, core.ErrStaleCache.WithMessage(
			fmt.Sprintf("cache: truncated matrix blob (%d bytes, want %d)", len(data), want))
	}

	out := make([]feature.Vector, rows)
	off := headerSize
	for i := range out {
		values := make([]float64, dim)
		for j := range values {
			values[j] = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
			off += 8
		}
		out[i] = feature.Dense(values, core.ErrDegenerateInput)
	}
	return feature.NewMatrix(dim, out), nil
}

// CheckShape 校验缓存矩阵是否与当前 Catalog 及编码器对齐。
func CheckShape(m *feature.Matrix, rows, dim int) error {
	gotRows, gotDim := m.Shape()
	if gotRows != rows || gotDim != dim {
		return core.ErrStaleCache.WithMessage(fmt.Sprintf(
			"cache: matrix shape (%d, %d) does not match catalog (%d, %d)", gotRows, gotDim, rows, dim))
	}
	return nil
}
