// Package conv 提供 any → 标量、slice 转换等泛型工具，用于清洗 JSON/YAML 解码出的松散数据。
package conv

import (
	"strconv"
	"strings"
)

// ToFloat64 将 any 转为 float64。
// 支持各类整数与浮点数，以及可解析为数字的字符串（去除首尾空白）。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ToInt64 将 any 转为 int64。
// 浮点数必须是整数值（8.0 可以，8.5 不行）；字符串按十进制解析。
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case uint64:
		return int64(val), true
	case float64:
		if val != float64(int64(val)) {
			return 0, false
		}
		return int64(val), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// ToString 将 any 转为 string。
// 仅支持 string 类型，否则返回 ("", false)。
func ToString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ConvertSlice 将 []T 按 convert 转为 []U，convert 返回 false 的元素被跳过。
func ConvertSlice[T, U any](s []T, convert func(T) (U, bool)) []U {
	if s == nil {
		return nil
	}
	out := make([]U, 0, len(s))
	for _, v := range s {
		if u, ok := convert(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// Strings 将 []any 中的字符串元素取出，其它类型跳过。
func Strings(v []any) []string {
	return ConvertSlice(v, ToString)
}
