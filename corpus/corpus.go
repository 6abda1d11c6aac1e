// Package corpus 把结构化字段（标题、体裁、简介）拼接为编码器的输入文档。
package corpus

import (
	"strings"

	"github.com/rushteam/animerec/core"
)

// BuildDocument 按 "title genres description" 的固定顺序拼接文档。
// 体裁以 ", " 连接；缺失字段替换为空字符串。结果只依赖入参，重复调用字节一致。
func BuildDocument(it core.Item) string {
	var b strings.Builder
	b.Grow(len(it.Title) + len(it.Description) + 16*len(it.Genres) + 2)
	b.WriteString(it.Title)
	b.WriteByte(' ')
	b.WriteString(it.JoinedGenres())
	b.WriteByte(' ')
	b.WriteString(it.Description)
	return b.String()
}

// BuildCorpus 按 Catalog 顺序生成全部文档，第 i 个文档对应第 i 行。
func BuildCorpus(c *core.Catalog) []string {
	docs := make([]string, c.Len())
	for i := range docs {
		docs[i] = BuildDocument(c.At(i))
	}
	return docs
}
