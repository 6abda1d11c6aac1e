package core

import (
	"fmt"
	"strings"
)

// GenreSeparator 是 genres 拼接为单个字符串时使用的分隔符（语料构建、体裁子串检索共用）。
const GenreSeparator = ", "

// Item 是一条番剧元数据记录，装载后不可变。
//
// Title 是对外查找键，在同一个 Catalog 内必须唯一且非空。
// RatingScore / RatingCount 为 nil 表示缺失（与 0 分区分）。
type Item struct {
	ID          string
	Title       string
	Genres      []string
	Description string
	RatingScore *float64
	RatingCount *int64

	// 来自抓取数据的附加元信息（可选）
	Status      string
	Episodes    *int
	ReleaseYear *int
}

// JoinedGenres 返回以 ", " 连接的体裁字符串。
func (it Item) JoinedGenres() string {
	return strings.Join(it.Genres, GenreSeparator)
}

// GenreSet 返回去除空白后的体裁集合（集合语义：顺序与重复不影响）。
func (it Item) GenreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(it.Genres))
	for _, g := range it.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		set[g] = struct{}{}
	}
	return set
}

// Float64 返回 v 的指针，便于构造可选字段。
func Float64(v float64) *float64 { return &v }

// Int64 返回 v 的指针，便于构造可选字段。
func Int64(v int64) *int64 { return &v }

// Int 返回 v 的指针，便于构造可选字段。
func Int(v int) *int { return &v }

// Catalog 是进程内不可变的 Item 集合，行顺序即语料顺序。
// 特征矩阵的第 i 行与 Catalog 的第 i 个 Item 一一对应。
type Catalog struct {
	items   []Item
	byTitle map[string]int
}

// NewCatalog 按给定顺序构建 Catalog；标题为空或重复时返回 ErrInvalidInput。
func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{
		items:   make([]Item, len(items)),
		byTitle: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if it.Title == "" {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("catalog: empty title at row %d", i))
		}
		if prev, ok := c.byTitle[it.Title]; ok {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("catalog: duplicate title %q at rows %d and %d", it.Title, prev, i))
		}
		c.byTitle[it.Title] = i
	}
	return c, nil
}

// Len 返回 Item 数量
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At 返回第 i 个 Item
func (c *Catalog) At(i int) Item {
	return c.items[i]
}

// IndexOf 按标题查找行号
func (c *Catalog) IndexOf(title string) (int, bool) {
	if c == nil {
		return -1, false
	}
	i, ok := c.byTitle[title]
	return i, ok
}

// Lookup 按标题查找 Item，不存在时返回 ErrItemNotFound。
func (c *Catalog) Lookup(title string) (Item, error) {
	i, ok := c.IndexOf(title)
	if !ok {
		return Item{}, ErrItemNotFound.WithMessage(fmt.Sprintf("catalog: item %q not found", title))
	}
	return c.items[i], nil
}

// Items 返回 Item 列表的副本
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}
