package core

import "context"

// ItemSource 提供 Item 集合（抓取结果文件、SQLite 等）。
// 返回的标题应唯一且非空，NewCatalog 会拒绝违反该前置条件的数据。
type ItemSource interface {
	LoadItems(ctx context.Context) ([]Item, error)
}

// ItemEnricher 在装载后补充/覆盖 Item 字段（例如从特征平台读取评分）。
// 实现必须返回新的切片，不修改入参。
type ItemEnricher interface {
	Enrich(ctx context.Context, items []Item) ([]Item, error)
}
