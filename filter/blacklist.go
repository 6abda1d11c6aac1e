package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// BlacklistFilter 是黑名单过滤器，按标题过滤掉下架/屏蔽的番剧。
type BlacklistFilter struct {
	// Titles 是内存中的黑名单标题
	Titles map[string]struct{}

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单标题列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器，storeAdapter 可以为 nil。
func NewBlacklistFilter(titles []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[t] = struct{}{}
	}
	f := &BlacklistFilter{Titles: set, Key: key}
	if storeAdapter != nil {
		f.Store = storeAdapter
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, rec *core.Recommendation) (bool, error) {
	if _, ok := f.Titles[rec.Title]; ok {
		return true, nil
	}

	if f.Store != nil && f.Key != "" {
		titles, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, t := range titles {
			if rec.Title == t {
				return true, nil
			}
		}
	}
	return false, nil
}
