package filter

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 黑名单以 JSON 字符串数组保存，例如 ["Title A","Title B"]。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("decode blacklist %q: %w", key, err)
	}
	return titles, nil
}

// SetBlacklist 覆盖写入黑名单（不过期）。
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, titles []string) error {
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data, 0)
}
