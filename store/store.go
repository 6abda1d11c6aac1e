// Package store 提供 core.Store 的实现，接口定义在 core 包。
//
//	var s core.Store = store.NewMemoryStore()
//	var s core.Store, err = store.NewRedisStore(ctx, "localhost:6379", 0)
package store
