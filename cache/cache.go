package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/feature"
)

// Cache 是特征矩阵缓存
type Cache interface {
	Name() string

	// Save 写入矩阵，覆盖旧值
	Save(ctx context.Context, m *feature.Matrix) error

	// Load 读取矩阵，不存在时返回 core.ErrCacheNotFound
	Load(ctx context.Context) (*feature.Matrix, error)

	// Delete 删除缓存，不存在时不报错
	Delete(ctx context.Context) error
}

// FileCache 把矩阵保存为本地二进制文件。
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) Name() string { return "file" }

// Path 返回缓存文件路径
func (c *FileCache) Path() string { return c.path }

// Save 先写临时文件再 rename，避免读到写了一半的文件。
func (c *FileCache) Save(ctx context.Context, m *feature.Matrix) error {
	return SaveFile(m, c.path)
}

func (c *FileCache) Load(ctx context.Context) (*feature.Matrix, error) {
	return LoadFile(c.path)
}

func (c *FileCache) Delete(ctx context.Context) error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveFile 保存矩阵到 path
func SaveFile(m *feature.Matrix, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	if _, err := tmp.Write(Marshal(m)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: rename: %w", err)
	}
	return nil
}

// LoadFile 从 path 读取矩阵，文件不存在时返回 core.ErrCacheNotFound。
func LoadFile(path string) (*feature.Matrix, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrCacheNotFound.WithMessage("cache: file not found: " + path)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read: %w", err)
	}
	return Unmarshal(data)
}

// StoreCache 把矩阵作为单个 blob 保存在 core.Store（Redis / 内存）中。
type StoreCache struct {
	store core.Store
	key   string
	ttl   time.Duration
}

// NewStoreCache 创建基于 Store 的缓存，ttl <= 0 表示不过期。
func NewStoreCache(store core.Store, key string, ttl time.Duration) *StoreCache {
	return &StoreCache{store: store, key: key, ttl: ttl}
}

func (c *StoreCache) Name() string { return "store:" + c.store.Name() }

func (c *StoreCache) Save(ctx context.Context, m *feature.Matrix) error {
	return c.store.Set(ctx, c.key, Marshal(m), c.ttl)
}

func (c *StoreCache) Load(ctx context.Context) (*feature.Matrix, error) {
	data, err := c.store.Get(ctx, c.key)
	if core.IsStoreNotFound(err) {
		return nil, core.ErrCacheNotFound.WithMessage("cache: key not found: " + c.key)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %s get: %w", c.store.Name(), err)
	}
	return Unmarshal(data)
}

func (c *StoreCache) Delete(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}

var (
	_ Cache = (*FileCache)(nil)
	_ Cache = (*StoreCache)(nil)
)
