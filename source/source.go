// Package source 装载番剧数据：抓取程序输出的 JSON/YAML 文件，或 SQLite 数据库。
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
)

// Kind 数据源类型
type Kind string

const (
	KindJSON   Kind = "json"
	KindYAML   Kind = "yaml"
	KindSQLite Kind = "sqlite"
)

// FileSource 从数据文件装载 Item，格式由 Kind 或扩展名决定。
type FileSource struct {
	Path string
	Kind Kind // 为空时按扩展名推断
}

// LoadItems 实现 core.ItemSource
func (s *FileSource) LoadItems(ctx context.Context) ([]core.Item, error) {
	kind := s.Kind
	if kind == "" {
		kind = KindFromPath(s.Path)
	}
	switch kind {
	case KindJSON:
		return LoadJSON(s.Path)
	case KindYAML:
		return LoadYAML(s.Path)
	default:
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeNotSupported,
			fmt.Sprintf("source: unsupported file kind %q", kind))
	}
}

// KindFromPath 按扩展名推断数据源类型
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return KindYAML
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindJSON
	}
}

// Open 按类型打开数据源；SQLite 数据源需调用方在用完后 Close。
func Open(ctx context.Context, kind Kind, path string) (core.ItemSource, error) {
	if kind == "" {
		kind = KindFromPath(path)
	}
	switch kind {
	case KindJSON, KindYAML:
		return &FileSource{Path: path, Kind: kind}, nil
	case KindSQLite:
		return OpenSQLite(ctx, path)
	default:
		return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeNotSupported,
			fmt.Sprintf("source: unsupported kind %q", kind))
	}
}

// record 是解码后的一条原始记录
type record struct {
	id     string
	fields map[string]any
}

// collect 清洗原始记录：跳过空标题与重复标题（保留首次出现）。
func collect(path string, records []record) []core.Item {
	items := make([]core.Item, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	skipped := 0
	for _, r := range records {
		it, ok := normalize(r.id, r.fields)
		if !ok {
			skipped++
			continue
		}
		if _, dup := seen[it.Title]; dup {
			logging.Debug().Str("title", it.Title).Msg("duplicate title skipped")
			skipped++
			continue
		}
		seen[it.Title] = struct{}{}
		items = append(items, it)
	}
	logging.Info().Str("path", path).Int("items", len(items)).Int("skipped", skipped).Msg("dataset loaded")
	return items
}
