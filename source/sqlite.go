package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
)

// SQLiteRepository 把番剧数据持久化在 SQLite（表 anime，标题唯一）。
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// OpenSQLite 打开（必要时创建）数据库并执行迁移。
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("source: create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("source: open database: %w", err)
	}
	// 内存库每个连接各自独立，限制为单连接
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("source: ping database: %w", err)
	}
	r := &SQLiteRepository{db: db, path: path}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

type migration struct {
	version int
	name    string
	stmt    string
}

var migrations = []migration{
	{1, "initial_schema", `
		CREATE TABLE IF NOT EXISTS anime (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id    TEXT,
			title        TEXT NOT NULL UNIQUE,
			genre        TEXT,
			rating_score REAL,
			rating_count INTEGER,
			status       TEXT,
			episodes     INTEGER,
			release_year INTEGER,
			description  TEXT
		)`},
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("source: create migrations table: %w", err)
	}

	var current int
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("source: read migration version: %w", err)
	}
	for _, m := range migrations {
		if current >= m.version {
			continue
		}
		logging.Info().Int("version", m.version).Str("name", m.name).Msg("running migration")
		if _, err := r.db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("source: migration %d failed: %w", m.version, err)
		}
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			return fmt.Errorf("source: record migration %d: %w", m.version, err)
		}
	}
	return nil
}

// Upsert 按标题写入或更新记录，返回写入条数；整个批次在一个事务内完成。
func (r *SQLiteRepository) Upsert(ctx context.Context, items []core.Item) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("source: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anime (source_id, title, genre, rating_score, rating_count, status, episodes, release_year, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			source_id    = excluded.source_id,
			genre        = excluded.genre,
			rating_score = excluded.rating_score,
			rating_count = excluded.rating_count,
			status       = excluded.status,
			episodes     = excluded.episodes,
			release_year = excluded.release_year,
			description  = excluded.description`)
	if err != nil {
		return 0, fmt.Errorf("source: prepare upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			nullString(it.ID),
			it.Title,
			nullString(it.JoinedGenres()),
			it.RatingScore,
			it.RatingCount,
			nullString(it.Status),
			it.Episodes,
			it.ReleaseYear,
			nullString(it.Description),
		); err != nil {
			return 0, fmt.Errorf("source: upsert %q: %w", it.Title, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("source: commit: %w", err)
	}
	return n, nil
}

// LoadItems 按插入顺序返回全部记录，实现 core.ItemSource。
func (r *SQLiteRepository) LoadItems(ctx context.Context) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id, title, genre, rating_score, rating_count, status, episodes, release_year, description
		FROM anime ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("source: query anime: %w", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		var (
			id, genre, status, desc sql.NullString
			title                   string
			score                   sql.NullFloat64
			count, episodes, year   sql.NullInt64
		)
		if err := rows.Scan(&id, &title, &genre, &score, &count, &status, &episodes, &year, &desc); err != nil {
			return nil, fmt.Errorf("source: scan anime: %w", err)
		}
		it := core.Item{
			ID:          id.String,
			Title:       title,
			Status:      status.String,
			Description: desc.String,
		}
		if genre.String != "" {
			it.Genres = strings.Split(genre.String, core.GenreSeparator)
		}
		if score.Valid {
			it.RatingScore = core.Float64(score.Float64)
		}
		if count.Valid {
			it.RatingCount = core.Int64(count.Int64)
		}
		if episodes.Valid {
			it.Episodes = core.Int(int(episodes.Int64))
		}
		if year.Valid {
			it.ReleaseYear = core.Int(int(year.Int64))
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: iterate anime: %w", err)
	}
	return items, nil
}

// Count 返回记录数
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM anime").Scan(&n)
	return n, err
}

// Close 关闭数据库
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ core.ItemSource = (*SQLiteRepository)(nil)
