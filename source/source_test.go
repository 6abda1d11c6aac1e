package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/animerec/core"
)

const crawlerJSON = `{
  "naruto": {
    "title": "  Naruto ",
    "genre": ["action", " adventure ", "", 3],
    "rating": ["8.5", "1200"],
    "status": "hoàn thành",
    "episodes": "220",
    "release year": "2002",
    "description": "A young ninja."
  },
  "clannad": {
    "title": "Clannad",
    "genre": ["romance", "slice of life"],
    "rating": "N/A",
    "status": "Completed",
    "episodes": 23,
    "release_year": 2007,
    "description": "N/A"
  },
  "broken": {
    "title": "Broken Rating",
    "genre": "drama, school",
    "rating": ["abc", null],
    "episodes": "??",
    "release year": "N/A"
  },
  "blank": {"title": "   "},
  "dup": {"title": "Clannad", "genre": ["drama"]}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkCrawlerItems(t *testing.T, items []core.Item) {
	t.Helper()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3: %+v", len(items), items)
	}

	naruto := items[0]
	if naruto.ID != "naruto" || naruto.Title != "Naruto" {
		t.Errorf("naruto = %+v", naruto)
	}
	if !reflect.DeepEqual(naruto.Genres, []string{"Action", "Adventure"}) {
		t.Errorf("naruto genres = %v", naruto.Genres)
	}
	if naruto.RatingScore == nil || *naruto.RatingScore != 8.5 || naruto.RatingCount == nil || *naruto.RatingCount != 1200 {
		t.Errorf("naruto rating = %v / %v", naruto.RatingScore, naruto.RatingCount)
	}
	if naruto.Status != "Hoàn Thành" {
		t.Errorf("naruto status = %q", naruto.Status)
	}
	if naruto.Episodes == nil || *naruto.Episodes != 220 || naruto.ReleaseYear == nil || *naruto.ReleaseYear != 2002 {
		t.Errorf("naruto episodes/year = %v / %v", naruto.Episodes, naruto.ReleaseYear)
	}

	clannad := items[1]
	if clannad.RatingScore != nil || clannad.RatingCount != nil {
		t.Errorf("clannad rating should be missing: %v / %v", clannad.RatingScore, clannad.RatingCount)
	}
	if clannad.Description != "" {
		t.Errorf("clannad description = %q, want empty", clannad.Description)
	}
	if !reflect.DeepEqual(clannad.Genres, []string{"Romance", "Slice Of Life"}) {
		t.Errorf("clannad genres = %v", clannad.Genres)
	}
	if clannad.ReleaseYear == nil || *clannad.ReleaseYear != 2007 {
		t.Errorf("clannad year = %v", clannad.ReleaseYear)
	}

	broken := items[2]
	if broken.RatingScore != nil || broken.RatingCount != nil || broken.Episodes != nil || broken.ReleaseYear != nil {
		t.Errorf("broken = %+v, want missing numeric fields", broken)
	}
	if !reflect.DeepEqual(broken.Genres, []string{"Drama", "School"}) {
		t.Errorf("broken genres = %v", broken.Genres)
	}
}

func TestLoadJSON(t *testing.T) {
	items, err := LoadJSON(writeFile(t, "data.json", crawlerJSON))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	checkCrawlerItems(t, items)
}

func TestLoadJSONArray(t *testing.T) {
	items, err := LoadJSON(writeFile(t, "data.json", `[{"id": 7, "title": "B"}, {"title": "A"}]`))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != "7" || items[0].Title != "B" || items[1].ID != "1" {
		t.Errorf("items = %+v", items)
	}
}

func TestLoadJSONErrors(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadJSON(missing) expected error")
	}
	if _, err := LoadJSON(writeFile(t, "bad.json", `"just a string"`)); err == nil {
		t.Error("LoadJSON(string) expected error")
	}
}

func TestLoadYAML(t *testing.T) {
	const doc = `
naruto:
  title: "  Naruto "
  genre: [action, " adventure ", "", 3]
  rating: ["8.5", "1200"]
  status: hoàn thành
  episodes: "220"
  release year: "2002"
  description: A young ninja.
clannad:
  title: Clannad
  genre: [romance, slice of life]
  rating: N/A
  status: Completed
  episodes: 23
  release_year: 2007
  description: N/A
broken:
  title: Broken Rating
  genre: drama, school
  rating: [abc, null]
  episodes: "??"
  release year: N/A
blank:
  title: "   "
dup:
  title: Clannad
`
	items, err := LoadYAML(writeFile(t, "data.yaml", doc))
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	checkCrawlerItems(t, items)
}

func TestFileSourceByExtension(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"a.json", KindJSON},
		{"a.YML", KindYAML},
		{"a.yaml", KindYAML},
		{"anime.db", KindSQLite},
		{"noext", KindJSON},
	}
	for _, tt := range tests {
		if got := KindFromPath(tt.path); got != tt.want {
			t.Errorf("KindFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	src := &FileSource{Path: writeFile(t, "data.yml", "- title: A\n- title: B\n")}
	items, err := src.LoadItems(context.Background())
	if err != nil || len(items) != 2 {
		t.Errorf("LoadItems() = %+v, %v", items, err)
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "anime.db")
	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}

	items, err := LoadJSON(writeFile(t, "data.json", crawlerJSON))
	if err != nil {
		t.Fatal(err)
	}
	n, err := repo.Upsert(ctx, items)
	if err != nil || n != 3 {
		t.Fatalf("Upsert() = %d, %v", n, err)
	}

	got, err := repo.LoadItems(ctx)
	if err != nil {
		t.Fatalf("LoadItems() error = %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("LoadItems() = %+v\nwant %+v", got, items)
	}

	// 重复导入按标题更新，不新增行
	items[1].RatingScore = core.Float64(9.1)
	if _, err := repo.Upsert(ctx, items[1:2]); err != nil {
		t.Fatal(err)
	}
	if count, _ := repo.Count(ctx); count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
	got, _ = repo.LoadItems(ctx)
	if got[1].RatingScore == nil || *got[1].RatingScore != 9.1 {
		t.Errorf("updated rating = %v", got[1].RatingScore)
	}
	if err := repo.Close(); err != nil {
		t.Fatal(err)
	}

	// 重新打开时迁移幂等
	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer repo.Close()
	if count, _ := repo.Count(ctx); count != 3 {
		t.Errorf("Count() after reopen = %d", count)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	src, err := Open(ctx, "", filepath.Join(t.TempDir(), "anime.sqlite"))
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	if repo, ok := src.(*SQLiteRepository); !ok {
		t.Errorf("Open() = %T, want *SQLiteRepository", src)
	} else {
		repo.Close()
	}
	if _, err := Open(ctx, "csv", "x.csv"); err == nil {
		t.Error("Open(csv) expected error")
	}
}
