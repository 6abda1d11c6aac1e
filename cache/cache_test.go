package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/feature"
	"github.com/rushteam/animerec/store"
)

func sampleMatrix() *feature.Matrix {
	return feature.NewMatrix(3, []feature.Vector{
		{Values: []float64{0.1, -0.2, 0.3}},
		feature.Zero(3, core.ErrDegenerateInput),
		{Values: []float64{1e-300, 42, -7.5}},
	})
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewFileCache(filepath.Join(t.TempDir(), "sub", "embeddings.bin"))

	if _, err := c.Load(ctx); !errors.Is(err, core.ErrCacheNotFound) {
		t.Fatalf("Load() before Save error = %v, want ErrCacheNotFound", err)
	}

	m := sampleMatrix()
	if err := c.Save(ctx, m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(m) {
		t.Errorf("Load() = %+v, want %+v", got.Rows, m.Rows)
	}
	if !got.Row(1).Degenerate {
		t.Error("zero row should load as degenerate")
	}

	if err := c.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestStoreCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	c := NewStoreCache(s, "animerec:matrix", 0)

	if _, err := c.Load(ctx); !errors.Is(err, core.ErrCacheNotFound) {
		t.Fatalf("Load() before Save error = %v", err)
	}
	m := sampleMatrix()
	if err := c.Save(ctx, m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := c.Load(ctx)
	if err != nil || !got.Equal(m) {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if c.Name() != "store:memory" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("not a matrix"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !core.IsStale(err) {
		t.Errorf("LoadFile(garbage) error = %v, want stale", err)
	}

	data := Marshal(sampleMatrix())
	if _, err := Unmarshal(data[:len(data)-1]); !core.IsStale(err) {
		t.Errorf("Unmarshal(truncated) error = %v, want stale", err)
	}
}

func TestCheckShape(t *testing.T) {
	m := sampleMatrix()
	tests := []struct {
		rows, dim int
		wantErr   bool
	}{
		{3, 3, false},
		{4, 3, true},
		{3, 768, true},
	}
	for _, tt := range tests {
		err := CheckShape(m, tt.rows, tt.dim)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckShape(%d, %d) error = %v", tt.rows, tt.dim, err)
		}
		if err != nil && !errors.Is(err, core.ErrStaleCache) {
			t.Errorf("CheckShape() error = %v, want ErrStaleCache", err)
		}
	}
}

func TestEmptyMatrixRoundTrip(t *testing.T) {
	m := feature.NewMatrix(768, nil)
	got, err := Unmarshal(Marshal(m))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rows, dim := got.Shape(); rows != 0 || dim != 768 {
		t.Errorf("Shape() = (%d, %d)", rows, dim)
	}
}
