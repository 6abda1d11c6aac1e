package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/animerec/core"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}

	value := []byte("matrix")
	if err := s.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "matrix" {
		t.Fatalf("Get() = %q, %v; want stored copy", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after Delete error = %v", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.Set(ctx, "short", []byte("v"), time.Millisecond)
	_ = s.Set(ctx, "long", []byte("v"), time.Hour)
	time.Sleep(5 * time.Millisecond)

	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key error = %v, want not found", err)
	}
	if _, err := s.Get(ctx, "long"); err != nil {
		t.Errorf("Get(long) error = %v", err)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
