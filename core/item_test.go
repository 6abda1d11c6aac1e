package core

import (
	"errors"
	"testing"
)

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr bool
	}{
		{"ok", []Item{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}, false},
		{"empty", nil, false},
		{"empty title", []Item{{ID: "1", Title: ""}}, true},
		{"duplicate title", []Item{{ID: "1", Title: "A"}, {ID: "2", Title: "A"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog(tt.items)
			if tt.wantErr {
				if !IsInvalidInput(err) {
					t.Fatalf("NewCatalog() error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewCatalog() error = %v", err)
			}
			if c.Len() != len(tt.items) {
				t.Errorf("Len() = %d, want %d", c.Len(), len(tt.items))
			}
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	c, err := NewCatalog([]Item{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}})
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := c.IndexOf("B"); !ok || i != 1 {
		t.Errorf("IndexOf(B) = %d, %v", i, ok)
	}
	it, err := c.Lookup("A")
	if err != nil || it.ID != "1" {
		t.Errorf("Lookup(A) = %+v, %v", it, err)
	}
	_, err = c.Lookup("missing")
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrItemNotFound", err)
	}
}

func TestCatalogIsolation(t *testing.T) {
	items := []Item{{ID: "1", Title: "A"}}
	c, _ := NewCatalog(items)
	items[0].Title = "changed"
	if c.At(0).Title != "A" {
		t.Errorf("catalog shares backing array with caller")
	}
	out := c.Items()
	out[0].Title = "changed"
	if c.At(0).Title != "A" {
		t.Errorf("Items() exposes internal slice")
	}
}

func TestGenreSet(t *testing.T) {
	it := Item{Genres: []string{"Action", " Drama ", "Action", ""}}
	set := it.GenreSet()
	if len(set) != 2 {
		t.Fatalf("GenreSet() size = %d, want 2", len(set))
	}
	for _, g := range []string{"Action", "Drama"} {
		if _, ok := set[g]; !ok {
			t.Errorf("GenreSet() missing %q", g)
		}
	}
	if got := (Item{Genres: []string{"Action", "Drama"}}).JoinedGenres(); got != "Action, Drama" {
		t.Errorf("JoinedGenres() = %q", got)
	}
}
