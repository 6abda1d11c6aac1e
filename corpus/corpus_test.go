package corpus

import (
	"testing"

	"github.com/rushteam/animerec/core"
)

func TestBuildDocument(t *testing.T) {
	tests := []struct {
		name string
		item core.Item
		want string
	}{
		{
			name: "all fields",
			item: core.Item{Title: "One Piece", Genres: []string{"Action", "Adventure"}, Description: "pirates"},
			want: "One Piece Action, Adventure pirates",
		},
		{
			name: "no genres",
			item: core.Item{Title: "A", Description: "hero fights"},
			want: "A  hero fights",
		},
		{
			name: "missing description",
			item: core.Item{Title: "A", Genres: []string{"Action"}},
			want: "A Action ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDocument(tt.item)
			if got != tt.want {
				t.Errorf("BuildDocument() = %q, want %q", got, tt.want)
			}
			if again := BuildDocument(tt.item); again != got {
				t.Errorf("BuildDocument() not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestBuildCorpus(t *testing.T) {
	c, err := core.NewCatalog([]core.Item{
		{ID: "1", Title: "A", Genres: []string{"Action"}, Description: "x"},
		{ID: "2", Title: "B"},
	})
	if err != nil {
		t.Fatal(err)
	}
	docs := BuildCorpus(c)
	if len(docs) != 2 || docs[0] != "A Action x" || docs[1] != "B  " {
		t.Errorf("BuildCorpus() = %q", docs)
	}
}
