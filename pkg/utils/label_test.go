package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "content", Source: "recall"}, Label{Value: "content", Source: "recall"}},
		{"empty incoming", Label{Value: "content", Source: "recall"}, Label{}, Label{Value: "content", Source: "recall"}},
		{"accumulate", Label{Value: "content", Source: "recall"}, Label{Value: "expr", Source: "filter"}, Label{Value: "content|expr", Source: "recall,filter"}},
		{"missing source", Label{Value: "a"}, Label{Value: "b", Source: "rerank"}, Label{Value: "a|b", Source: "rerank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
