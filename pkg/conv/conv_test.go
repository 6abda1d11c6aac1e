package conv

import (
	"reflect"
	"testing"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{8.5, 8.5, true},
		{float32(2.5), 2.5, true},
		{42, 42, true},
		{int64(7), 7, true},
		{uint64(3), 3, true},
		{" 7.25 ", 7.25, true},
		{"N/A", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ToFloat64(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{12, 12, true},
		{float64(1200), 1200, true},
		{8.5, 0, false},
		{"26", 26, true},
		{"26 eps", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToInt64(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ToInt64(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStrings(t *testing.T) {
	got := Strings([]any{"Action", 1, "Drama", nil})
	if want := []string{"Action", "Drama"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
	if Strings(nil) != nil {
		t.Error("Strings(nil) != nil")
	}
}
