package name

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "b2b split with annotation",
			input: []string{"Artist A b2b Artist B (Sunrise Set)", "artist a"},
			want:  []string{"Artist A", "Artist B"},
		},
		{
			name:  "uppercase marker",
			input: []string{"Solomun B2B Dixon"},
			want:  []string{"Solomun", "Dixon"},
		},
		{
			name:  "annotation stripped",
			input: []string{"Four Tet (DJ Set)"},
			want:  []string{"Four Tet"},
		},
		{
			name:  "case-insensitive dedupe keeps first casing",
			input: []string{"Bicep", "BICEP", "bicep"},
			want:  []string{"Bicep"},
		},
		{
			name:  "empty pieces dropped",
			input: []string{"(Live)", ""},
			want:  []string{},
		},
		{
			name:  "plain names pass through",
			input: []string{"Fred again..", "Jamie xx"},
			want:  []string{"Fred again..", "Jamie xx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	if Key("  Daft Punk ") != "daft punk" {
		t.Errorf("Key: got %q", Key("  Daft Punk "))
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	got := Dedupe([]string{"B", "A", "b", "C", "a"})
	want := []string{"B", "A", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}
