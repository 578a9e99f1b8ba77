package question

import "testing"

func TestLetter_ValidMatchesIndex(t *testing.T) {
	tests := []struct {
		l     Letter
		valid bool
		index int
	}{
		{LetterA, true, 0},
		{LetterD, true, 3},
		{"a", false, -1},
		{"d", false, -1},
		{"E", false, -1},
		{"(B)", false, -1},
		{"", false, -1},
	}
	for _, tt := range tests {
		if got := tt.l.Valid(); got != tt.valid {
			t.Errorf("Letter(%q).Valid() = %v, want %v", tt.l, got, tt.valid)
		}
		if got := tt.l.Index(); got != tt.index {
			t.Errorf("Letter(%q).Index() = %d, want %d", tt.l, got, tt.index)
		}
	}
}

func TestParseLetter(t *testing.T) {
	tests := []struct {
		in   string
		want Letter
		ok   bool
	}{
		{"b", LetterB, true},
		{" C ", LetterC, true},
		{"(D)", LetterD, true},
		{"A.", LetterA, true},
		{"E", "", false},
		{"AB", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLetter(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLetter(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && !got.Valid() {
			t.Errorf("ParseLetter(%q) returned invalid letter %q", tt.in, got)
		}
	}
}
