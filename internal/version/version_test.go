package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"1.2.3", Version{1, 2, 3}},
		{"0.0.0", Version{0, 0, 0}},
		{"v2.10.0", Version{2, 10, 0}},
		{" 1.0.0 ", Version{1, 0, 0}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "1", "1.2", "1.2.x", "a.b.c", "-1.0.0", "1.2.3.4"} {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q) should fail", in)
			continue
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Parse(%q) error = %T, want *ParseError", in, err)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want Ordering
	}{
		{"1.2.3", "1.3.0", Older},
		{"1.3.0", "1.2.3", Newer},
		{"1.2.3", "1.2.3", Equal},
		{"2.0.0", "1.99.99", Newer},
		{"0.1.0", "0.1.1", Older},
	}

	for _, tt := range tests {
		got := Compare(MustParse(tt.a), MustParse(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		old, new string
		want     Delta
	}{
		{"1.2.0", "1.2.1", DeltaPatch},
		{"1.2.0", "1.3.0", DeltaMinor},
		{"1.2.0", "2.0.0", DeltaMajor},
		{"1.2.0", "1.2.0", DeltaNone},
		{"2.0.0", "1.9.0", DeltaDowngrade},
		{"1.2.1", "1.2.0", DeltaDowngrade},
	}

	for _, tt := range tests {
		got := Classify(MustParse(tt.old), MustParse(tt.new))
		if got != tt.want {
			t.Errorf("Classify(%s, %s) = %v, want %v", tt.old, tt.new, got, tt.want)
		}
	}
}
