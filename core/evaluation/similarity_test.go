package evaluation

import (
	"math"
	"strings"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", `x^2`, `x^2`, 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"disjoint", "a", "b", 0.0},
		{"shifted", "abcd", "bcde", 0.75},
		{"one token differs", `\frac{a}{b}`, `\frac{a}{c}`, 20.0 / 22.0},
		{"whitespace inside", "x^2 + y^2", "x^2+y^2", 0.875},
		{"case and padding", "  \\ALPHA ", `\alpha`, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Similarity(%q, %q): expected %v, got %v", tt.a, tt.b, tt.want, got)
			}
		})
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := `\sum_{i=1}^{n} i`, `\sum_{i=0}^{n} i^2`
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("expected the same score in both directions for %q and %q", a, b)
	}
}

func TestSimilarity_LongSequences(t *testing.T) {
	long := strings.Repeat(`\alpha + `, 40)
	if got := Similarity(long, long); got != 1.0 {
		t.Fatalf("expected identical long strings to score 1, got %v", got)
	}
	if got := Similarity(long, long+"x"); math.Abs(got-720.0/721.0) > 1e-9 {
		t.Fatalf("expected 720/721, got %v", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1, "100.0%"},
		{0.875, "87.5%"},
		{0, "0.0%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.score); got != tt.want {
			t.Fatalf("Percent(%v): expected %s, got %s", tt.score, tt.want, got)
		}
	}
}
