package models

import "testing"

func TestLetterForPercentage(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, "A"},
		{90, "A"},
		{89.999, "B"},
		{80, "B"},
		{79.5, "C"},
		{70, "C"},
		{69.999, "D"},
		{50, "D"},
		{0, "D"},
	}
	for _, tc := range cases {
		if got := LetterForPercentage(tc.pct); got != tc.want {
			t.Errorf("LetterForPercentage(%v) = %q, want %q", tc.pct, got, tc.want)
		}
	}
}
