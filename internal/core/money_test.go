package core

import "testing"

func TestParseYen(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"3,000", 3000},
		{"2000", 2000},
		{"-1,200", 1200},
		{"+45", 45},
		{" 980 ", 980},
		{"980.5", 980},
		{"12abc", 12},
		{"¥500", 0},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{"1,234,567", 1234567},
		{"99999999999999999999", 0}, // overflow
	}
	for _, tc := range cases {
		if got := ParseYen(tc.in); got != tc.out {
			t.Fatalf("ParseYen(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestParseYenInput(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"12000", 12000},
		{"12,000円", 12000},
		{"¥1 000", 1000},
		{"-500", 500},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := ParseYenInput(tc.in); got != tc.out {
			t.Fatalf("ParseYenInput(%q) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestHalfFloors(t *testing.T) {
	cases := []struct{ in, out int64 }{
		{0, 0}, {1, 0}, {3, 1}, {3001, 1500}, {-1, -1}, {-3, -2},
	}
	for _, tc := range cases {
		if got := Half(tc.in); got != tc.out {
			t.Fatalf("Half(%d) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestFormatYen(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "¥0"},
		{999, "¥999"},
		{1000, "¥1,000"},
		{43500, "¥43,500"},
		{1234567, "¥1,234,567"},
		{-2500, "-¥2,500"},
	}
	for _, tc := range cases {
		if got := FormatYen(tc.in); got != tc.out {
			t.Fatalf("FormatYen(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
