package parser

import "testing"

func TestParseMonth(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"May":          5,
		"may":          5,
		"DECEMBER":     12,
		"Jan":          1,
		" sept ":       9,
		"Sep 2024":     9,
		"5":            5,
		"12":           12,
		"3/1/2024":     3,
		"2024-07":      7,
		"2024-07-01":   7,
		"Audit: March": 3,
	}
	for in, want := range cases {
		got, ok := ParseMonth(in)
		if !ok || got != want {
			t.Fatalf("ParseMonth(%q)=%d,%v want %d", in, got, ok, want)
		}
	}

	for _, in := range []string{"", "13", "0", "4.5", "mayday", "n/a"} {
		if got, ok := ParseMonth(in); ok {
			t.Fatalf("ParseMonth(%q)=%d, want not ok", in, got)
		}
	}
}

func TestExtractYear(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"May 2024":  2024,
		"2023-11":   2023,
		"3/1/2024":  2024,
		"3/1/24":    2024,
		"May-24":    2024,
		"FY 2022 Q": 2022,
	}
	for in, want := range cases {
		got, ok := ExtractYear(in)
		if !ok || got != want {
			t.Fatalf("ExtractYear(%q)=%d,%v want %d", in, got, ok, want)
		}
	}
	if y, ok := ExtractYear("May"); ok {
		t.Fatalf("ExtractYear(May)=%d, want not ok", y)
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	if v, ok := ParseNumber(" 1,250.5 "); !ok || v != 1250.5 {
		t.Fatalf("ParseNumber=%v,%v", v, ok)
	}
	for _, in := range []string{"", "abc", "NaN", "Inf", "y=1"} {
		if _, ok := ParseNumber(in); ok {
			t.Fatalf("ParseNumber(%q) should fail", in)
		}
	}
}
