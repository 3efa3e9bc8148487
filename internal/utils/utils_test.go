package utils

import (
	"testing"
	"time"
)

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "-"},
		{ptr(0), "Rs. 0.00"},
		{ptr(48000), "Rs. 48,000.00"},
		{ptr(1234567.5), "Rs. 1,234,567.50"},
		{ptr(-40000), "-Rs. 40,000.00"},
	}
	for _, tc := range cases {
		if got := FormatRupees(tc.in); got != tc.want {
			t.Fatalf("FormatRupees(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAppendLine(t *testing.T) {
	if got := AppendLine(nil, "first"); got != "first" {
		t.Fatalf("got %q", got)
	}
	empty := ""
	if got := AppendLine(&empty, "first"); got != "first" {
		t.Fatalf("got %q", got)
	}
	prev := "first"
	if got := AppendLine(&prev, "second"); got != "first\nsecond" {
		t.Fatalf("got %q", got)
	}
}

func TestNilIfBlank(t *testing.T) {
	if NilIfBlank("   ") != nil {
		t.Fatalf("blank should be nil")
	}
	if v := NilIfBlank(" x "); v == nil || *v != "x" {
		t.Fatalf("expected trimmed value, got %v", v)
	}
}

func TestParseTravelDate(t *testing.T) {
	d, err := ParseTravelDate("2025-03-10")
	if err != nil {
		t.Fatalf("date-only: %v", err)
	}
	if FormatDate(d) != "2025-03-10" {
		t.Fatalf("unexpected date %s", FormatDate(d))
	}
	if _, err := ParseTravelDate("2025-03-10T08:00:00Z"); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if _, err := ParseTravelDate("next tuesday"); err == nil {
		t.Fatalf("expected error for free text")
	}
}

func TestFormatDateTime(t *testing.T) {
	if FormatDateTime(nil) != "-" {
		t.Fatalf("nil should print as dash")
	}
	ts := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	if got := FormatDateTime(&ts); got != "2025-03-10 08:30:00 UTC" {
		t.Fatalf("got %q", got)
	}
}

func ptr(v float64) *float64 { return &v }
