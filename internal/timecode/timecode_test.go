package timecode

import (
	"math"
	"strings"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "under a minute", seconds: 9.9, want: "0:09"},
		{name: "minute and change", seconds: 65.4, want: "1:05"},
		{name: "two forty five", seconds: 165, want: "2:45"},
		{name: "hour keeps minutes", seconds: 3600, want: "60:00"},
		{name: "negative", seconds: -12, want: "0:00"},
		{name: "nan", seconds: math.NaN(), want: "0:00"},
		{name: "inf", seconds: math.Inf(1), want: "0:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTime(tc.seconds); got != tc.want {
				t.Fatalf("FormatTime(%v) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "minutes seconds", input: "2:45", want: 165},
		{name: "zero padded", input: "0:05", want: 5},
		{name: "bare number", input: "12.5", want: 12.5},
		{name: "whitespace", input: "  1:00 ", want: 60},
		{name: "empty", input: "", want: 0},
		{name: "garbage", input: "abc", want: 0},
		{name: "partial garbage", input: "x:30", want: 30},
		{name: "negative number", input: "-4", want: 0},
		{name: "too many parts", input: "1:02:03", want: 0},
		{name: "huge minutes", input: "999999999999999999:00", want: 6e19},
		{name: "huge seconds", input: "0:999999999999999999", want: 1e18},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseTime(tc.input); got != tc.want {
				t.Fatalf("ParseTime(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseTime_LongDigitRuns(t *testing.T) {
	got := ParseTime(strings.Repeat("9", 40) + ":30")
	if math.IsInf(got, 0) || math.IsNaN(got) || got < 1e40 {
		t.Fatalf("ParseTime(40 digit minutes) = %v, want a large finite value", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []float64{0, 1, 59, 60, 61, 165, 599} {
		if got := ParseTime(FormatTime(s)); got != s {
			t.Fatalf("round trip of %v = %v", s, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Fatalf("Clamp in range = %v", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Fatalf("Clamp below = %v", got)
	}
	if got := Clamp(11, 0, 10); got != 10 {
		t.Fatalf("Clamp above = %v", got)
	}
	if got := Clamp(math.NaN(), 2, 10); got != 2 {
		t.Fatalf("Clamp NaN = %v", got)
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(3661.5); got != "01:01:01.50" {
		t.Fatalf("FormatClock = %q", got)
	}
	if got := FormatClock(-3); got != "00:00:00.00" {
		t.Fatalf("FormatClock negative = %q", got)
	}
}
