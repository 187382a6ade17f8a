// Package timecode converts between seconds and the "M:SS" form shown in the
// editor, and clamps time values against a video duration.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime renders seconds as "M:SS" with integer minutes and zero-padded
// seconds. Negative, NaN and infinite inputs render as "0:00".
//
// Example:
//
//	FormatTime(0)     // "0:00"
//	FormatTime(65.9)  // "1:05"
//	FormatTime(3600)  // "60:00"
func FormatTime(seconds float64) string {
	seconds = sanitize(seconds)
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatClock renders seconds as HH:MM:SS.ss for logs and report lines.
func FormatClock(seconds float64) string {
	seconds = sanitize(seconds)
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// ParseTime accepts "M:SS" or a bare number of seconds. Invalid input yields 0;
// callers validate ranges downstream.
func ParseTime(input string) float64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0
	}

	if parts := strings.Split(input, ":"); len(parts) == 2 {
		return sanitize(leadingDigits(parts[0])*60 + leadingDigits(parts[1]))
	}

	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// Clamp bounds value to [lo, hi]. NaN clamps to lo.
func Clamp(value, lo, hi float64) float64 {
	if math.IsNaN(value) || value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// leadingDigits mirrors lenient integer parsing of form fields: "12abc" is 12,
// anything without leading digits is 0. The value is returned as float64 so
// arbitrarily long digit runs neither overflow nor wrap.
func leadingDigits(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return n
}
