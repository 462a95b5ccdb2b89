package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatSeconds renders seconds with the shortest decimal form that
// round-trips, so offsets reach ffmpeg exactly as computed
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// ParseSeconds parses a duration in seconds as printed by ffprobe.
// The value must be finite and strictly positive.
func ParseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("duration %q is not a finite positive number", s)
	}
	return v, nil
}
