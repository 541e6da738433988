package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var emptyNumbers = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"n/a":  true,
	"na":   true,
	"none": true,
	"null": true,
	"—":    true,
}

var numberNoise = strings.NewReplacer(",", "", " ", "", "_", "", "$", "", "€", "", "£", "", "%", "", "+", "")

// ParseNumber accepts the number formats partners export: thousands separators, currency
// and percent signs and K/M/B magnitude suffixes. Placeholders such as "-" or "N/A" are 0.
func ParseNumber(raw string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if emptyNumbers[s] {
		return 0, nil
	}
	s = numberNoise.Replace(s)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = 1e3
	case strings.HasSuffix(s, "m"):
		multiplier = 1e6
	case strings.HasSuffix(s, "b"):
		multiplier = 1e9
	}
	if multiplier != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v * multiplier, nil
}
