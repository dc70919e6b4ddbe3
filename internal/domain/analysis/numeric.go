package analysis

import (
	"strconv"
	"strings"
)

// ParseNumber converts a free-form cell value into a float. Currency
// symbols, spaces and thousand markers are stripped, and the first comma is
// treated as the decimal separator ("R$ 1234,56" -> 1234.56). Anything that
// still fails strict float parsing yields 0 rather than an error, so one
// bad cell never poisons a whole document.
func ParseNumber(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == ',' || r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
