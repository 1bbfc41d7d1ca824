package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

const minCoordinateDecimals = 6

// FormatCoordinate renders a coordinate for display with no fewer than six
// decimal digits, keeping extra precision when the value carries it.
func FormatCoordinate(v float64) string {
	d := decimal.NewFromFloat(v)
	s := d.String()
	if dot := strings.IndexByte(s, '.'); dot >= 0 && len(s)-dot-1 >= minCoordinateDecimals {
		return s
	}
	return d.StringFixed(minCoordinateDecimals)
}
