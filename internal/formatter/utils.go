package formatter

import (
	"math"

	"github.com/yildizm/qupid/internal/presentation"
)

// paramScale is the upper bound of the service's parameter scores
const paramScale = 100.0

// barFraction maps a numeric row onto 0..1 for a bar, or false when the
// row is not numeric.
func barFraction(row presentation.Row) (float64, bool) {
	v, ok := row.Number()
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	f := v / paramScale
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return f, true
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
