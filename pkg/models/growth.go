package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// NotComputableLabel is how a not-computable growth figure is rendered.
const NotComputableLabel = "N/A"

// Growth is a growth ratio that is either computable or explicitly not
// computable. The zero value is not computable, which keeps it distinct
// from a computed growth of exactly zero.
type Growth struct {
	ratio      float64
	computable bool
}

// NotComputable is the growth value used when an operand is missing or the
// base is zero.
var NotComputable = Growth{}

// GrowthOf wraps a computed ratio (0.1 means +10%). Non-finite ratios are
// reported as not computable.
func GrowthOf(ratio float64) Growth {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return NotComputable
	}
	return Growth{ratio: ratio, computable: true}
}

// Computable reports whether the growth could be computed.
func (g Growth) Computable() bool { return g.computable }

// Ratio returns the raw ratio and whether it is computable.
func (g Growth) Ratio() (float64, bool) { return g.ratio, g.computable }

// String renders the growth as a signed percentage with two decimals,
// e.g. "+12.34%", or "N/A" when not computable.
func (g Growth) String() string {
	if !g.computable {
		return NotComputableLabel
	}
	return fmt.Sprintf("%+.2f%%", g.ratio*100)
}

// MarshalJSON encodes the growth in its rendered form.
func (g Growth) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}
