package fundamental

import (
	"github.com/guregu/null/v6"

	"github.com/seenimoa/revgrowth/pkg/models"
)

// Window offsets used for growth. YoY assumes gap-free quarterly reporting:
// four positions back is treated as the same quarter last year even when a
// company skipped or restated a quarter.
const (
	offsetPrevQuarter = 1
	offsetYearAgo     = 4
)

// GrowthBetween returns (current - base) / base. It is not computable when
// either operand is missing or the base is zero.
func GrowthBetween(current, base null.Float) models.Growth {
	if !usable(current) || !usable(base) || base.Float64 == 0 {
		return models.NotComputable
	}
	return models.GrowthOf((current.Float64 - base.Float64) / base.Float64)
}

// ComputeGrowth derives QoQ (index 0 vs 1) and YoY (index 0 vs 4) growth
// from a window.
func ComputeGrowth(w models.Window) models.GrowthResult {
	current := w[0].Revenue()
	return models.GrowthResult{
		QoQ: GrowthBetween(current, w[offsetPrevQuarter].Revenue()),
		YoY: GrowthBetween(current, w[offsetYearAgo].Revenue()),
	}
}
