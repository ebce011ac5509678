package fundamental

import (
	"sort"
	"time"

	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

// PeriodsFromHistory turns each snapshot of a history into a Period,
// extracting revenue with RevenueAliases. Order is preserved.
func PeriodsFromHistory(h *models.StatementHistory) []models.Period {
	if h == nil {
		return nil
	}
	periods := make([]models.Period, 0, len(h.Snapshots))
	for _, s := range h.Snapshots {
		periods = append(periods, models.Period{
			EndDate: s.EndDate,
			Revenue: ExtractRevenue(s.LineItems),
		})
	}
	return periods
}

// SelectWindow keeps the periods ending on or before cutoff, orders them
// most recent first and returns the first models.WindowSize of them.
// Positions past the available history are left absent. Periods with a
// zero end date are ignored. Duplicated dates are kept as-is; ties keep
// their input order.
func SelectWindow(periods []models.Period, cutoff time.Time) models.Window {
	cutoff = utils.NormalizeDate(cutoff)

	eligible := make([]models.Period, 0, len(periods))
	for _, p := range periods {
		if p.EndDate.IsZero() {
			continue
		}
		p.EndDate = utils.NormalizeDate(p.EndDate)
		if p.EndDate.After(cutoff) {
			continue
		}
		eligible = append(eligible, p)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].EndDate.After(eligible[j].EndDate)
	})

	var w models.Window
	for i := 0; i < len(w) && i < len(eligible); i++ {
		w[i] = models.Slot{Present: true, Period: eligible[i]}
	}
	return w
}
