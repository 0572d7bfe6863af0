package parking

import (
	"math"
	"time"
)

// CalcTotalPrice bills a time span at an hourly rate. Any partial hour is
// billed as a full hour, so a one-minute reservation costs one billable
// hour; spans landing exactly on an hour boundary are not rounded past it.
// Validation rejects end <= start before this runs.
func CalcTotalPrice(start time.Time, end time.Time, pricePerHour float64) float64 {
	hours := end.Sub(start).Hours()
	billableHours := math.Ceil(hours)
	return billableHours * pricePerHour
}
