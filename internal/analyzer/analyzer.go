package analyzer

import (
	"sort"
	"time"

	"spikewatch/internal/measurement"
)

// Baselines expire after ten minutes, fixing the comparison horizon for
// every detector. An existing baseline is never refreshed on a trigger.
const baselineTTL = 10 * time.Minute

// groupByCode splits a batch into per-instrument slices, each sorted
// chronologically.
func groupByCode[T measurement.Measurement](batch []T) map[string][]T {
	grouped := make(map[string][]T)
	for _, m := range batch {
		code := m.MeasurementCode()
		grouped[code] = append(grouped[code], m)
	}
	for _, ms := range grouped {
		sort.SliceStable(ms, func(i, j int) bool {
			return ms[i].MeasurementTime().Before(ms[j].MeasurementTime())
		})
	}
	return grouped
}
