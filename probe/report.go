package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// PercentOf returns 100*num/den, or 0 when den is 0.
func PercentOf(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return 100 * float64(num) / float64(den)
}

// NamedCounts pairs a column label with the per-order counts it reports.
// It is exported so package mapstats can build the same kind of table over
// its own (order-keyed, rather than metric-value-keyed) data.
type NamedCounts struct {
	Name   string
	Counts []int64
}

// AppendNonZeroOrderedCountsWithPercentiles renders one line per order in
// [0, len(counts[*].Counts)) that has a nonzero count in at least one
// column, skipping all-zero rows entirely. Each column shows its raw count,
// its percentage of that column's total, and a running cumulative
// percentage, all aligned to fixed widths so the table reads cleanly.
func AppendNonZeroOrderedCountsWithPercentiles(sb *strings.Builder, orderPrefix string, counts []NamedCounts) {
	maxOrderExclusive := len(counts[0].Counts)
	maxOrderWidth := len(strconv.Itoa(maxOrderExclusive - 1))

	totals := make([]int64, len(counts))
	maxCounts := make([]int64, len(counts))
	for i, c := range counts {
		for _, v := range c.Counts {
			totals[i] += v
			if v > maxCounts[i] {
				maxCounts[i] = v
			}
		}
	}
	countWidths := make([]int, len(counts))
	for i, m := range maxCounts {
		countWidths[i] = len(strconv.FormatInt(m, 10))
	}

	running := make([]int64, len(counts))
	for order := 0; order < maxOrderExclusive; order++ {
		allZero := true
		for _, c := range counts {
			if c.Counts[order] != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}

		fmt.Fprintf(sb, "%s %*d:", orderPrefix, maxOrderWidth, order)
		for i, c := range counts {
			v := c.Counts[order]
			running[i] += v
			fmt.Fprintf(sb, " %*d %s, %6.2f%% %6.2f%%",
				countWidths[i], v, c.Name, PercentOf(v, totals[i]), PercentOf(running[i], totals[i]))
		}
		sb.WriteByte('\n')
	}
}

// Report renders s as a human-readable, multi-section diagnostic, in the
// style of the other textual reports in this module.
func (s *Stats) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Number of segments: %d\n", s.numAggregatedSegments)

	allocCaps := make([]int64, len(s.numAggregatedSegmentsPerAllocCap))
	copy(allocCaps, s.numAggregatedSegmentsPerAllocCap[:])
	AppendNonZeroOrderedCountsWithPercentiles(&sb, "segments with alloc capacity =",
		[]NamedCounts{{Name: "segments", Counts: allocCaps}})

	var averageFullSlots float64
	if s.numAggregatedSegments != 0 {
		averageFullSlots = float64(s.numAggregatedFullSlots) / float64(s.numAggregatedSegments)
	}
	fmt.Fprintf(&sb, "Average full slots: %.2f\n", averageFullSlots)

	s.appendSlotMetricStats(&sb, s.numSlotsPerCollisionChainGroupLen[:], "collision chain group length")
	s.appendSlotMetricStats(&sb, s.numSlotsPerNumCollisionKeyCompares[:], "num collision key comparisons")
	s.appendSlotMetricStats(&sb, s.numSlotsPerDistanceToAllocBoundary[:], "distance to alloc index boundary")
	return sb.String()
}

func (s *Stats) appendSlotMetricStats(sb *strings.Builder, numSlotsPerMetric []int64, metricName string) {
	var totalMetricSum int64
	for metricValue, numSlots := range numSlotsPerMetric {
		totalMetricSum += numSlots * int64(metricValue)
	}
	var averageMetricValue float64
	if s.numAggregatedFullSlots != 0 {
		averageMetricValue = float64(totalMetricSum) / float64(s.numAggregatedFullSlots)
	}
	fmt.Fprintf(sb, "Average %s: %.2f\n", metricName, averageMetricValue)

	counts := make([]int64, len(numSlotsPerMetric))
	copy(counts, numSlotsPerMetric)
	AppendNonZeroOrderedCountsWithPercentiles(sb, metricName+" =", []NamedCounts{{Name: "slots", Counts: counts}})
}
