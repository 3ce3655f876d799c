package monitor

import (
	"fmt"

	"github.com/cyberpwnn/SmoothieMap/stats"
)

const (
	// maxAccountedSkewLevel is the highest skewness level the monitor
	// keeps separate stats for; splits more skewed than this still
	// increment this level's counter, they just aren't distinguished
	// from it.
	maxAccountedSkewLevel = 3
	// halfPhysicalSlots is half of a segment's physical hash table slot
	// count (64 slots in two halves of 32), not half of the 48-key
	// allocation budget those slots hold at a 0.75 load factor (24).
	halfPhysicalSlots = 32
	// minAccountedKeysForHalf is the fewest keys a hash table half can
	// have landed in before the monitor starts accounting its skewness
	// level at all: halfPhysicalSlots - maxAccountedSkewLevel.
	minAccountedKeysForHalf = halfPhysicalSlots - maxAccountedSkewLevel
)

func newSkewStats() []skewStat {
	return make([]skewStat, maxAccountedSkewLevel+1)
}

// AverageSegmentOrderUpdated must be called once, by the host, every time
// its cached average segment order changes. It rotates the "current" and
// "next" generations of split statistics to track the new average order.
func (m *Monitor) AverageSegmentOrderUpdated(averageSegmentOrderPrevComputed, newAverageSegmentOrder int) error {
	if m.hasReportedTooManySkewed {
		return nil
	}
	switch newAverageSegmentOrder - averageSegmentOrderPrevComputed {
	case 1:
		m.rotateStatsOneOrderForward()
	case -1:
		m.rotateStatsOneOrderBackward()
	default:
		if newAverageSegmentOrder-averageSegmentOrderPrevComputed < -1 {
			m.rotateStatsSeveralOrdersBackward()
			return nil
		}
		return illegalStateErrorf(
			"unexpected change of average segment order: previously computed = %d, newly computed = %d",
			averageSegmentOrderPrevComputed, newAverageSegmentOrder)
	}
	return nil
}

// rotateStatsOneOrderForward makes "next" the new "current" and zeroes
// "next", for when the map's average segment order grows by one.
func (m *Monitor) rotateStatsOneOrderForward() {
	m.numSplitsToCurrent = m.numSplitsToNext
	m.numSplitsToNext = 0
	tmp := m.skewStatsToCurrent
	m.skewStatsToCurrent = m.skewStatsToNext
	zeroSkewStats(tmp)
	m.skewStatsToNext = tmp
}

// rotateStatsOneOrderBackward makes "current" the new "next" and zeroes
// "current", for when the map's average segment order shrinks by one.
func (m *Monitor) rotateStatsOneOrderBackward() {
	m.numSplitsToNext = m.numSplitsToCurrent
	m.numSplitsToCurrent = 0
	tmp := m.skewStatsToNext
	m.skewStatsToNext = m.skewStatsToCurrent
	zeroSkewStats(tmp)
	m.skewStatsToCurrent = tmp
}

// rotateStatsSeveralOrdersBackward zeroes both generations: the map shrank
// by more than one order since the last update, so neither generation's
// stats describe splits to either the new current or next order.
func (m *Monitor) rotateStatsSeveralOrdersBackward() {
	m.numSplitsToCurrent = 0
	m.numSplitsToNext = 0
	zeroSkewStats(m.skewStatsToCurrent)
	zeroSkewStats(m.skewStatsToNext)
}

func zeroSkewStats(s []skewStat) {
	for i := range s {
		s[i] = skewStat{}
	}
}

// AccountSegmentSplit must be called by the host after every completed
// segment split. mapRef is attached to any TooManySkewedSegmentSplits
// occasion this call produces, the way CheckAndReportTooLargeInflatedSegment
// attaches it to inflated-segment occasions. priorSegmentOrder is the order
// of the segment that was split; numKeysHalf1 and totalNumKeysBeforeSplit
// describe how its keys distributed across the split.
func (m *Monitor) AccountSegmentSplit(host Host, mapRef any, priorSegmentOrder, numKeysHalf1, totalNumKeysBeforeSplit int) error {
	if m.hasReportedTooManySkewed {
		return nil
	}

	numKeysHalf2 := totalNumKeysBeforeSplit - numKeysHalf1
	maxKeysForHalf := max(numKeysHalf1, numKeysHalf2)

	averageSegmentOrderLastComputed := host.AverageSegmentOrderLastComputed()
	var numSplitsToNewOrder int
	var skewStats []skewStat

	switch {
	case priorSegmentOrder == averageSegmentOrderLastComputed-1:
		m.numSplitsToCurrent++
		numSplitsToNewOrder = m.numSplitsToCurrent
		if maxKeysForHalf < minAccountedKeysForHalf {
			return nil
		}
		if m.skewStatsToCurrent == nil {
			m.skewStatsToCurrent = newSkewStats()
		}
		skewStats = m.skewStatsToCurrent

	case priorSegmentOrder == averageSegmentOrderLastComputed:
		m.numSplitsToNext++
		numSplitsToNewOrder = m.numSplitsToNext
		if maxKeysForHalf < minAccountedKeysForHalf {
			return nil
		}
		if m.skewStatsToNext == nil {
			m.skewStatsToNext = newSkewStats()
		}
		skewStats = m.skewStatsToNext

	default:
		if priorSegmentOrder > host.MaxSplittableSegmentOrder(averageSegmentOrderLastComputed) {
			return concurrentModificationErrorf(
				"prior segment order %d exceeds max splittable segment order for average order %d: "+
					"this cannot be an ordinary segment split without concurrent modification of the map",
				priorSegmentOrder, averageSegmentOrderLastComputed)
		}
		// An ordinary, rare split of a segment more than one order
		// behind the average; not accounted.
		return nil
	}

	m.doAccountSkewedSegmentSplit(host, mapRef, priorSegmentOrder, numSplitsToNewOrder, maxKeysForHalf, skewStats)
	return nil
}

func (m *Monitor) doAccountSkewedSegmentSplit(host Host, mapRef any, priorSegmentOrder, totalNumSplitsFromOrder,
	maxKeysForHalf int, skewStats []skewStat) {
	skewnessLevel := maxAccountedSkewLevel - max(0, halfPhysicalSlots-maxKeysForHalf)

	for ; skewnessLevel >= 0; skewnessLevel-- {
		stat := &skewStats[skewnessLevel]
		stat.count++

		// 1) Cheap bound check against a previously computed bound.
		if stat.count <= stat.maxNonReportedLastComputed {
			continue
		}

		// 2) Conservative bound from the closed-form skewness
		// probability.
		lowerBound := int(stats.PSkew[skewnessLevel] * float64(totalNumSplitsFromOrder))
		if stat.count <= lowerBound {
			stat.maxNonReportedLastComputed = lowerBound
			continue
		}

		// 3) Precise bound via the binomial inverse CDF, tightening
		// monotonically from whichever of the two previous bounds is
		// larger.
		prevBound := max(stat.maxNonReportedLastComputed, lowerBound)
		var preciseBound int
		if totalNumSplitsFromOrder <= stats.MaxSplitsWithPrecomputedCDF {
			preciseBound = stats.InverseCDFFromTable(
				skewnessLevel, totalNumSplitsFromOrder, m.minReportingProb, prevBound)
		} else {
			preciseBound = stats.InverseCDFApproximate(
				totalNumSplitsFromOrder, stats.PSkew[skewnessLevel], m.minReportingProb)
		}
		if stat.count <= preciseBound {
			stat.maxNonReportedLastComputed = preciseBound
			continue
		}

		m.reportTooManySkewedSegmentSplits(host, mapRef, priorSegmentOrder, totalNumSplitsFromOrder,
			skewnessLevel, stat.count)
		return
	}
}

func (m *Monitor) reportTooManySkewedSegmentSplits(host Host, mapRef any, priorSegmentOrder, totalNumSplitsFromOrder,
	skewnessLevel, numSkewedSplits int) {
	m.hasReportedTooManySkewed = true

	message := fmt.Sprintf(
		"There have been %d \"skewed\" splits of segments of order %d in this map.\n"+
			"The probability of this (assuming the hash function distributes keys perfectly well) "+
			"is below the configured threshold %v.\nThis suggests a correlation between a bit used "+
			"to choose a segment's hash table half and one of the bits used to look up its segment, "+
			"or a combination of such bits.",
		numSkewedSplits, priorSegmentOrder, m.minReportingProb)

	debugInfo := func() DebugInfo {
		skewnessProb := stats.PSkew[skewnessLevel]
		skewnessDistribution := stats.NewBinomial(totalNumSplitsFromOrder, skewnessProb)
		occasionProbability := skewnessDistribution.CCDF(numSkewedSplits - 1)
		return DebugInfo{
			{Key: "skewnessLevel", Value: skewnessLevel},
			{Key: "priorSegmentOrder", Value: priorSegmentOrder},
			{Key: "totalNumSplitsFromOrder", Value: totalNumSplitsFromOrder},
			{Key: "occasionProbabilityRepr", Value: fmt.Sprintf("CCDF[Binomial(%d, %v), %d]", totalNumSplitsFromOrder, skewnessProb, numSkewedSplits-1)},
			{Key: "occasionProbability", Value: occasionProbability},
			{Key: "averageSegmentOrderLastComputed", Value: host.AverageSegmentOrderLastComputed()},
			{Key: "numSplitsToCurrent", Value: m.numSplitsToCurrent},
			{Key: "numSplitsToNext", Value: m.numSplitsToNext},
		}
	}

	occasion := newOccasion(TooManySkewedSegmentSplits, mapRef, message, debugInfo, nil, nil)
	m.report(occasion)
}
