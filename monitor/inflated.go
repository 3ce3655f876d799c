package monitor

import (
	"fmt"
	"math"

	"github.com/cyberpwnn/SmoothieMap/stats"
)

// compareNormalizedSegmentSizes compares two segment sizes as if both
// segments were virtually normalized to the same order, without losing
// precision to division: returns a value whose sign matches
// size1/2^order1 compared to size2/2^order2.
func compareNormalizedSegmentSizes(size1, order1, size2, order2 int) int64 {
	normalizedSize1 := int64(size1) << uint(max(order2-order1, 0))
	normalizedSize2 := int64(size2) << uint(max(order1-order2, 0))
	return normalizedSize1 - normalizedSize2
}

// CheckAndReportTooLargeInflatedSegment is called whenever an insertion
// touches an inflated segment. It is cheap on the common path (no report
// due) and only falls into the expensive statistical recomputation when the
// cached threshold might be stale. Once a reporting callback has declined to
// remove the offending element (see IsReportingTooLargeInflatedSegment), it
// does nothing.
func (m *Monitor) CheckAndReportTooLargeInflatedSegment(host Host, mapRef any,
	inflatedSegmentOrder int, inflatedSegment InflatedSegment, mapSize int64,
	inflatedSegmentSize int, excludedKeyHash uint64, excludedKey any) error {
	if !m.reportTooLargeInflated {
		return nil
	}
	distributionMightBePoor := mapSize < m.minMapSizeForWhichCacheValid ||
		compareNormalizedSegmentSizes(inflatedSegmentSize, inflatedSegmentOrder,
			m.segmentSizeMaxNonReportedLastComputed,
			m.lastSegmentOrderForWhichMaxNonReportedSizeIsComputed) > 0
	if !distributionMightBePoor {
		return nil
	}

	averageSegmentOrder := host.ComputeAverageSegmentOrder(mapSize)
	// Important that trySplit is attempted after computing the average
	// order above: that call may have updated the host's cache, and we
	// must not decide an inflated segment looks too large based on a
	// stale average.
	if inflatedSegment.TrySplit(inflatedSegmentOrder, excludedKeyHash) {
		return nil
	}

	return m.checkAndReportTooLargeInflatedSegment0(mapRef, mapSize, averageSegmentOrder,
		inflatedSegment, inflatedSegmentSize, inflatedSegmentOrder, excludedKey)
}

func (m *Monitor) checkAndReportTooLargeInflatedSegment0(mapRef any, mapSize int64,
	averageSegmentOrder int, inflatedSegment InflatedSegment, segmentSize, segmentOrder int,
	excludedKey any) error {
	// A "virtual segment" may not exist in reality: there may be one
	// coarser segment instead of two virtual ones, or two finer segments
	// instead of one. It is just a hash-code basket for this statistical
	// model.
	numVirtualSegments := 1 << uint(averageSegmentOrder)
	averageVirtualSegmentSize := float64(mapSize) / float64(numVirtualSegments)
	segmentSizeDistribution := stats.NewPoisson(averageVirtualSegmentSize)

	// Assuming virtual segments are independent (they are not, exactly,
	// since they all draw from the same pool of mapSize keys, but the
	// dependency is negligible for this purpose), the threshold k is chosen
	// so that
	//   P[every virtual segment holds at most k keys] = P[virtual segment <= k]^V = minReportingProb
	tooLargeVirtualSegmentMinReportingProb := math.Pow(float64(m.minReportingProb), 1.0/float64(numVirtualSegments))
	virtualSegmentMaxNonReportedSize := segmentSizeDistribution.InverseCDF(tooLargeVirtualSegmentMinReportingProb)

	m.segmentSizeMaxNonReportedLastComputed = virtualSegmentMaxNonReportedSize
	m.lastSegmentOrderForWhichMaxNonReportedSizeIsComputed = segmentOrder

	maxAverageSegmentSizeForWhichCacheIsInvalid := stats.MeanByCDF(
		virtualSegmentMaxNonReportedSize-1, tooLargeVirtualSegmentMinReportingProb)
	m.minMapSizeForWhichCacheValid = int64(math.Ceil(
		maxAverageSegmentSizeForWhichCacheIsInvalid * float64(numVirtualSegments)))

	if m.minMapSizeForWhichCacheValid > mapSize {
		return assertionErrorf(
			"minReportingProb=%v mapSize=%d segmentSize=%d segmentOrder=%d: "+
				"computed minMapSizeForWhichCacheValid=%d exceeds mapSize",
			m.minReportingProb, mapSize, segmentSize, segmentOrder, m.minMapSizeForWhichCacheValid)
	}
	// There is no confidence in the precision of stats.MeanByCDF, which
	// delegates to a chi-squared inverse CDF; nudge the cached validity
	// bound upward to compensate, rather than risk repeatedly recomputing
	// for mapSizes just past the boundary.
	if mapSizeDifference := mapSize - m.minMapSizeForWhichCacheValid; mapSizeDifference > 0 {
		nudge := mapSizeDifference / 100
		if nudge < 1 {
			nudge = 1
		}
		m.minMapSizeForWhichCacheValid += nudge
	}

	segmentOrderDifference := segmentOrder - averageSegmentOrder
	if segmentOrderDifference < 0 {
		return assertionErrorf(
			"segmentOrder=%d is less than averageSegmentOrder=%d after a failed split attempt",
			segmentOrder, averageSegmentOrder)
	}
	segmentSizeNormalizedToVirtual := segmentSize << uint(segmentOrderDifference)
	if segmentSizeNormalizedToVirtual <= virtualSegmentMaxNonReportedSize {
		return nil
	}

	message := fmt.Sprintf(
		"In a map of %d entries (average segment order = %d) the probability for a segment of "+
			"order %d to have %d entries (assuming the hash function distributes keys perfectly "+
			"well) is below the configured threshold %v",
		mapSize, averageSegmentOrder, segmentOrder, segmentSize, m.benignOccasionMaxProbability())

	debugInfo := func() DebugInfo {
		occasionProbability := 1.0 - segmentSizeDistribution.CDF(segmentSizeNormalizedToVirtual-1)
		return DebugInfo{
			{Key: "lastSegmentOrderForWhichMaxNonReportedSizeIsComputed", Value: m.lastSegmentOrderForWhichMaxNonReportedSizeIsComputed},
			{Key: "segmentSizeMaxNonReportedLastComputed", Value: m.segmentSizeMaxNonReportedLastComputed},
			{Key: "averageSegmentOrder", Value: averageSegmentOrder},
			{Key: "numVirtualSegments", Value: numVirtualSegments},
			{Key: "averageVirtualSegmentSize", Value: averageVirtualSegmentSize},
			{Key: "tooLargeVirtualSegmentMinReportingProb", Value: tooLargeVirtualSegmentMinReportingProb},
			{Key: "occasionProbabilityRepr", Value: fmt.Sprintf("CCDF[Poisson(%v), %d]", averageVirtualSegmentSize, segmentSizeNormalizedToVirtual-1)},
			{Key: "occasionProbability", Value: occasionProbability},
		}
	}

	occasion := newOccasion(TooLargeInflatedSegment, mapRef, message, debugInfo, inflatedSegment, excludedKey)
	m.report(occasion)

	// If the reporting callback doesn't actively remove elements, there
	// is no point continuing to report about the same, unchanging map.
	m.reportTooLargeInflated = occasion.RemovedSomeElement()
	return nil
}
