package mapstats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cyberpwnn/SmoothieMap/probe"
	"github.com/cyberpwnn/SmoothieMap/segment"
)

// Stats accumulates probe.Stats across every segment of one or more maps,
// keyed by segment order and by the segment's number of non-empty slots (the
// occupied slot count including slots that would be empty again after a
// pending deletion settles, which is out of scope here, so this module
// treats it as equal to the segment's size).
type Stats struct {
	numAggregatedMaps     int
	numAggregatedSegments int
	numInflatedSegments   int

	perOrder map[int]map[int]*probe.Stats
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{perOrder: make(map[int]map[int]*probe.Stats)}
}

// IncrementAggregatedMaps records that one more whole map has been
// aggregated, independent of its segment count.
func (s *Stats) IncrementAggregatedMaps() { s.numAggregatedMaps++ }

// NumInflatedSegments returns how many inflated segments have been
// aggregated via AggregateInflatedSegment.
func (s *Stats) NumInflatedSegments() int { return s.numInflatedSegments }

func (s *Stats) acquire(segmentOrder, numNonEmptySlots int) *probe.Stats {
	bySlots := s.perOrder[segmentOrder]
	if bySlots == nil {
		bySlots = make(map[int]*probe.Stats)
		s.perOrder[segmentOrder] = bySlots
	}
	st := bySlots[numNonEmptySlots]
	if st == nil {
		st = &probe.Stats{}
		bySlots[numNonEmptySlots] = st
	}
	return st
}

// AggregateOrdinarySegment folds seg's slots into the bucket for its order
// and non-empty slot count.
func (s *Stats) AggregateOrdinarySegment(seg *segment.Segment) {
	s.numAggregatedSegments++
	s.acquire(seg.Order(), seg.Size()).AggregateSegment(seg)
}

// AggregateInflatedSegment records one inflated segment. Inflated segments
// have no fixed-capacity hash table, so package probe has nothing to
// aggregate for them; they only contribute to the counters.
func (s *Stats) AggregateInflatedSegment() {
	s.numAggregatedSegments++
	s.numInflatedSegments++
}

// NumAggregatedOrdinarySegmentsForOrder sums, across every non-empty-slots
// bucket, the number of ordinary segments aggregated at the given order.
func (s *Stats) NumAggregatedOrdinarySegmentsForOrder(segmentOrder int) int {
	bySlots, ok := s.perOrder[segmentOrder]
	if !ok {
		return 0
	}
	total := 0
	for _, st := range bySlots {
		total += st.NumAggregatedSegments()
	}
	return total
}

// ComputeTotalOrdinarySegmentStats sums every bucket into one probe.Stats.
func (s *Stats) ComputeTotalOrdinarySegmentStats() *probe.Stats {
	total := &probe.Stats{}
	for _, bySlots := range s.perOrder {
		for _, st := range bySlots {
			total.Add(st)
		}
	}
	return total
}

// ComputeOrdinarySegmentStatsForNumNonEmptySlots sums, across every segment
// order, the bucket for the given non-empty slot count.
func (s *Stats) ComputeOrdinarySegmentStatsForNumNonEmptySlots(numNonEmptySlots int) *probe.Stats {
	total := &probe.Stats{}
	for _, bySlots := range s.perOrder {
		if st, ok := bySlots[numNonEmptySlots]; ok {
			total.Add(st)
		}
	}
	return total
}

func sortedKeys(m map[int]map[int]*probe.Stats) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// SegmentOrderAndLoadDistribution renders a two-level report: how many
// ordinary segments exist at each order, and, nested under each order that
// has any, how those segments distribute across non-empty slot counts.
func (s *Stats) SegmentOrderAndLoadDistribution() string {
	var sb strings.Builder
	orders := sortedKeys(s.perOrder)
	if len(orders) == 0 {
		return ""
	}
	maxOrder := orders[len(orders)-1]

	segmentsPerOrder := make([]int64, maxOrder+1)
	for _, order := range orders {
		segmentsPerOrder[order] = int64(s.NumAggregatedOrdinarySegmentsForOrder(order))
	}
	probe.AppendNonZeroOrderedCountsWithPercentiles(&sb, "order",
		[]probe.NamedCounts{{Name: "segments", Counts: segmentsPerOrder}})

	for _, order := range orders {
		bySlots := s.perOrder[order]
		maxSlots := 0
		for numNonEmptySlots := range bySlots {
			if numNonEmptySlots > maxSlots {
				maxSlots = numNonEmptySlots
			}
		}
		segmentsPerSlotCount := make([]int64, maxSlots+1)
		for numNonEmptySlots, st := range bySlots {
			segmentsPerSlotCount[numNonEmptySlots] = int64(st.NumAggregatedSegments())
		}
		probe.AppendNonZeroOrderedCountsWithPercentiles(&sb, "order "+strconv.Itoa(order)+", # non-empty slots =",
			[]probe.NamedCounts{{Name: "segments", Counts: segmentsPerSlotCount}})
	}
	return sb.String()
}
