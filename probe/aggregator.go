package probe

import (
	"fmt"

	"github.com/cyberpwnn/SmoothieMap/segment"
)

// quadraticProbingChainGroupIndexToChainLength maps a group's offset from
// its slot's base group index (the number of groups away it is, already
// reduced into 0..HashTableGroups-1) to how many probing steps it took to
// reach that group. It is built once by walking the same probe sequence
// Segment.Insert uses: since that sequence is a bijection over the group
// indices, this table is exact, not an approximation.
var quadraticProbingChainGroupIndexToChainLength [segment.HashTableGroups]int

func init() {
	groupIndex := 0
	step := 0
	for chainLength := 0; chainLength < segment.HashTableGroups; chainLength++ {
		quadraticProbingChainGroupIndexToChainLength[groupIndex] = chainLength
		step++
		groupIndex = (groupIndex + step) % segment.HashTableGroups
	}
}

// Stats accumulates probing statistics across any number of ordinary
// segments. The zero value is ready to use.
type Stats struct {
	numAggregatedSegments              int
	numAggregatedFullSlots             int64
	numAggregatedSegmentsPerAllocCap   [segment.MaxAllocCapacity + 1]int64
	numSlotsPerCollisionChainGroupLen  [segment.HashTableGroups]int64
	numSlotsPerNumCollisionKeyCompares [segment.MaxAllocCapacity]int64
	numSlotsPerDistanceToAllocBoundary [segment.MaxAllocCapacity]int64
}

// NumAggregatedSegments returns how many segments have been aggregated via
// IncrementAggregatedSegments.
func (s *Stats) NumAggregatedSegments() int { return s.numAggregatedSegments }

// NumAggregatedFullSlots returns how many slots have been aggregated via
// AggregateFullSlot.
func (s *Stats) NumAggregatedFullSlots() int64 { return s.numAggregatedFullSlots }

// AggregateFullSlot folds one occupied slot's probing bookkeeping into the
// running statistics.
func (s *Stats) AggregateFullSlot(fs segment.FilledSlot) {
	quadraticProbingChainGroupIndex := (fs.GroupIndex - fs.BaseGroupIndex + segment.HashTableGroups) % segment.HashTableGroups
	chainLength := quadraticProbingChainGroupIndexToChainLength[quadraticProbingChainGroupIndex]
	s.numSlotsPerCollisionChainGroupLen[chainLength]++
	s.numSlotsPerNumCollisionKeyCompares[fs.NumCollisionKeyComparisons]++

	var distance int
	if fs.AllocIndex >= fs.AllocIndexBoundary {
		distance = fs.AllocIndex - fs.AllocIndexBoundary
	} else {
		distance = fs.AllocIndexBoundary - fs.AllocIndex - 1
	}
	s.numSlotsPerDistanceToAllocBoundary[distance]++
	s.numAggregatedFullSlots++
}

// IncrementAggregatedSegments records one more segment with the given
// allocation capacity having been aggregated.
func (s *Stats) IncrementAggregatedSegments(allocCapacity int) {
	if allocCapacity < 0 || allocCapacity > segment.MaxAllocCapacity {
		panic(fmt.Errorf("probe: alloc capacity %d out of range", allocCapacity))
	}
	s.numAggregatedSegments++
	s.numAggregatedSegmentsPerAllocCap[allocCapacity]++
}

// AggregateSegment is a convenience that walks every filled slot of seg via
// ForEachFilledSlot and aggregates both the slots and the segment itself.
func (s *Stats) AggregateSegment(seg *segment.Segment) {
	seg.ForEachFilledSlot(s.AggregateFullSlot)
	s.IncrementAggregatedSegments(segment.MaxAllocCapacity)
}

// Add folds other's counts into s.
func (s *Stats) Add(other *Stats) {
	s.numAggregatedSegments += other.numAggregatedSegments
	s.numAggregatedFullSlots += other.numAggregatedFullSlots
	addInto(s.numAggregatedSegmentsPerAllocCap[:], other.numAggregatedSegmentsPerAllocCap[:])
	addInto(s.numSlotsPerCollisionChainGroupLen[:], other.numSlotsPerCollisionChainGroupLen[:])
	addInto(s.numSlotsPerNumCollisionKeyCompares[:], other.numSlotsPerNumCollisionKeyCompares[:])
	addInto(s.numSlotsPerDistanceToAllocBoundary[:], other.numSlotsPerDistanceToAllocBoundary[:])
}

func addInto(target, source []int64) {
	for i := range target {
		target[i] += source[i]
	}
}
