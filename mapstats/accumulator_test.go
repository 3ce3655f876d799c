package mapstats

import (
	"testing"

	"github.com/cyberpwnn/SmoothieMap/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateOrdinarySegmentBucketsByOrderAndSize(t *testing.T) {
	s := NewStats()
	seg := segment.NewSegment(2)
	for i := 0; i < 12; i++ {
		seg.Insert(uint64(i)*31, i, i)
	}
	s.AggregateOrdinarySegment(seg)
	assert.Equal(t, 1, s.NumAggregatedOrdinarySegmentsForOrder(2))
	assert.Equal(t, 0, s.NumAggregatedOrdinarySegmentsForOrder(3))

	total := s.ComputeTotalOrdinarySegmentStats()
	assert.EqualValues(t, 12, total.NumAggregatedFullSlots())

	bySize := s.ComputeOrdinarySegmentStatsForNumNonEmptySlots(12)
	assert.Equal(t, 1, bySize.NumAggregatedSegments())
}

func TestAggregateInflatedSegmentDoesNotAffectOrdinaryBuckets(t *testing.T) {
	s := NewStats()
	s.AggregateInflatedSegment()
	s.AggregateInflatedSegment()
	assert.Equal(t, 2, s.NumInflatedSegments())
	assert.Equal(t, 0, s.NumAggregatedOrdinarySegmentsForOrder(0))
}

func TestSegmentOrderAndLoadDistributionReportsEveryAggregatedOrder(t *testing.T) {
	s := NewStats()
	seg0 := segment.NewSegment(0)
	for i := 0; i < 5; i++ {
		seg0.Insert(uint64(i)*13, i, i)
	}
	seg3 := segment.NewSegment(3)
	for i := 0; i < 8; i++ {
		seg3.Insert(uint64(i)*17, i, i)
	}
	s.AggregateOrdinarySegment(seg0)
	s.AggregateOrdinarySegment(seg3)

	report := s.SegmentOrderAndLoadDistribution()
	require.Contains(t, report, "order 0:")
	require.Contains(t, report, "order 3:")
}

func TestSegmentOrderAndLoadDistributionEmptyWhenNothingAggregated(t *testing.T) {
	s := NewStats()
	assert.Equal(t, "", s.SegmentOrderAndLoadDistribution())
}
