package probe

import (
	"strings"
	"testing"

	"github.com/cyberpwnn/SmoothieMap/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAggregateSegmentCountsEveryKey(t *testing.T) {
	seg := segment.NewSegment(4)
	for i := 0; i < 30; i++ {
		seg.Insert(uint64(i)*0x9E3779B97F4A7C15, i, i)
	}
	var s Stats
	s.AggregateSegment(seg)
	assert.Equal(t, 1, s.NumAggregatedSegments())
	assert.EqualValues(t, 30, s.NumAggregatedFullSlots())
}

func TestStatsAddCombinesTwoAccumulators(t *testing.T) {
	seg1 := segment.NewSegment(0)
	seg2 := segment.NewSegment(0)
	for i := 0; i < 10; i++ {
		seg1.Insert(uint64(i), i, i)
	}
	for i := 0; i < 5; i++ {
		seg2.Insert(uint64(i)+1000, i, i)
	}
	var a, b Stats
	a.AggregateSegment(seg1)
	b.AggregateSegment(seg2)
	a.Add(&b)
	assert.Equal(t, 2, a.NumAggregatedSegments())
	assert.EqualValues(t, 15, a.NumAggregatedFullSlots())
}

func TestStatsReportIsNonEmptyAndSkipsZeroRows(t *testing.T) {
	seg := segment.NewSegment(0)
	for i := 0; i < 20; i++ {
		seg.Insert(uint64(i)*7, i, i)
	}
	var s Stats
	s.AggregateSegment(seg)
	report := s.Report()
	require.Contains(t, report, "Number of segments: 1")
	require.Contains(t, report, "Average full slots:")
	// A line for an order with zero count in every column must not appear;
	// spot check one order that is guaranteed empty (distance far beyond
	// what 20 keys in a 48-capacity segment could ever produce).
	assert.False(t, strings.Contains(report, "distance to alloc index boundary = 47:"))
}

func TestAppendNonZeroOrderedCountsWithPercentilesSkipsAllZero(t *testing.T) {
	var sb strings.Builder
	AppendNonZeroOrderedCountsWithPercentiles(&sb, "x =", []NamedCounts{
		{Name: "items", Counts: []int64{0, 5, 0, 3}},
	})
	out := sb.String()
	assert.NotContains(t, out, "x = 0:")
	assert.Contains(t, out, "x = 1:")
	assert.Contains(t, out, "x = 3:")
}
