package monitor

// Host is everything the monitor needs to ask of the map it watches. All
// three methods are outbound calls the host is required to implement; the
// monitor never mutates a host's segments directly.
type Host interface {
	// ComputeAverageSegmentOrder returns the map's average segment order
	// for the given size, updating the host's own cache of that value as
	// a side effect.
	ComputeAverageSegmentOrder(mapSize int64) int
	// AverageSegmentOrderLastComputed returns the host's most recently
	// cached average segment order, without recomputing it.
	AverageSegmentOrderLastComputed() int
	// MaxSplittableSegmentOrder returns the highest segment order the
	// host could validly report a split from, given the average order.
	MaxSplittableSegmentOrder(averageOrder int) int
}

// skewStat is one skewness level's worth of split-skew bookkeeping.
type skewStat struct {
	count                      int
	maxNonReportedLastComputed int
}

// Monitor accumulates the state behind both halves of this package: the
// inflated-segment size check and the skewed-split check. The zero value is
// not usable; construct one with NewMonitor.
type Monitor struct {
	minReportingProb float64
	report           Reporter

	// too-large-inflated-segment state
	reportTooLargeInflated                               bool
	segmentSizeMaxNonReportedLastComputed                int
	lastSegmentOrderForWhichMaxNonReportedSizeIsComputed int
	minMapSizeForWhichCacheValid                         int64

	// too-many-skewed-segment-splits state
	hasReportedTooManySkewed bool
	numSplitsToCurrent       int
	skewStatsToCurrent       []skewStat
	numSplitsToNext          int
	skewStatsToNext          []skewStat
}

// NewMonitor returns a Monitor that calls report for every occasion whose
// statistical probability (assuming a truly random hash function) falls
// below minReportingProb.
func NewMonitor(minReportingProb float64, report Reporter) *Monitor {
	if minReportingProb <= 0 || minReportingProb > 1 {
		panic("monitor: minReportingProb must be in (0, 1]")
	}
	if report == nil {
		panic("monitor: report must not be nil")
	}
	return &Monitor{
		minReportingProb:       minReportingProb,
		report:                 report,
		reportTooLargeInflated: true,
	}
}

// IsReportingTooLargeInflatedSegment reports whether the monitor will still
// emit TooLargeInflatedSegment occasions. It becomes false once a reporting
// callback declines to remove the offending element.
func (m *Monitor) IsReportingTooLargeInflatedSegment() bool {
	return m.reportTooLargeInflated
}

func (m *Monitor) benignOccasionMaxProbability() float64 {
	return 1.0 - m.minReportingProb
}
