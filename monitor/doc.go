// Package monitor watches a host map's segment splits and inflated-segment
// growth for signs that its hash function distributes keys poorly, and
// reports the ones that are statistically implausible under a uniformly
// random hash function.
//
// It has two independent halves that happen to share a struct because they
// share a reporting callback and a footprint budget: a monitor for inflated
// segments that have grown too large (see CheckAndReportTooLargeInflatedSegment)
// and a monitor for segment splits that land too unevenly across a hash
// table's two halves, too often (see AccountSegmentSplit). A third occasion
// kind, too many inflated segments overall, is reserved in the Type enum but
// never emitted: the monitor keeps no state and has no method for it.
//
// The monitor does no locking: it assumes a single host thread drives it,
// serializing calls the way the host serializes mutations of the map
// itself.
package monitor
