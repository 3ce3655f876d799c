// Package mapstats accumulates probing statistics (see package probe) across
// every segment of a map, keyed by segment order and by the segment's number
// of non-empty slots, and renders the combined result as a "segment order
// and load distribution" report.
//
// Inflated segments are counted separately: they have no fixed-capacity hash
// table for package probe to aggregate.
package mapstats
