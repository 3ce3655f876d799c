package segment

// inflatedEntry is one key/value pair held by an InflatedSegment, linked in
// insertion order.
type inflatedEntry struct {
	hash       uint64
	key, value any
	next       *inflatedEntry
}

// InflatedSegment holds keys that collided past an ordinary segment's
// MaxAllocCapacity: rather than probing a fixed hash table, it grows an
// unbounded chain. A SmoothieMap keeps very few of these around at once; the
// monitor's job (see the Monitor type in package monitor) is to notice
// when one has grown implausibly large for a well distributed hash function.
type InflatedSegment struct {
	order      int
	size       int
	head, tail *inflatedEntry

	// trySplit is invoked by TrySplit; tests and example hosts set it to
	// model whether the surrounding map successfully split this segment
	// back into ordinary ones. A nil value means "never splits", which is a
	// safe default: the monitor treats that identically to an
	// already-attempted, failed split.
	trySplit func(order int, excludedKeyHash uint64) bool
}

// NewInflatedSegment returns an empty inflated segment of the given order.
func NewInflatedSegment(order int) *InflatedSegment {
	return &InflatedSegment{order: order}
}

// Order returns the segment's order.
func (s *InflatedSegment) Order() int { return s.order }

// Size returns the number of keys currently stored in the segment.
func (s *InflatedSegment) Size() int { return s.size }

// Insert appends key/value to the chain. Unlike Segment.Insert, this never
// fails: that is the point of an inflated segment.
func (s *InflatedSegment) Insert(hash uint64, key, value any) {
	e := &inflatedEntry{hash: hash, key: key, value: value}
	if s.tail != nil {
		s.tail.next = e
	} else {
		s.head = e
	}
	s.tail = e
	s.size++
}

// SetTrySplit installs the callback used by TrySplit.
func (s *InflatedSegment) SetTrySplit(f func(order int, excludedKeyHash uint64) bool) {
	s.trySplit = f
}

// TrySplit asks the host to split this segment back into ordinary segments,
// excluding the key whose hash is excludedKeyHash (it is being inserted
// concurrently with the split decision and is handled by the caller
// separately). It implements the monitor.InflatedSegment interface the
// monitor's inflated segment check depends on.
func (s *InflatedSegment) TrySplit(order int, excludedKeyHash uint64) bool {
	if s.trySplit == nil {
		return false
	}
	return s.trySplit(order, excludedKeyHash)
}
