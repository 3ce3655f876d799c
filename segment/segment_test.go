package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentInsertAndRetrieveAllSlots(t *testing.T) {
	s := NewSegment(3)
	const n = MaxAllocCapacity
	for i := 0; i < n; i++ {
		hash := uint64(i) * 0x9E3779B97F4A7C15
		s.Insert(hash, i, i*i)
	}
	require.Equal(t, n, s.Size())

	seen := make(map[int]bool)
	s.ForEachFilledSlot(func(fs FilledSlot) {
		assert.GreaterOrEqual(t, fs.GroupIndex, 0)
		assert.Less(t, fs.GroupIndex, HashTableGroups)
		assert.GreaterOrEqual(t, fs.AllocIndex, 0)
		assert.Less(t, fs.AllocIndex, n)
		seen[fs.AllocIndex] = true
	})
	assert.Len(t, seen, n)
}

func TestSegmentInsertPanicsWhenFull(t *testing.T) {
	s := NewSegment(0)
	for i := 0; i < MaxAllocCapacity; i++ {
		s.Insert(uint64(i), i, i)
	}
	assert.Panics(t, func() { s.Insert(uint64(MaxAllocCapacity), 0, 0) })
}

func TestSegmentQuadraticProbingReachesEveryGroupWithinCapacity(t *testing.T) {
	s := NewSegment(0)
	// All keys share a base group index of 0 (hash % HashTableGroups == 0),
	// forcing every insertion past the first into the probing chain rather
	// than directly into the base group. MaxAllocCapacity (48) keys fill
	// exactly 6 of the 8 groups (6*GroupSlots == 48); the remaining two
	// groups in the chain are only reachable beyond capacity, which Insert
	// refuses to exceed.
	var firstGroupOfEachRun []int
	for i := 0; i < MaxAllocCapacity; i++ {
		hash := uint64(i) * HashTableGroups
		res := s.Insert(hash, i, i)
		assert.Equal(t, 0, res.BaseGroupIndex)
		if i%GroupSlots == 0 {
			firstGroupOfEachRun = append(firstGroupOfEachRun, res.GroupIndex)
		}
	}
	assert.Equal(t, []int{0, 1, 3, 6, 2, 7}, firstGroupOfEachRun)

	groupsUsed := make(map[int]bool)
	s.ForEachFilledSlot(func(fs FilledSlot) {
		groupsUsed[fs.GroupIndex] = true
	})
	assert.Len(t, groupsUsed, 6)
}

func TestSegmentSplitPartitionsByOrderBit(t *testing.T) {
	s := NewSegment(2)
	for i := 0; i < 10; i++ {
		s.Insert(uint64(i), i, i)
	}
	half1, half2 := s.Split()
	assert.Equal(t, 10, half1+half2)

	var wantHalf1, wantHalf2 int
	for i := 0; i < 10; i++ {
		if (uint64(i)>>2)&1 == 0 {
			wantHalf1++
		} else {
			wantHalf2++
		}
	}
	assert.Equal(t, wantHalf1, half1)
	assert.Equal(t, wantHalf2, half2)
}

func TestNewSegmentRejectsNegativeOrder(t *testing.T) {
	assert.Panics(t, func() { NewSegment(-1) })
}
