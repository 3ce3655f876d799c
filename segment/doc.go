// Package segment implements the two kinds of segment a directory-based
// hash map hands to the hash code distribution monitor: an ordinary
// segment, a fixed-capacity Swiss/F14-style group-probing hash table, and an
// inflated segment, an unbounded chain used once an ordinary segment's
// capacity has been exceeded by collisions.
//
// Key/value storage, iteration, and rehashing of a full map are out of
// scope here; this package only implements as much of a segment as the
// monitor in package monitor needs to observe: its order, its size, its
// probing behaviour, and (for inflated segments) whether it can still be
// split into two ordinary segments.
package segment
