// Package probe aggregates per-slot probing statistics for ordinary
// segments: how far a quadratic group probe had to travel before finding an
// empty slot, how many same-tag collisions it compared against on the way,
// and how close its final resting place was to the segment's allocation
// index boundary (the middle of its allocation index space).
//
// A single Stats value accumulates these numbers across any number of
// segments and slots; Report renders them as a fixed-width, percentile
// annotated table in the style used throughout this module's diagnostics.
package probe
