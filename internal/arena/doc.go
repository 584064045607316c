// Package arena models the 150x130 cm robot-soccer field: planar vectors,
// team sides, the named field zones and the geometric predicates every
// controller builds on.
//
// All functions in this package are pure. Positions that were not observed
// this frame are represented by [Unseen]; every predicate treats an unseen
// input as "not satisfied" rather than failing.
package arena
