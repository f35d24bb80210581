// Package analytics computes the aggregate tables behind the sales dashboard.
//
// Every function takes an already filtered record slice and is pure. Results
// are deterministic: groups come out in first-encountered order, rankings use
// a stable sort, so ties always resolve to the group seen first. Empty input
// gives zero values and empty, non-nil slices.
package analytics
