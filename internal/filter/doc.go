// Package filter turns dashboard filter values into record predicates.
//
// A Request holds one optional value per dimension. Empty values and the
// sentinels "All", "Todos" and "Todas" impose no constraint. Predicates are
// ANDed and independent of each other, so the order they run in never
// changes the result. Apply always returns a new slice and leaves the input
// untouched.
package filter
