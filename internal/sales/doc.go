// Package sales holds the line-item sale model and the pure functions that
// turn raw CSV values into fully enriched records.
//
// The package contains three main pieces:
//
// Money: an exact decimal amount backed by apd, used for unit prices and every
// revenue figure so that sums never drift.
//
// Coerce: parses the textual quantity, unit price and timestamp of a
// RawRecord and rejects rows that fail to parse or carry non-positive values.
//
// Deriver: computes calendar parts, Spanish month and weekday names, address
// decomposition, product category, price tier and special-event tag for a
// validated Sale. Category rules and the event calendar are explicit ordered
// tables so the first-match-wins behavior is visible and testable.
//
// Example usage:
//
//	sale, err := sales.Coerce(raw)
//	if err != nil {
//	    // row is excluded and counted by the caller
//	}
//	record := sales.Derive(sale)
package sales
