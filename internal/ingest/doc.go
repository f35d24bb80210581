// Package ingest builds the immutable sales Dataset from a directory of
// monthly CSV files.
//
// Load discovers the files, parses them concurrently, drops header rows that
// reappear as data, coerces and derives every row, and concatenates the
// batches in discovery order. Rejected rows are only counted in Stats.
package ingest
