// Package transform implements the non-destructive dataset operations:
// subtable extraction, value replacement, missing-data handling,
// deduplication, scaling, categorical encoding, and categorical row
// filtering. A Request is a closed tagged variant (kind plus exactly one
// payload); Apply dispatches exhaustively and always returns a new
// Dataset, leaving the input untouched.
package transform
