// Package dataset implements the in-memory tabular model the rest of the
// core operates on: typed cells with an explicit missing marker, named
// columns of equal length, and per-column classification.
//
// Datasets are immutable at the API boundary. Every transform receives a
// Dataset and builds a new one; identity changes per transform (each
// Dataset carries its own UUID) so hosts can keep undo history. Derived
// artifacts such as classification are recomputed on demand; Fingerprint
// provides a content key for hosts that want to cache them.
package dataset
