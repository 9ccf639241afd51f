// Package record defines the data model for the local tracking buffer.
//
// A record is either an Event (one behavioral event) or a CustomerUpdate
// (one identity/attribute update). Both carry an ordered list of Property
// entries owned exclusively by the record. Property values are constrained
// to the scalar Value types defined here; Identity is the single durable
// per-install customer identifier.
//
// Records are built from tagged Field entries. Unrecognized field kinds are
// skipped, never rejected, so field lists produced by newer SDK versions
// stay decodable by older cores.
package record
