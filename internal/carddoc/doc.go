// Package carddoc works with card definitions fetched from the card service.
//
// # Overview
//
// A card definition is a large, partially documented JSON tree. The package
// keeps it as a generic value (see Definition) and exposes narrow accessors for
// the handful of fields annotation handling needs: the title, the column
// metadata, the subscriptions and the annotation list. Everything else is
// carried through untouched.
//
// # Saving
//
// The save endpoint rejects documents that lack certain substructures even
// when the fetch endpoint omitted them. BuildSavePayload produces a save-ready
// payload from a fetched definition plus a Delta (annotations to add, ids to
// delete). It works on a deep copy and performs no I/O.
//
// # Assigned ids
//
// The save response does not carry the id minted for a new annotation.
// ResolveAssignedID diffs the annotation sets fetched before and after the
// save and requires exactly one new annotation matching the draft.
//
// Key Types
//
//   - type Definition: fetched document plus the resolved data-source id
//   - type Delta: annotations to add and ids to delete
//
// Errors: ErrNoDataSource, ErrAssignedIDNotFound, ErrAmbiguousAssignedID.
package carddoc
