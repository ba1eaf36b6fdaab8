// Package models defines the sequence element entity, the request shapes of the sequence API, and the persistence interface.
//
//   - [SequenceElement] : an external object, referenced by element type and element id, with its position and version counter
//   - [SequenceRequest], [ReorderRequest], [VersionRequest] : decoded request bodies
//   - [SequenceStore] : the query shapes the sequencer needs from storage
//
// Sequence numbers are positions within an element type, starting at 1.
// Version numbers start at 1 and only ever grow by one.
package models
