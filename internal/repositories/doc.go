// Package repositories implements SQL persistence for sequence elements.
//
// Queries are written once with "?" placeholders and rebound per driver, so the same
// repository runs against SQLite (development and tests) and PostgreSQL.
//
// Key Implementations:
//   - [SequenceElementRepository] : the sequence_elements table, implementing [models.SequenceStore]
//
// Nothing here takes locks or opens transactions. Callers that count and then insert
// can observe the same count concurrently; see the sequencer package.
package repositories
