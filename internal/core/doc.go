// Package core holds the shared data model for CSV ingestion.
//
// It has no I/O and no dependencies on the reader, the inferencer or the
// coordinator, so every other package can import it.
//
// # Tables
//
// A [Table] is an ordered set of [Column] values with equal length and
// unique names. Columns are stored by kind:
//
//   - Text and categorical columns keep strings; "" is absent.
//   - Numeric columns keep float64; NaN is absent.
//   - Datetime columns keep time.Time (zero is absent) plus Unix seconds
//     in Num so numeric consumers can treat them as ordinary numbers.
//
// Tables are immutable once inference finishes. Transforms build new tables
// with [Table.WithColumn] or [Table.Take] and share untouched columns.
//
// # Error Handling
//
// Recoverable ingestion conditions are sentinel errors ([ErrEmptyFile],
// [ErrDecode], ...) wrapped with %w. [MapError] turns any of them into a
// coded [UserMessage] for display:
//
//   - FILE001-FILE006: File errors (size, encoding, format, compression)
//   - FLT001-FLT002: Filter errors
//   - ING001-ING003: Batch loading errors (cancelled, busy, timeout)
//
// # Events
//
// Batch loading reports through [Event] values of kind progress, error and
// done, in file order.
package core
