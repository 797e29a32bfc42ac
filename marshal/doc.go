// Package marshal converts between application values and the store-native
// value types of Cassandra-family databases.
//
// The closed set of wrapper types is UUID, Timestamp, Date, Time, Decimal,
// Inet and Float. Each implements Value and exposes two projections:
//
//   - Scalar: the fixed comparable form used for dirty checks and
//     serialization (UUID and Inet strings, epoch seconds for Date, epoch
//     milliseconds for Timestamp, decimal nanoseconds for Time, the exact
//     string for Decimal, float32 for Float)
//   - CQLValue: the value handed to the driver when binding
//
// All functions are pure and safe for concurrent use.
//
// # Writing
//
//	v, err := marshal.ToStoreValue("2024-01-02 03:04:05", marshal.KindTimestamp)
//	bound := marshal.BindValues([]any{v, "plain"})
//
// # Reading
//
// Hydrate wraps values returned by the driver according to the column kind
// reported in the result metadata:
//
//	kind := marshal.KindOf(column.Type)
//	row[column.Name] = marshal.Hydrate(kind, raw)
package marshal
