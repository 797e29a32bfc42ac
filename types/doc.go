// Package types provides shared types and error definitions for the cassorm library.
//
// This is a leaf package with zero cassorm imports to prevent import cycles.
// All packages in cassorm can safely import this package.
//
// # Types
//
// Consistency levels mirror gocql consistency levels for database operations:
//
//	const (
//	    Any         Consistency = 0x00
//	    One         Consistency = 0x01
//	    Quorum      Consistency = 0x04
//	    LocalQuorum Consistency = 0x06
//	    LocalOne    Consistency = 0x0A
//	)
//
// ParseConsistency resolves a case-insensitive level name; unknown names
// report false so callers can keep the driver default.
//
// # Errors
//
// Four error categories cover every failure the library reports:
//
//   - ConfigError (ErrConfiguration): invalid connection settings
//   - ConnectionError (ErrConnection): the session could not be opened
//   - StatementError (ErrStatement): the store rejected a statement
//   - TimeoutError (ErrTimeout): a driver or context deadline was hit
//
// All of them support errors.Is against their category sentinel and
// errors.As for the typed struct. ConnectionError, StatementError and
// TimeoutError also unwrap to the underlying driver error.
package types
