// Package types provides shared types and errors for the cassorm library.
//
// This is a "leaf" package with no imports from other cassorm packages,
// allowing it to be imported by any package without causing import cycles.
package types

import "strings"

// Consistency represents the Cassandra consistency level.
type Consistency uint16

// Consistency levels matching the CQL protocol codes used by gocql.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
	Serial      Consistency = 0x08
	LocalSerial Consistency = 0x09
	LocalOne    Consistency = 0x0A
)

var consistencyNames = map[Consistency]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
	LocalOne:    "LOCAL_ONE",
}

// String returns the upper-case CQL name of the consistency level.
func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseConsistency resolves a consistency level name.
//
// Matching is case-insensitive and ignores surrounding whitespace.
//
// Parameters:
//   - name: Level name such as "quorum" or "LOCAL_ONE"
//
// Returns:
//   - Consistency: The matched level
//   - bool: false if the name is not a known level
func ParseConsistency(name string) (Consistency, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for level, levelName := range consistencyNames {
		if levelName == upper {
			return level, true
		}
	}

	return 0, false
}

// Logger defines the structured logging interface used across cassorm.
//
// The method set matches the key/value style of zap's SugaredLogger
// (Debugw, Infow, ...) without depending on it; see contrib/logging/zaplog.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
