package cassorm

import "github.com/arloliu/cassorm/types"

// Type aliases for convenience - re-export from types package.
type (
	Consistency      = types.Consistency
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	ConfigError      = types.ConfigError
	ConnectionError  = types.ConnectionError
	StatementError   = types.StatementError
	TimeoutError     = types.TimeoutError
)

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Re-export error categories for convenience.
var (
	ErrConfiguration = types.ErrConfiguration
	ErrConnection    = types.ErrConnection
	ErrStatement     = types.ErrStatement
	ErrTimeout       = types.ErrTimeout
)
