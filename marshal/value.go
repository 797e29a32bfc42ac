package marshal

import (
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/inf.v0"
)

// Kind identifies a store-native value type.
type Kind int

// Store-native kinds. KindOther covers every value the store binds as-is.
const (
	KindOther Kind = iota
	KindUUID
	KindTimestamp
	KindDate
	KindTime
	KindDecimal
	KindInet
	KindFloat
)

var kindNames = [...]string{
	KindOther:     "other",
	KindUUID:      "uuid",
	KindTimestamp: "timestamp",
	KindDate:      "date",
	KindTime:      "time",
	KindDecimal:   "decimal",
	KindInet:      "inet",
	KindFloat:     "float",
}

// String returns the CQL type name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}

	return kindNames[k]
}

// KindOf maps a CQL column type name to a Kind.
//
// Both "uuid" and "timeuuid" map to KindUUID. Unknown names map to KindOther.
func KindOf(cqlType string) Kind {
	switch cqlType {
	case "uuid", "timeuuid":
		return KindUUID
	case "timestamp":
		return KindTimestamp
	case "date":
		return KindDate
	case "time":
		return KindTime
	case "decimal":
		return KindDecimal
	case "inet":
		return KindInet
	case "float":
		return KindFloat
	default:
		return KindOther
	}
}

// Value is implemented by every store-native wrapper type.
type Value interface {
	// Kind returns the store-native kind.
	Kind() Kind

	// Scalar returns the fixed comparable projection of the value.
	Scalar() any

	// CQLValue returns the value handed to the driver when binding.
	CQLValue() any

	// String returns the canonical text form.
	String() string
}

// Compile-time assertions.
var (
	_ Value = UUID{}
	_ Value = Timestamp(0)
	_ Value = Date(0)
	_ Value = Time(0)
	_ Value = Decimal{}
	_ Value = Inet{}
	_ Value = Float(0)
)

// UUID is a 128-bit identifier, random or time-based.
type UUID uuid.UUID

// NewUUID returns a random (version 4) UUID.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// NewTimeUUID returns a time-based (version 1) UUID.
//
// Falls back to a random UUID if the node identifier cannot be determined.
func NewTimeUUID() UUID {
	id, err := uuid.NewUUID()
	if err != nil {
		return NewUUID()
	}

	return UUID(id)
}

// ParseUUID parses the canonical text form of a UUID.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, err
	}

	return UUID(id), nil
}

// Kind returns KindUUID.
func (u UUID) Kind() Kind { return KindUUID }

// Scalar returns the canonical lower-case string.
func (u UUID) Scalar() any { return u.String() }

// CQLValue returns the 16 raw bytes.
func (u UUID) CQLValue() any { return [16]byte(u) }

// String returns the canonical lower-case string.
func (u UUID) String() string { return uuid.UUID(u).String() }

// Version returns the UUID version number.
func (u UUID) Version() int { return int(uuid.UUID(u).Version()) }

// Timestamp is an instant with millisecond precision, stored as
// milliseconds since the Unix epoch.
type Timestamp int64

// Now returns the current instant as a Timestamp.
func Now() Timestamp {
	return TimestampOf(time.Now())
}

// TimestampOf converts t to a Timestamp, truncating to milliseconds.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Kind returns KindTimestamp.
func (ts Timestamp) Kind() Kind { return KindTimestamp }

// Scalar returns milliseconds since the epoch.
func (ts Timestamp) Scalar() any { return int64(ts) }

// CQLValue returns the instant as a UTC time.Time.
func (ts Timestamp) CQLValue() any { return ts.Time() }

// Time returns the instant as a UTC time.Time.
func (ts Timestamp) Time() time.Time { return time.UnixMilli(int64(ts)).UTC() }

// String returns the RFC 3339 form with milliseconds.
func (ts Timestamp) String() string { return ts.Time().Format("2006-01-02T15:04:05.000Z07:00") }

// Date is a calendar day, stored as seconds since the epoch at UTC midnight.
type Date int64

// DateOf returns the calendar day of t in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	return Date(midnight.Unix())
}

// Kind returns KindDate.
func (d Date) Kind() Kind { return KindDate }

// Scalar returns seconds since the epoch.
func (d Date) Scalar() any { return int64(d) }

// CQLValue returns UTC midnight of the day.
func (d Date) CQLValue() any { return d.Time() }

// Time returns UTC midnight of the day.
func (d Date) Time() time.Time { return time.Unix(int64(d), 0).UTC() }

// String returns the day as YYYY-MM-DD.
func (d Date) String() string { return d.Time().Format(time.DateOnly) }

// Time is a time of day, stored as nanoseconds since midnight.
type Time int64

// TimeOf returns the time of day of t.
func TimeOf(t time.Time) Time {
	h, m, s := t.Clock()
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())

	return Time(d)
}

// Kind returns KindTime.
func (tm Time) Kind() Kind { return KindTime }

// Scalar returns the canonical string form: nanoseconds in decimal.
func (tm Time) Scalar() any { return tm.String() }

// CQLValue returns the offset from midnight as a time.Duration.
func (tm Time) CQLValue() any { return time.Duration(tm) }

// String returns nanoseconds since midnight in decimal.
func (tm Time) String() string { return strconv.FormatInt(int64(tm), 10) }

// Decimal is an arbitrary-precision decimal number.
type Decimal struct {
	dec *inf.Dec
}

// NewDecimal wraps dec. A nil dec is treated as zero.
func NewDecimal(dec *inf.Dec) Decimal {
	return Decimal{dec: dec}
}

// ParseDecimal parses the decimal text form.
func ParseDecimal(s string) (Decimal, error) {
	dec, ok := new(inf.Dec).SetString(s)
	if !ok {
		return Decimal{}, conversionError(s, KindDecimal)
	}

	return Decimal{dec: dec}, nil
}

// Kind returns KindDecimal.
func (d Decimal) Kind() Kind { return KindDecimal }

// Scalar returns the exact decimal string.
func (d Decimal) Scalar() any { return d.String() }

// CQLValue returns the underlying *inf.Dec.
func (d Decimal) CQLValue() any { return d.Dec() }

// Dec returns the underlying decimal, never nil.
func (d Decimal) Dec() *inf.Dec {
	if d.dec == nil {
		return new(inf.Dec)
	}

	return d.dec
}

// String returns the exact decimal string.
func (d Decimal) String() string { return d.Dec().String() }

// Inet is an IPv4 or IPv6 address.
type Inet struct {
	addr netip.Addr
}

// ParseInet parses an address string.
func ParseInet(s string) (Inet, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return Inet{}, err
	}

	return Inet{addr: addr.Unmap()}, nil
}

// InetOf converts a net.IP. It reports false for malformed input.
func InetOf(ip net.IP) (Inet, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return Inet{}, false
	}

	return Inet{addr: addr.Unmap()}, true
}

// Kind returns KindInet.
func (i Inet) Kind() Kind { return KindInet }

// Scalar returns the address string.
func (i Inet) Scalar() any { return i.String() }

// CQLValue returns the address as a net.IP.
func (i Inet) CQLValue() any { return net.IP(i.addr.AsSlice()) }

// Addr returns the address.
func (i Inet) Addr() netip.Addr { return i.addr }

// String returns the address string.
func (i Inet) String() string { return i.addr.String() }

// Float is a single-precision floating point number.
type Float float32

// Kind returns KindFloat.
func (f Float) Kind() Kind { return KindFloat }

// Scalar returns the float32 value.
func (f Float) Scalar() any { return float32(f) }

// CQLValue returns the float32 value.
func (f Float) CQLValue() any { return float32(f) }

// String returns the shortest decimal form.
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 32) }
