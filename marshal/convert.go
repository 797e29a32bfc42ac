package marshal

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"gopkg.in/inf.v0"
)

// ErrConversion is the category for values that cannot be converted to the
// requested store-native kind.
var ErrConversion = errors.New("cassorm: value conversion failed")

func conversionError(v any, kind Kind) error {
	return fmt.Errorf("%w: cannot convert %T(%v) to %s", ErrConversion, v, v, kind)
}

// dateTimeLayouts are the string forms accepted by the date path, tried in order.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// IsStoreNative reports whether v is one of the store-native wrapper types.
func IsStoreNative(v any) bool {
	_, ok := v.(Value)
	return ok
}

// IsOrderComparable reports whether v supports ordering comparisons.
//
// Only UUID and Inet report true. Timestamp, Date, Time, Decimal and Float
// are store-native but report false even though their scalar projections
// are ordered; callers comparing those must project them first.
func IsOrderComparable(v any) bool {
	switch v.(type) {
	case UUID, Inet:
		return true
	default:
		return false
	}
}

// ToComparableScalar returns the fixed scalar projection of a store-native
// value. Any other value is returned unchanged.
//
// Projections: Date to epoch seconds, Time to its decimal nanosecond string,
// Timestamp to epoch milliseconds, Float to float32, Decimal to its exact
// string, Inet to its address string, UUID to its canonical string.
func ToComparableScalar(v any) any {
	if sv, ok := v.(Value); ok {
		return sv.Scalar()
	}

	return v
}

// BindValue returns the driver representation of v.
//
// Store-native wrappers are replaced by their CQLValue; everything else is
// passed through for the driver to marshal.
func BindValue(v any) any {
	if sv, ok := v.(Value); ok {
		return sv.CQLValue()
	}

	return v
}

// BindValues applies BindValue to every element, returning a new slice.
func BindValues(values []any) []any {
	if len(values) == 0 {
		return values
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = BindValue(v)
	}

	return out
}

// ToStoreValue converts an application-side value to the wrapper for kind.
//
// nil stays nil. A wrapper of the requested kind is returned unchanged.
// KindOther returns v unchanged. Integers bound to KindTimestamp are epoch
// milliseconds; other timestamp inputs go through FromDateTime.
//
// Parameters:
//   - v: Application value (time.Time, integers, floats, strings, byte arrays, wrappers)
//   - kind: Target store-native kind
//
// Returns:
//   - any: The converted value
//   - error: ErrConversion if v cannot represent kind
func ToStoreValue(v any, kind Kind) (any, error) {
	if v == nil {
		return nil, nil
	}
	if sv, ok := v.(Value); ok && sv.Kind() == kind {
		return v, nil
	}

	switch kind {
	case KindUUID:
		return toUUID(v)
	case KindTimestamp:
		if ms, ok := asInt64(v); ok {
			return Timestamp(ms), nil
		}
		return FromDateTime(v)
	case KindDate:
		return toDate(v)
	case KindTime:
		return toTime(v)
	case KindDecimal:
		return toDecimal(v)
	case KindInet:
		return toInet(v)
	case KindFloat:
		return toFloat(v)
	default:
		return v, nil
	}
}

// FromDateTime converts a date-like value to a Timestamp.
//
// A Timestamp passes through unchanged. A Date becomes its UTC midnight.
// time.Time keeps millisecond precision. Integers and numeric strings are
// read as Unix seconds. Other strings are parsed as RFC 3339,
// "2006-01-02 15:04:05" or "2006-01-02".
func FromDateTime(v any) (Timestamp, error) {
	switch val := v.(type) {
	case Timestamp:
		return val, nil
	case Date:
		return TimestampOf(val.Time()), nil
	case time.Time:
		return TimestampOf(val), nil
	case *time.Time:
		if val == nil {
			return 0, conversionError(v, KindTimestamp)
		}
		return TimestampOf(*val), nil
	}

	t, err := AsDateTime(v)
	if err != nil {
		return 0, err
	}

	return TimestampOf(t), nil
}

// AsDateTime converts a date-like value to a UTC time.Time.
func AsDateTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case *time.Time:
		if val != nil {
			return val.UTC(), nil
		}
	case Timestamp:
		return val.Time(), nil
	case Date:
		return val.Time(), nil
	case string:
		return parseDateTime(val)
	case []byte:
		return parseDateTime(string(val))
	}

	if secs, ok := asInt64(v); ok {
		return time.Unix(secs, 0).UTC(), nil
	}

	return time.Time{}, conversionError(v, KindTimestamp)
}

// Hydrate wraps a driver-returned value using the column kind from the
// result metadata.
//
// Null markers produced by the driver (zero times, all-zero UUIDs, nil
// decimals and addresses) become nil. Values that cannot be converted are
// returned unchanged.
func Hydrate(kind Kind, v any) any {
	if v == nil {
		return nil
	}

	switch kind {
	case KindUUID:
		if id, ok := uuidBytes(v); ok {
			if id == ([16]byte{}) {
				return nil
			}
			return UUID(id)
		}
	case KindTimestamp:
		if t, ok := v.(time.Time); ok {
			if t.IsZero() {
				return nil
			}
			return TimestampOf(t)
		}
	case KindDate:
		if t, ok := v.(time.Time); ok {
			if t.IsZero() {
				return nil
			}
			return DateOf(t)
		}
	case KindTime:
		if d, ok := v.(time.Duration); ok {
			return Time(d)
		}
	case KindDecimal:
		if dec, ok := v.(*inf.Dec); ok {
			if dec == nil {
				return nil
			}
			return NewDecimal(dec)
		}
	case KindInet:
		switch ip := v.(type) {
		case net.IP:
			if len(ip) == 0 {
				return nil
			}
			if inet, ok := InetOf(ip); ok {
				return inet
			}
		case string:
			if inet, err := ParseInet(ip); err == nil {
				return inet
			}
		}
	case KindFloat:
		if f, ok := v.(float32); ok {
			return Float(f)
		}
	}

	return v
}

func toUUID(v any) (any, error) {
	switch val := v.(type) {
	case string:
		id, err := ParseUUID(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
		return id, nil
	case []byte:
		id, err := uuid.FromBytes(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
		return UUID(id), nil
	}

	if id, ok := uuidBytes(v); ok {
		return UUID(id), nil
	}

	return nil, conversionError(v, KindUUID)
}

// uuidBytes extracts 16 raw bytes from any [16]byte-based type, which covers
// uuid.UUID and the driver UUID types.
func uuidBytes(v any) ([16]byte, bool) {
	if id, ok := v.([16]byte); ok {
		return id, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array || rv.Len() != 16 || rv.Type().Elem().Kind() != reflect.Uint8 {
		return [16]byte{}, false
	}

	var id [16]byte
	for i := range id {
		id[i] = byte(rv.Index(i).Uint())
	}

	return id, true
}

func toDate(v any) (any, error) {
	t, err := AsDateTime(v)
	if err != nil {
		return nil, conversionError(v, KindDate)
	}

	return DateOf(t), nil
}

func toTime(v any) (any, error) {
	switch val := v.(type) {
	case time.Duration:
		return Time(val), nil
	case time.Time:
		return TimeOf(val), nil
	case string:
		if nanos, err := strconv.ParseInt(val, 10, 64); err == nil {
			return Time(nanos), nil
		}
		for _, layout := range []string{"15:04:05.999999999", time.TimeOnly} {
			if t, err := time.Parse(layout, val); err == nil {
				return TimeOf(t), nil
			}
		}
		return nil, conversionError(v, KindTime)
	}

	if nanos, ok := asInt64(v); ok {
		return Time(nanos), nil
	}

	return nil, conversionError(v, KindTime)
}

func toDecimal(v any) (any, error) {
	switch val := v.(type) {
	case *inf.Dec:
		return NewDecimal(val), nil
	case inf.Dec:
		return NewDecimal(&val), nil
	case string:
		return ParseDecimal(val)
	case float32:
		return ParseDecimal(strconv.FormatFloat(float64(val), 'f', -1, 32))
	case float64:
		return ParseDecimal(strconv.FormatFloat(val, 'f', -1, 64))
	}

	if n, ok := asInt64(v); ok {
		return NewDecimal(inf.NewDec(n, 0)), nil
	}

	return nil, conversionError(v, KindDecimal)
}

func toInet(v any) (any, error) {
	switch val := v.(type) {
	case string:
		inet, err := ParseInet(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConversion, err)
		}
		return inet, nil
	case net.IP:
		if inet, ok := InetOf(val); ok {
			return inet, nil
		}
	case netip.Addr:
		if val.IsValid() {
			return Inet{addr: val.Unmap()}, nil
		}
	}

	return nil, conversionError(v, KindInet)
}

func toFloat(v any) (any, error) {
	switch val := v.(type) {
	case float32:
		return Float(val), nil
	case bool:
		return nil, conversionError(v, KindFloat)
	case string:
		v = strings.TrimSpace(val)
	}

	if n, ok := asInt64(v); ok {
		return Float(float32(n)), nil
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}

	return Float(float32(f)), nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, conversionError(s, KindTimestamp)
}

// asInt64 converts any integer kind, signed or unsigned. Strings, bools and
// floats are rejected.
func asInt64(v any) (int64, bool) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToInt64E(v)
		return n, err == nil
	default:
		return 0, false
	}
}
