package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"github.com/arloliu/cassorm/marshal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DateFormat is the layout dates are serialized with by ToMap.
const DateFormat = time.DateTime

func (d *Definition) hasCast(key string) bool {
	_, ok := d.casts[key]
	return ok
}

func (d *Definition) isDateCastable(key string) bool {
	switch d.casts[key] {
	case "date", "datetime":
		return true
	default:
		return false
	}
}

func (d *Definition) isJSONCastable(key string) bool {
	switch d.casts[key] {
	case "array", "json", "object", "collection":
		return true
	default:
		return false
	}
}

// castAttribute projects v through the cast declared for key. A value the
// cast cannot represent is returned unchanged.
func (d *Definition) castAttribute(key string, v any) any {
	if v == nil {
		return nil
	}

	switch d.casts[key] {
	case "int", "integer":
		return castOr(v, cast.ToInt64E)
	case "real", "float", "double":
		return castOr(v, cast.ToFloat64E)
	case "string":
		if sv, ok := v.(marshal.Value); ok {
			return sv.String()
		}
		return castOr(v, cast.ToStringE)
	case "bool", "boolean":
		return castOr(v, cast.ToBoolE)
	case "array", "json", "object", "collection":
		return fromJSON(v)
	case "date":
		if t, err := marshal.AsDateTime(v); err == nil {
			y, m, day := t.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		}
	case "datetime":
		if t, err := marshal.AsDateTime(v); err == nil {
			return t
		}
	case "timestamp":
		if t, err := marshal.AsDateTime(v); err == nil {
			return t.Unix()
		}
	case "decimal":
		if dec, err := marshal.ToStoreValue(v, marshal.KindDecimal); err == nil {
			return marshal.ToComparableScalar(dec)
		}
	}

	return v
}

func castOr[T any](v any, fn func(any) (T, error)) any {
	if sv, ok := v.(marshal.Value); ok {
		v = sv.Scalar()
	}
	out, err := fn(v)
	if err != nil {
		return v
	}

	return out
}

// asJSON encodes v for storage in a JSON-cast column. Strings are assumed to
// hold JSON already.
func asJSON(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cassorm: cannot encode attribute as JSON: %w", err)
	}

	return string(data), nil
}

// fromJSON decodes a JSON-cast column. Non-string values and invalid JSON are
// returned unchanged.
func fromJSON(v any) any {
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return v
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}

	return out
}

// isNumeric reports whether v is a number or a string holding one.
func isNumeric(v any) bool {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return err == nil
	default:
		return false
	}
}

// numericString renders a numeric value the way it is compared: integers in
// base 10, floats in their shortest exact form, strings as given.
func numericString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return cast.ToString(v)
	}
}
