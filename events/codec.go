package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/tinylib/msgp/msgp"

	"github.com/arloliu/cassorm/marshal"
)

// uuidExtensionType is the MessagePack extension type carrying UUIDs.
// msgp reserves 3, 4 and 5 for complex64, complex128 and time.Time.
const uuidExtensionType int8 = 10

func init() {
	msgp.RegisterExtension(uuidExtensionType, func() msgp.Extension {
		return new(uuidExt)
	})
}

// uuidExt carries a UUID through MessagePack so that it decodes back to
// marshal.UUID instead of a plain string.
type uuidExt [16]byte

func (u *uuidExt) ExtensionType() int8 { return uuidExtensionType }

func (u *uuidExt) Len() int { return len(u) }

func (u *uuidExt) MarshalBinaryTo(b []byte) error {
	copy(b, u[:])
	return nil
}

func (u *uuidExt) UnmarshalBinary(b []byte) error {
	if len(b) != len(u) {
		return fmt.Errorf("cassorm: uuid extension has %d bytes", len(b))
	}
	copy(u[:], b)

	return nil
}

// Encode serializes ev as a MessagePack map.
//
// UUIDs survive the round trip as marshal.UUID. Every other store-native
// value is projected to its comparable scalar, so a Timestamp decodes as
// epoch milliseconds and a Decimal as its exact string.
//
// Parameters:
//   - ev: The event to encode
//
// Returns:
//   - []byte: MessagePack bytes
//   - error: msgp.ErrUnsupportedType if an attribute cannot be encoded
func Encode(ev Event) ([]byte, error) {
	if len(ev.Attributes) > int(^uint32(0)) {
		return nil, errors.New("cassorm: too many attributes to encode")
	}

	buf := msgp.AppendMapHeader(nil, 5)
	buf = msgp.AppendString(buf, "name")
	buf = msgp.AppendString(buf, string(ev.Name))
	buf = msgp.AppendString(buf, "table")
	buf = msgp.AppendString(buf, ev.Table)
	buf = msgp.AppendString(buf, "occurred_at")
	buf = msgp.AppendInt64(buf, ev.OccurredAt.UnixMilli())

	var err error
	buf = msgp.AppendString(buf, "key")
	if buf, err = appendValue(buf, ev.Key); err != nil {
		return nil, fmt.Errorf("cassorm: failed to encode key: %w", err)
	}

	buf = msgp.AppendString(buf, "attributes")
	//nolint:gosec // overflow checked above
	buf = msgp.AppendMapHeader(buf, uint32(len(ev.Attributes)))
	for name, v := range ev.Attributes {
		buf = msgp.AppendString(buf, name)
		if buf, err = appendValue(buf, v); err != nil {
			return nil, fmt.Errorf("cassorm: failed to encode attribute %s: %w", name, err)
		}
	}

	return buf, nil
}

// Decode parses bytes produced by Encode. Unknown fields are skipped.
//
// Parameters:
//   - data: MessagePack bytes
//
// Returns:
//   - Event: The decoded event; OccurredAt is in UTC
//   - error: Decoding error if data is malformed
func Decode(data []byte) (Event, error) {
	var ev Event

	sz, buf, err := msgp.ReadMapHeaderBytes(data)
	if err != nil {
		return Event{}, fmt.Errorf("cassorm: failed to read event header: %w", err)
	}

	for i := uint32(0); i < sz; i++ {
		var field string
		field, buf, err = msgp.ReadStringBytes(buf)
		if err != nil {
			return Event{}, fmt.Errorf("cassorm: failed to read event field: %w", err)
		}

		switch field {
		case "name":
			var name string
			name, buf, err = msgp.ReadStringBytes(buf)
			ev.Name = Name(name)
		case "table":
			ev.Table, buf, err = msgp.ReadStringBytes(buf)
		case "occurred_at":
			var ms int64
			ms, buf, err = msgp.ReadInt64Bytes(buf)
			ev.OccurredAt = time.UnixMilli(ms).UTC()
		case "key":
			ev.Key, buf, err = readValue(buf)
		case "attributes":
			ev.Attributes, buf, err = readAttributes(buf)
		default:
			buf, err = msgp.Skip(buf)
		}
		if err != nil {
			return Event{}, fmt.Errorf("cassorm: failed to decode event field %s: %w", field, err)
		}
	}

	return ev, nil
}

func appendValue(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case marshal.UUID:
		ext := uuidExt(val)
		return msgp.AppendExtension(buf, &ext)
	case [16]byte:
		ext := uuidExt(val)
		return msgp.AppendExtension(buf, &ext)
	case marshal.Value:
		return msgp.AppendIntf(buf, val.Scalar())
	default:
		return msgp.AppendIntf(buf, v)
	}
}

func readValue(buf []byte) (any, []byte, error) {
	v, rest, err := msgp.ReadIntfBytes(buf)
	if err != nil {
		return nil, buf, err
	}
	if ext, ok := v.(*uuidExt); ok {
		return marshal.UUID(*ext), rest, nil
	}

	return v, rest, nil
}

func readAttributes(buf []byte) (map[string]any, []byte, error) {
	if msgp.IsNil(buf) {
		return nil, buf[1:], nil
	}

	sz, buf, err := msgp.ReadMapHeaderBytes(buf)
	if err != nil {
		return nil, buf, err
	}

	attrs := make(map[string]any, sz)
	for i := uint32(0); i < sz; i++ {
		var name string
		name, buf, err = msgp.ReadStringBytes(buf)
		if err != nil {
			return nil, buf, err
		}
		attrs[name], buf, err = readValue(buf)
		if err != nil {
			return nil, buf, err
		}
	}

	return attrs, buf, nil
}
