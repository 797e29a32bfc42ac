package marshal

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"
)

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"uuid":      KindUUID,
		"timeuuid":  KindUUID,
		"timestamp": KindTimestamp,
		"date":      KindDate,
		"time":      KindTime,
		"decimal":   KindDecimal,
		"inet":      KindInet,
		"float":     KindFloat,
		"varchar":   KindOther,
		"":          KindOther,
	}

	for name, want := range tests {
		assert.Equal(t, want, KindOf(name), name)
	}
	assert.Equal(t, "timestamp", KindTimestamp.String())
	assert.Equal(t, "other", Kind(99).String())
}

func TestToStoreValueNilAndPassthrough(t *testing.T) {
	v, err := ToStoreValue(nil, KindUUID)
	require.NoError(t, err)
	assert.Nil(t, v)

	id := NewUUID()
	v, err = ToStoreValue(id, KindUUID)
	require.NoError(t, err)
	assert.Equal(t, id, v)

	v, err = ToStoreValue("plain", KindOther)
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
}

// TestScalarRoundTrip checks that for every store-native kind, converting a
// value and projecting it again yields the same scalar.
func TestScalarRoundTrip(t *testing.T) {
	instant := time.Date(2024, 3, 15, 10, 20, 30, 123_000_000, time.UTC)

	tests := []struct {
		name   string
		input  any
		kind   Kind
		scalar any
	}{
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", KindUUID, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"timestamp", instant, KindTimestamp, instant.UnixMilli()},
		{"timestamp epoch ms", int64(1_700_000_000_123), KindTimestamp, int64(1_700_000_000_123)},
		{"timestamp epoch ms uint", uint64(1_700_000_000_123), KindTimestamp, int64(1_700_000_000_123)},
		{"date", instant, KindDate, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).Unix()},
		{"time", 37230 * time.Second, KindTime, "37230000000000"},
		{"decimal", "12345.678900", KindDecimal, "12345.678900"},
		{"inet", "192.168.1.20", KindInet, "192.168.1.20"},
		{"inet6", "2001:db8::1", KindInet, "2001:db8::1"},
		{"float", 1.5, KindFloat, float32(1.5)},
		{"float from uint", uint(5), KindFloat, float32(5)},
		{"float from string", " 2.5 ", KindFloat, float32(2.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ToStoreValue(tt.input, tt.kind)
			require.NoError(t, err)
			require.True(t, IsStoreNative(v))
			assert.Equal(t, tt.kind, v.(Value).Kind())

			scalar := ToComparableScalar(v)
			assert.Equal(t, tt.scalar, scalar)

			again, err := ToStoreValue(v, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, scalar, ToComparableScalar(again))
		})
	}
}

func TestToComparableScalarNonNative(t *testing.T) {
	assert.Equal(t, 42, ToComparableScalar(42))
	assert.Equal(t, "x", ToComparableScalar("x"))
	assert.Nil(t, ToComparableScalar(nil))
}

// TestIsOrderComparableQuirk documents that only UUID and Inet report
// order-comparable even though every wrapper has an ordered scalar.
func TestIsOrderComparableQuirk(t *testing.T) {
	inet, err := ParseInet("10.0.0.1")
	require.NoError(t, err)

	assert.True(t, IsOrderComparable(NewUUID()))
	assert.True(t, IsOrderComparable(inet))

	assert.False(t, IsOrderComparable(Now()))
	assert.False(t, IsOrderComparable(DateOf(time.Now())))
	assert.False(t, IsOrderComparable(Time(0)))
	assert.False(t, IsOrderComparable(NewDecimal(inf.NewDec(1, 0))))
	assert.False(t, IsOrderComparable(Float(1)))
	assert.False(t, IsOrderComparable("10.0.0.1"))

	for _, v := range []any{Now(), Date(0), Time(0), Float(0), NewDecimal(nil)} {
		assert.True(t, IsStoreNative(v))
	}
}

func TestFromDateTime(t *testing.T) {
	ts := Timestamp(1_700_000_000_123)
	got, err := FromDateTime(ts)
	require.NoError(t, err)
	assert.Equal(t, ts, got)

	instant := time.Date(2024, 1, 2, 3, 4, 5, 678_900_000, time.UTC)
	got, err = FromDateTime(instant)
	require.NoError(t, err)
	assert.Equal(t, Timestamp(instant.UnixMilli()), got)

	got, err = FromDateTime(int64(1_700_000_000))
	require.NoError(t, err)
	assert.Equal(t, Timestamp(1_700_000_000_000), got)

	got, err = FromDateTime("2024-01-02 03:04:05")
	require.NoError(t, err)
	assert.Equal(t, Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli()), got)

	got, err = FromDateTime("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, Timestamp(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()), got)

	got, err = FromDateTime(Date(86400))
	require.NoError(t, err)
	assert.Equal(t, Timestamp(86_400_000), got)

	_, err = FromDateTime("not a date")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))

	_, err = FromDateTime(struct{}{})
	assert.True(t, errors.Is(err, ErrConversion))
}

func TestConversionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input any
		kind  Kind
	}{
		{"bad uuid", "nope", KindUUID},
		{"uuid from int", 7, KindUUID},
		{"bad inet", "999.1.1.1", KindInet},
		{"bad decimal", "1.2.3", KindDecimal},
		{"bad float", "abc", KindFloat},
		{"float from bool", true, KindFloat},
		{"bad time", "25:99", KindTime},
		{"bad date", true, KindDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToStoreValue(tt.input, tt.kind)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConversion))
		})
	}
}

func TestBindValues(t *testing.T) {
	id := NewTimeUUID()
	inet, err := ParseInet("::ffff:10.1.2.3")
	require.NoError(t, err)

	bound := BindValues([]any{id, Timestamp(1000), Time(5), Float(2), inet, "text", 7})

	assert.Equal(t, [16]byte(id), bound[0])
	assert.Equal(t, time.UnixMilli(1000).UTC(), bound[1])
	assert.Equal(t, time.Duration(5), bound[2])
	assert.Equal(t, float32(2), bound[3])
	assert.Equal(t, net.IP{10, 1, 2, 3}, bound[4])
	assert.Equal(t, "text", bound[5])
	assert.Equal(t, 7, bound[6])

	assert.Empty(t, BindValues(nil))
}

func TestHydrate(t *testing.T) {
	raw := uuid.New()
	assert.Equal(t, UUID(raw), Hydrate(KindUUID, raw))
	assert.Nil(t, Hydrate(KindUUID, [16]byte{}))

	instant := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, Timestamp(1_700_000_000_000), Hydrate(KindTimestamp, instant))
	assert.Nil(t, Hydrate(KindTimestamp, time.Time{}))
	assert.Equal(t, DateOf(instant), Hydrate(KindDate, instant))

	assert.Equal(t, Time(90), Hydrate(KindTime, time.Duration(90)))
	assert.Equal(t, Float(0.25), Hydrate(KindFloat, float32(0.25)))

	dec := inf.NewDec(12345, 2)
	assert.Equal(t, "123.45", ToComparableScalar(Hydrate(KindDecimal, dec)))
	assert.Nil(t, Hydrate(KindDecimal, (*inf.Dec)(nil)))

	assert.Equal(t, "127.0.0.1", ToComparableScalar(Hydrate(KindInet, net.ParseIP("127.0.0.1"))))
	assert.Nil(t, Hydrate(KindInet, net.IP(nil)))

	assert.Equal(t, "kept", Hydrate(KindOther, "kept"))
	assert.Equal(t, 12, Hydrate(KindTimestamp, 12))
	assert.Nil(t, Hydrate(KindUUID, nil))
}

func TestTimeUUIDVersion(t *testing.T) {
	assert.Equal(t, 1, NewTimeUUID().Version())
	assert.Equal(t, 4, NewUUID().Version())
}

func TestTimeParsing(t *testing.T) {
	v, err := ToStoreValue("10:20:30", KindTime)
	require.NoError(t, err)
	assert.Equal(t, Time(10*time.Hour+20*time.Minute+30*time.Second), v)

	v, err = ToStoreValue(int64(1500), KindTime)
	require.NoError(t, err)
	assert.Equal(t, "1500", v.(Time).String())
}

func TestDecimalFromNumbers(t *testing.T) {
	v, err := ToStoreValue(42, KindDecimal)
	require.NoError(t, err)
	assert.Equal(t, "42", v.(Decimal).String())

	v, err = ToStoreValue(uint64(5), KindDecimal)
	require.NoError(t, err)
	assert.Equal(t, "5", v.(Decimal).String())

	v, err = ToStoreValue(0.125, KindDecimal)
	require.NoError(t, err)
	assert.Equal(t, "0.125", v.(Decimal).String())

	assert.Equal(t, "0", Decimal{}.String())
}
