package integration_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cassorm"
	v2 "github.com/arloliu/cassorm/adapter/cql/v2"
	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/test/testutil"
	"github.com/arloliu/cassorm/types"
)

func TestConnectBothDrivers(t *testing.T) {
	tests := []struct {
		name string
		opts []cassorm.Option
	}{
		{"gocql v1", nil},
		{"gocql v2", []cassorm.Option{cassorm.WithDialer(v2.NewDialer())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := connect(t, tt.opts...)

			rows, err := conn.Select(t.Context(), "SELECT release_version FROM system.local", nil)
			require.NoError(t, err)
			row, ok := rows.First()
			require.True(t, ok)
			assert.NotEmpty(t, row["release_version"])
		})
	}
}

func TestSchemaHasTable(t *testing.T) {
	conn := connect(t)
	table := createTable(t, conn, "users", usersTableSchema)

	exists, err := conn.Schema().HasTable(t.Context(), table)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = conn.Schema().HasTable(t.Context(), "no_such_table")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreNativeValuesRoundTrip(t *testing.T) {
	conn := connect(t)
	table := createTable(t, conn, "values", valuesTableSchema)

	id := marshal.NewTimeUUID()
	seen := time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)
	price, err := marshal.ParseDecimal("1234.50")
	require.NoError(t, err)
	addr, err := marshal.ParseInet("192.168.1.20")
	require.NoError(t, err)

	err = conn.Table(table).Insert(t.Context(), map[string]any{
		"id":      id,
		"seen_at": marshal.TimestampOf(seen),
		"price":   price,
		"addr":    addr,
		"active":  true,
		"label":   "first",
	})
	require.NoError(t, err)

	row, ok, err := conn.Table(table).Where("id", "=", id).First(t.Context())
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, id, row["id"])
	assert.Equal(t, marshal.TimestampOf(seen), row["seen_at"])
	assert.Equal(t, "1234.50", row["price"].(marshal.Decimal).String())
	assert.Equal(t, addr, row["addr"])
	assert.Equal(t, true, row["active"])
	assert.Equal(t, "first", row["label"])
}

func TestPagingAcrossServerPages(t *testing.T) {
	cfg := clusterConfig(t)
	cfg.PageSize = 10
	collector := testutil.NewTestMetricsCollector()
	conn, err := cassorm.Connect(t.Context(), cfg, cassorm.WithMetrics(collector))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	table := createTable(t, conn, "events", eventsTableSchema)
	for i := 0; i < 25; i++ {
		err := conn.Table(table).Insert(t.Context(), map[string]any{
			"bucket":  1,
			"seq":     i,
			"payload": fmt.Sprintf("event-%d", i),
		})
		require.NoError(t, err)
	}

	rows, err := conn.Table(table).Where("bucket", "=", 1).Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 10, rows.Count())
	assert.True(t, rows.HasMorePages())

	all, err := rows.All(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 25)
	assert.Equal(t, 0, all[0]["seq"])
	assert.Equal(t, 24, all[24]["seq"])
	assert.Equal(t, int64(2), collector.PageFetches)

	count, err := conn.Table(table).Where("bucket", "=", 1).Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(25), count)
}

func TestStatementErrorFromServer(t *testing.T) {
	conn := connect(t)

	_, err := conn.Select(t.Context(), "SELECT * FROM no_such_table", nil)
	require.Error(t, err)

	var stmtErr *types.StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, "SELECT * FROM no_such_table", stmtErr.Statement)
	assert.True(t, errors.Is(err, cassorm.ErrStatement))
}

func TestReconnectAfterDisconnect(t *testing.T) {
	conn := connect(t)

	conn.Disconnect()
	assert.Nil(t, conn.Session())

	_, err := conn.Select(t.Context(), "SELECT release_version FROM system.local", nil)
	require.NoError(t, err)
	assert.NotNil(t, conn.Session())
}
