package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cassorm/result"
)

type catalogRunner struct {
	tables   map[string]bool
	err      error
	stmt     string
	bindings []any
}

func (r *catalogRunner) Execute(_ context.Context, stmt string, bindings []any) (*result.Collection, error) {
	r.stmt, r.bindings = stmt, bindings
	if r.err != nil {
		return nil, r.err
	}

	table, _ := bindings[1].(string)
	if !r.tables[table] {
		return result.Empty(), nil
	}

	return result.New([]result.Row{{"table_name": table}}, nil, nil), nil
}

func TestHasTable(t *testing.T) {
	runner := &catalogRunner{tables: map[string]bool{"users": true}}
	b := NewBuilder(runner, "app")
	assert.Equal(t, "app", b.Keyspace())

	ok, err := b.HasTable(context.Background(), "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "SELECT table_name FROM system_schema.tables WHERE keyspace_name = ? AND table_name = ?", runner.stmt)
	assert.Equal(t, []any{"app", "users"}, runner.bindings)

	ok, err = b.HasTable(context.Background(), "orders")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasTablePropagatesErrors(t *testing.T) {
	cause := errors.New("unauthorized")
	b := NewBuilder(&catalogRunner{err: cause}, "app")

	ok, err := b.HasTable(context.Background(), "users")
	assert.False(t, ok)
	assert.ErrorIs(t, err, cause)
}
