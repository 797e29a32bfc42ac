// Package schema answers structural questions about the connected keyspace.
package schema

import (
	"context"

	"github.com/arloliu/cassorm/query"
)

// Builder inspects the schema catalog of one keyspace.
type Builder struct {
	runner   query.Runner
	keyspace string
	grammar  query.Grammar
}

// NewBuilder creates a schema builder.
//
// Parameters:
//   - runner: Statement executor, usually the *cassorm.Connection
//   - keyspace: Keyspace to inspect
//
// Returns:
//   - *Builder: The schema builder
func NewBuilder(runner query.Runner, keyspace string) *Builder {
	return &Builder{runner: runner, keyspace: keyspace}
}

// Keyspace returns the inspected keyspace.
func (b *Builder) Keyspace() string {
	return b.keyspace
}

// HasTable reports whether table exists in the keyspace.
//
// A failing catalog query is returned as an error, never as false.
//
// Parameters:
//   - ctx: Context for the catalog query
//   - table: Table name
//
// Returns:
//   - bool: true if at least one catalog row matched
//   - error: The runner's error, typically *types.StatementError
func (b *Builder) HasTable(ctx context.Context, table string) (bool, error) {
	rows, err := b.runner.Execute(ctx, b.grammar.CompileTableExists(), []any{b.keyspace, table})
	if err != nil {
		return false, err
	}

	return rows.Count() > 0, nil
}
