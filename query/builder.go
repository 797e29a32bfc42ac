// Package query translates fluent query descriptions into CQL statements
// with ordered bindings.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/arloliu/cassorm/result"
)

// ErrInvalidQuery is the category for malformed builder usage.
var ErrInvalidQuery = errors.New("cassorm: invalid query")

// Runner executes statements. *cassorm.Connection implements it.
type Runner interface {
	// Execute runs stmt with bindings and returns the first page of results.
	Execute(ctx context.Context, stmt string, bindings []any) (*result.Collection, error)
}

// Where is one restriction in a WHERE clause.
type Where struct {
	Column   string
	Operator string
	Value    any

	// Values holds the list for IN restrictions.
	Values []any
	In     bool
}

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Direction string
}

var operators = map[string]struct{}{
	"=": {}, "<": {}, ">": {}, "<=": {}, ">=": {}, "!=": {},
	"CONTAINS": {}, "CONTAINS KEY": {}, "LIKE": {},
}

// Builder describes a single-table CQL statement.
//
// Column names are never qualified with the table name. A Builder is not
// safe for concurrent use; use Clone to derive independent builders.
type Builder struct {
	runner         Runner
	grammar        Grammar
	table          string
	columns        []string
	wheres         []Where
	orders         []Order
	limit          int
	allowFiltering bool
	err            error
}

// NewBuilder creates a builder bound to runner.
//
// Parameters:
//   - runner: Statement executor; may be nil when only ToCQL is used
//   - table: Table name
//
// Returns:
//   - *Builder: A new builder selecting all columns
func NewBuilder(runner Runner, table string) *Builder {
	return &Builder{runner: runner, table: table}
}

// From sets the table.
func (b *Builder) From(table string) *Builder {
	b.table = table
	return b
}

// Table returns the table name.
func (b *Builder) Table() string {
	return b.table
}

// Select restricts the selected columns. No columns means all columns.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns[:0:0], columns...)
	return b
}

// Where adds a restriction. Operators are case-insensitive.
func (b *Builder) Where(column, operator string, value any) *Builder {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if _, ok := operators[op]; !ok {
		b.setErr(fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, operator))
		return b
	}
	b.wheres = append(b.wheres, Where{Column: column, Operator: op, Value: value})

	return b
}

// WhereIn adds an IN restriction. An empty values list is recorded as an
// ErrInvalidQuery error.
func (b *Builder) WhereIn(column string, values []any) *Builder {
	if len(values) == 0 {
		b.setErr(fmt.Errorf("%w: empty IN list for %q", ErrInvalidQuery, column))
		return b
	}
	b.wheres = append(b.wheres, Where{Column: column, Operator: "IN", Values: values, In: true})
	return b
}

// Wheres returns the restrictions added so far.
func (b *Builder) Wheres() []Where {
	return b.wheres
}

// OrderBy adds an ordering term. Direction defaults to ASC.
func (b *Builder) OrderBy(column, direction string) *Builder {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	switch dir {
	case "":
		dir = "ASC"
	case "ASC", "DESC":
	default:
		b.setErr(fmt.Errorf("%w: unsupported order direction %q", ErrInvalidQuery, direction))
		return b
	}
	b.orders = append(b.orders, Order{Column: column, Direction: dir})

	return b
}

// Limit caps the number of rows. Zero removes the cap.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// AllowFiltering appends ALLOW FILTERING to selects and counts.
func (b *Builder) AllowFiltering() *Builder {
	b.allowFiltering = true
	return b
}

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	clone := *b
	clone.columns = append([]string(nil), b.columns...)
	clone.wheres = append([]Where(nil), b.wheres...)
	clone.orders = append([]Order(nil), b.orders...)

	return &clone
}

// Err returns the first builder misuse recorded, if any.
func (b *Builder) Err() error {
	return b.err
}

// ToCQL compiles the builder into a SELECT statement and its bindings.
func (b *Builder) ToCQL() (string, []any) {
	return b.grammar.CompileSelect(b)
}

// Get executes the SELECT and returns the first page.
func (b *Builder) Get(ctx context.Context) (*result.Collection, error) {
	stmt, bindings := b.grammar.CompileSelect(b)
	return b.run(ctx, stmt, bindings)
}

// GetPage executes the SELECT and returns the first page of a paged result.
//
// It is equivalent to Get; the returned collection fetches further pages
// on demand.
func (b *Builder) GetPage(ctx context.Context) (*result.Collection, error) {
	return b.Get(ctx)
}

// First returns the first matching row.
func (b *Builder) First(ctx context.Context) (result.Row, bool, error) {
	rows, err := b.Clone().Limit(1).Get(ctx)
	if err != nil {
		return nil, false, err
	}
	row, ok := rows.First()

	return row, ok, nil
}

// Count returns the number of matching rows.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	stmt, bindings := b.grammar.CompileCount(b)
	rows, err := b.run(ctx, stmt, bindings)
	if err != nil {
		return 0, err
	}

	row, ok := rows.First()
	if !ok {
		return 0, nil
	}

	return cast.ToInt64E(row["count"])
}

// Insert writes one row.
func (b *Builder) Insert(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: insert without values", ErrInvalidQuery)
	}
	stmt, bindings := b.grammar.CompileInsert(b, values)
	_, err := b.run(ctx, stmt, bindings)

	return err
}

// Update sets values on every row matching the restrictions.
func (b *Builder) Update(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: update without values", ErrInvalidQuery)
	}
	if len(b.wheres) == 0 {
		return fmt.Errorf("%w: update without restrictions", ErrInvalidQuery)
	}
	stmt, bindings := b.grammar.CompileUpdate(b, values)
	_, err := b.run(ctx, stmt, bindings)

	return err
}

// Delete removes every row matching the restrictions.
func (b *Builder) Delete(ctx context.Context) error {
	if len(b.wheres) == 0 {
		return fmt.Errorf("%w: delete without restrictions", ErrInvalidQuery)
	}
	stmt, bindings := b.grammar.CompileDelete(b)
	_, err := b.run(ctx, stmt, bindings)

	return err
}

func (b *Builder) run(ctx context.Context, stmt string, bindings []any) (*result.Collection, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.runner == nil {
		return nil, fmt.Errorf("%w: builder has no runner", ErrInvalidQuery)
	}
	if b.table == "" {
		return nil, fmt.Errorf("%w: no table", ErrInvalidQuery)
	}

	return b.runner.Execute(ctx, stmt, bindings)
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
