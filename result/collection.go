// Package result provides the paged row collection returned by every
// statement execution.
package result

import (
	"context"

	"github.com/arloliu/cassorm/adapter/cql"
	"github.com/arloliu/cassorm/types"
)

// Row is a single result row keyed by column name.
//
// Store-native values are already wrapped by the marshal package.
type Row map[string]any

// FetchFunc fetches the page identified by pageState.
type FetchFunc func(ctx context.Context, pageState []byte) (*Collection, error)

// Collection holds one page of rows and the means to fetch the next one.
//
// Pages are fetched only on demand; abandoning a Collection simply stops
// fetching. A Collection is not safe for concurrent use.
type Collection struct {
	rows      []Row
	columns   []cql.ColumnInfo
	warnings  []string
	pageState []byte
	fetch     FetchFunc
}

// New creates a collection for one page.
//
// Parameters:
//   - rows: Rows of the current page
//   - pageState: Opaque token for the next page, empty on the last page
//   - fetch: Function fetching a page by token; nil marks the last page
//
// Returns:
//   - *Collection: The page
func New(rows []Row, pageState []byte, fetch FetchFunc) *Collection {
	return &Collection{rows: rows, pageState: pageState, fetch: fetch}
}

// Empty returns a collection with no rows and no further pages.
func Empty() *Collection {
	return &Collection{}
}

// WithMeta attaches column metadata and server warnings, returning c.
func (c *Collection) WithMeta(columns []cql.ColumnInfo, warnings []string) *Collection {
	c.columns = columns
	c.warnings = warnings

	return c
}

// Rows returns the rows of the current page.
func (c *Collection) Rows() []Row {
	return c.rows
}

// Count returns the number of rows in the current page.
func (c *Collection) Count() int {
	return len(c.rows)
}

// IsEmpty reports whether the current page has no rows.
func (c *Collection) IsEmpty() bool {
	return len(c.rows) == 0
}

// First returns the first row of the current page.
func (c *Collection) First() (Row, bool) {
	if len(c.rows) == 0 {
		return nil, false
	}

	return c.rows[0], true
}

// Columns returns the column metadata reported by the store.
func (c *Collection) Columns() []cql.ColumnInfo {
	return c.columns
}

// Warnings returns server warnings attached to the page.
func (c *Collection) Warnings() []string {
	return c.warnings
}

// PageState returns the opaque token of the next page.
func (c *Collection) PageState() []byte {
	return c.pageState
}

// IsLastPage reports whether no further page exists.
func (c *Collection) IsLastPage() bool {
	return len(c.pageState) == 0 || c.fetch == nil
}

// HasMorePages reports whether NextPage would fetch another page.
func (c *Collection) HasMorePages() bool {
	return !c.IsLastPage()
}

// NextPage fetches the page following this one.
//
// Returns:
//   - *Collection: The next page
//   - error: types.ErrNoMorePages on the last page, or the fetch error
func (c *Collection) NextPage(ctx context.Context) (*Collection, error) {
	if c.IsLastPage() {
		return nil, types.ErrNoMorePages
	}

	return c.fetch(ctx, c.pageState)
}

// Each calls fn for every row of this and all following pages, fetching
// pages lazily. Iteration stops when fn returns false.
func (c *Collection) Each(ctx context.Context, fn func(Row) bool) error {
	page := c
	for {
		for _, row := range page.rows {
			if !fn(row) {
				return nil
			}
		}
		if page.IsLastPage() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := page.NextPage(ctx)
		if err != nil {
			return err
		}
		page = next
	}
}

// All drains this and all following pages.
func (c *Collection) All(ctx context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(c.rows))
	err := c.Each(ctx, func(row Row) bool {
		rows = append(rows, row)
		return true
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Pluck returns the values of column across the current page.
func (c *Collection) Pluck(column string) []any {
	values := make([]any, len(c.rows))
	for i, row := range c.rows {
		values[i] = row[column]
	}

	return values
}
