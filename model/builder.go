package model

import (
	"context"
	"fmt"

	"github.com/arloliu/cassorm/query"
	"github.com/arloliu/cassorm/result"
	"github.com/arloliu/cassorm/types"
)

// Builder queries the models of one definition.
//
// Global scopes are applied when the query runs, so restrictions may be
// added in any order. A Builder is not safe for concurrent use.
type Builder struct {
	def     *Definition
	runner  query.Runner
	q       *query.Builder
	trashed trashedMode
	without map[string]bool
}

func newBuilder(d *Definition, runner query.Runner) *Builder {
	q := query.NewBuilder(runner, d.table)
	if d.allowFiltering {
		q.AllowFiltering()
	}

	return &Builder{
		def:     d,
		runner:  runner,
		q:       q,
		without: make(map[string]bool),
	}
}

// Query returns the underlying statement builder.
func (b *Builder) Query() *query.Builder {
	return b.q
}

// Select restricts the selected columns.
func (b *Builder) Select(columns ...string) *Builder {
	b.q.Select(columns...)
	return b
}

// Where adds a restriction.
func (b *Builder) Where(column, operator string, value any) *Builder {
	b.q.Where(column, operator, value)
	return b
}

// WhereIn adds an IN restriction.
func (b *Builder) WhereIn(column string, values []any) *Builder {
	b.q.WhereIn(column, values)
	return b
}

// OrderBy adds an ordering term.
func (b *Builder) OrderBy(column, direction string) *Builder {
	b.q.OrderBy(column, direction)
	return b
}

// Limit caps the number of rows.
func (b *Builder) Limit(n int) *Builder {
	b.q.Limit(n)
	return b
}

// AllowFiltering appends ALLOW FILTERING.
func (b *Builder) AllowFiltering() *Builder {
	b.q.AllowFiltering()
	return b
}

// WithTrashed includes soft-deleted models.
func (b *Builder) WithTrashed() *Builder {
	b.trashed = withTrashed
	return b
}

// OnlyTrashed returns soft-deleted models only.
func (b *Builder) OnlyTrashed() *Builder {
	b.trashed = onlyTrashed
	return b
}

// WithoutGlobalScope disables the named global scope for this query.
func (b *Builder) WithoutGlobalScope(name string) *Builder {
	b.without[name] = true
	return b
}

// Find returns the model whose key equals id. A string id is parsed as a
// UUID when the key kind is UUID.
//
// Returns:
//   - *Model: The model
//   - error: types.ErrModelNotFound, a UUID parse error, or a statement error
func (b *Builder) Find(ctx context.Context, id any) (*Model, error) {
	key, err := b.def.normalizeKey(id)
	if err != nil {
		return nil, fmt.Errorf("cassorm: invalid key %v: %w", id, err)
	}

	m, ok, err := b.Where(b.def.QualifiedKeyName(), "=", key).First(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s %s = %v", types.ErrModelNotFound, b.def.table, b.def.keyName, id)
	}

	return m, nil
}

// FindMany returns the models whose key is in ids. No statement is issued
// for an empty ids.
func (b *Builder) FindMany(ctx context.Context, ids []any) ([]*Model, error) {
	if len(ids) == 0 {
		return []*Model{}, nil
	}

	keys := make([]any, len(ids))
	for i, id := range ids {
		key, err := b.def.normalizeKey(id)
		if err != nil {
			return nil, fmt.Errorf("cassorm: invalid key %v: %w", id, err)
		}
		keys[i] = key
	}

	return b.WhereIn(b.def.QualifiedKeyName(), keys).Get(ctx)
}

// First returns the first model matching the query.
func (b *Builder) First(ctx context.Context) (*Model, bool, error) {
	q, scopes := b.compile()
	if !filtering(scopes) {
		q.Limit(1)
	}

	rows, err := q.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	var found *Model
	err = rows.Each(ctx, func(row result.Row) bool {
		m := b.def.NewFromRow(b.runner, row)
		if keep(scopes, m) {
			found = m
			return false
		}

		return true
	})
	if err != nil {
		return nil, false, err
	}

	return found, found != nil, nil
}

// Get returns every matching model, fetching all pages.
func (b *Builder) Get(ctx context.Context) ([]*Model, error) {
	q, scopes := b.compile()
	rows, err := q.Get(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]*Model, 0, rows.Count())
	err = rows.Each(ctx, func(row result.Row) bool {
		if m := b.def.NewFromRow(b.runner, row); keep(scopes, m) {
			models = append(models, m)
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	return models, nil
}

// GetPage returns the first page of matching models.
func (b *Builder) GetPage(ctx context.Context) (*Page, error) {
	q, scopes := b.compile()
	rows, err := q.GetPage(ctx)
	if err != nil {
		return nil, err
	}

	return newPage(b.def, b.runner, rows, scopes), nil
}

// Count returns the number of matching rows. Client-side scopes such as
// soft deletes are not applied.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	q, _ := b.compile()
	return q.Count(ctx)
}

// Create fills a new model with attributes and saves it.
//
// Returns:
//   - *Model: The model, saved unless a hook vetoed
//   - error: Conversion or statement error
func (b *Builder) Create(ctx context.Context, attributes map[string]any) (*Model, error) {
	m := b.def.New(b.runner)
	if err := m.Fill(attributes); err != nil {
		return nil, err
	}
	if _, err := m.Save(ctx); err != nil {
		return nil, err
	}

	return m, nil
}

// compile clones the statement builder and applies the active scopes.
func (b *Builder) compile() (*query.Builder, []Scope) {
	q := b.q.Clone()
	scopes := make([]Scope, 0, len(b.def.scopeNames))
	for _, name := range b.def.scopeNames {
		if b.without[name] {
			continue
		}
		scope := b.def.scopes[name]
		if sd, ok := scope.(softDeleteScope); ok {
			sd.mode = b.trashed
			scope = sd
		}
		scope.Apply(q)
		scopes = append(scopes, scope)
	}

	return q, scopes
}

func keep(scopes []Scope, m *Model) bool {
	for _, s := range scopes {
		if !s.Keep(m) {
			return false
		}
	}

	return true
}

// filtering reports whether any scope may drop hydrated rows.
func filtering(scopes []Scope) bool {
	for _, s := range scopes {
		switch sc := s.(type) {
		case ScopeFunc:
			continue
		case softDeleteScope:
			if sc.mode == withTrashed {
				continue
			}
		}

		return true
	}

	return false
}

// Page is one page of models.
type Page struct {
	def    *Definition
	runner query.Runner
	rows   *result.Collection
	scopes []Scope
	models []*Model
}

func newPage(d *Definition, runner query.Runner, rows *result.Collection, scopes []Scope) *Page {
	p := &Page{def: d, runner: runner, rows: rows, scopes: scopes}
	for _, row := range rows.Rows() {
		if m := d.NewFromRow(runner, row); keep(scopes, m) {
			p.models = append(p.models, m)
		}
	}

	return p
}

// Models returns the models of this page.
func (p *Page) Models() []*Model {
	return p.models
}

// Rows returns the underlying result page.
func (p *Page) Rows() *result.Collection {
	return p.rows
}

// HasMorePages reports whether NextPage would fetch another page.
func (p *Page) HasMorePages() bool {
	return p.rows.HasMorePages()
}

// NextPage fetches the following page.
//
// Returns:
//   - *Page: The next page
//   - error: types.ErrNoMorePages on the last page, or the fetch error
func (p *Page) NextPage(ctx context.Context) (*Page, error) {
	next, err := p.rows.NextPage(ctx)
	if err != nil {
		return nil, err
	}

	return newPage(p.def, p.runner, next, p.scopes), nil
}
