package model

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jinzhu/inflection"

	"github.com/arloliu/cassorm/query"
)

// ErrRelationNotFound is returned by Load for an unregistered relation name.
var ErrRelationNotFound = errors.New("cassorm: relation not found")

// Relation resolves related models for a parent model.
type Relation interface {
	// Name is the key the results are stored under on the parent.
	Name() string

	// Related is the definition of the related models.
	Related() *Definition

	// Results loads the related models of parent: []*Model for to-many
	// relations, *Model or nil for to-one relations.
	Results(ctx context.Context, parent *Model) (any, error)
}

// HasMany registers a one-to-many relation: related rows whose foreignKey
// equals the parent's localKey.
//
// Parameters:
//   - name: Relation name, required
//   - related: Definition of the child models
//   - foreignKey: Column on the child table; empty means d.ForeignKey()
//   - localKey: Column on the parent; empty means d.KeyName()
//
// Returns:
//   - *Definition: d, for chaining
func (d *Definition) HasMany(name string, related *Definition, foreignKey, localKey string) *Definition {
	if foreignKey == "" {
		foreignKey = d.ForeignKey()
	}
	if localKey == "" {
		localKey = d.keyName
	}
	d.relations[name] = &hasMany{name: name, related: related, foreignKey: foreignKey, localKey: localKey}

	return d
}

// BelongsTo registers the inverse of a one-to-many relation: the related
// row whose ownerKey equals the parent's foreignKey.
//
// Parameters:
//   - name: Relation name, required
//   - related: Definition of the owner model
//   - foreignKey: Column on the parent; empty means name + "_" + related key name
//   - ownerKey: Column on the owner table; empty means related.KeyName()
//
// Returns:
//   - *Definition: d, for chaining
func (d *Definition) BelongsTo(name string, related *Definition, foreignKey, ownerKey string) *Definition {
	if foreignKey == "" {
		foreignKey = name + "_" + related.keyName
	}
	if ownerKey == "" {
		ownerKey = related.keyName
	}
	d.relations[name] = &belongsTo{name: name, related: related, foreignKey: foreignKey, ownerKey: ownerKey}

	return d
}

// BelongsToMany registers a many-to-many relation through pivotTable.
//
// The store has no joins, so loading runs two statements: one reading the
// related keys from the pivot table, then an IN query on the related table.
//
// Parameters:
//   - name: Relation name, required
//   - related: Definition of the related models
//   - pivotTable: Joining table; empty means the two singular table names
//     sorted and joined with "_" ("role_user")
//   - foreignPivotKey: Pivot column referencing d; empty means d.ForeignKey()
//   - relatedPivotKey: Pivot column referencing related; empty means related.ForeignKey()
//
// Returns:
//   - *Definition: d, for chaining
func (d *Definition) BelongsToMany(name string, related *Definition, pivotTable, foreignPivotKey, relatedPivotKey string) *Definition {
	if pivotTable == "" {
		pivotTable = joiningTable(d, related)
	}
	if foreignPivotKey == "" {
		foreignPivotKey = d.ForeignKey()
	}
	if relatedPivotKey == "" {
		relatedPivotKey = related.ForeignKey()
	}
	d.relations[name] = &belongsToMany{
		name:            name,
		parent:          d,
		related:         related,
		pivotTable:      pivotTable,
		foreignPivotKey: foreignPivotKey,
		relatedPivotKey: relatedPivotKey,
	}

	return d
}

// Relation returns the registered relation named name.
func (d *Definition) Relation(name string) (Relation, bool) {
	rel, ok := d.relations[name]
	return rel, ok
}

// Load resolves the named relation and stores the result on m.
func (m *Model) Load(ctx context.Context, name string) error {
	rel, ok := m.def.relations[name]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrRelationNotFound, name, m.def.table)
	}

	results, err := rel.Results(ctx, m)
	if err != nil {
		return err
	}
	m.SetRelation(name, results)

	return nil
}

func joiningTable(a, b *Definition) string {
	names := []string{inflection.Singular(a.table), inflection.Singular(b.table)}
	slices.Sort(names)

	return names[0] + "_" + names[1]
}

type hasMany struct {
	name       string
	related    *Definition
	foreignKey string
	localKey   string
}

func (r *hasMany) Name() string         { return r.name }
func (r *hasMany) Related() *Definition { return r.related }

func (r *hasMany) Results(ctx context.Context, parent *Model) (any, error) {
	local := parent.attributes[r.localKey]
	if local == nil {
		return []*Model{}, nil
	}

	return r.related.Query(parent.runner).Where(r.foreignKey, "=", local).Get(ctx)
}

type belongsTo struct {
	name       string
	related    *Definition
	foreignKey string
	ownerKey   string
}

func (r *belongsTo) Name() string         { return r.name }
func (r *belongsTo) Related() *Definition { return r.related }

func (r *belongsTo) Results(ctx context.Context, parent *Model) (any, error) {
	foreign := parent.attributes[r.foreignKey]
	if foreign == nil {
		return (*Model)(nil), nil
	}

	owner, _, err := r.related.Query(parent.runner).Where(r.ownerKey, "=", foreign).First(ctx)
	if err != nil {
		return nil, err
	}

	return owner, nil
}

type belongsToMany struct {
	name            string
	parent          *Definition
	related         *Definition
	pivotTable      string
	foreignPivotKey string
	relatedPivotKey string
}

func (r *belongsToMany) Name() string         { return r.name }
func (r *belongsToMany) Related() *Definition { return r.related }

func (r *belongsToMany) Results(ctx context.Context, parent *Model) (any, error) {
	key := parent.Key()
	if key == nil {
		return []*Model{}, nil
	}

	pivot, err := query.NewBuilder(parent.runner, r.pivotTable).
		Select(r.relatedPivotKey).
		Where(r.foreignPivotKey, "=", key).
		AllowFiltering().
		Get(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pivot.All(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		if id := row[r.relatedPivotKey]; id != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []*Model{}, nil
	}

	return r.related.Query(parent.runner).WhereIn(r.related.keyName, ids).Get(ctx)
}
