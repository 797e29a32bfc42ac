package model

import (
	"context"
	"slices"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/arloliu/cassorm/events"
	"github.com/arloliu/cassorm/internal/logging"
	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/query"
	"github.com/arloliu/cassorm/result"
	"github.com/arloliu/cassorm/types"
)

// Default column names.
const (
	DefaultKeyName  = "id"
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"
	DeletedAtColumn = "deleted_at"
)

// HookEvent names a lifecycle hook.
type HookEvent string

// Lifecycle hooks. Hooks registered on an "-ing" event can veto the
// operation by returning false; the return value of "-ed" hooks is ignored.
const (
	CreatingEvent  HookEvent = "creating"
	CreatedEvent   HookEvent = "created"
	UpdatingEvent  HookEvent = "updating"
	UpdatedEvent   HookEvent = "updated"
	SavingEvent    HookEvent = "saving"
	SavedEvent     HookEvent = "saved"
	DeletingEvent  HookEvent = "deleting"
	DeletedEvent   HookEvent = "deleted"
	RestoringEvent HookEvent = "restoring"
	RestoredEvent  HookEvent = "restored"
)

// Hook observes or vetoes a lifecycle step.
type Hook func(ctx context.Context, m *Model) bool

// Mutator replaces the default SetAttribute handling of one column. It
// usually stores the transformed value with SetRaw.
type Mutator func(m *Model, value any) error

// Accessor transforms a stored value on read. For appended attributes the
// stored value is always nil.
type Accessor func(m *Model, value any) any

// Definition describes one entity type: its table, key, casts, dates and
// lifecycle behavior. A Definition is immutable after Define returns, apart
// from relation registration, and may be shared by any number of models.
type Definition struct {
	table          string
	keyName        string
	keyKind        marshal.Kind
	incrementing   bool
	keyGenerator   func() any
	timestamps     bool
	createdAt      string
	updatedAt      string
	dates          []string
	casts          map[string]string
	mutators       map[string]Mutator
	accessors      map[string]Accessor
	appends        []string
	hidden         map[string]bool
	defaults       map[string]any
	softDeletes    bool
	deletedAt      string
	hooks          map[HookEvent][]Hook
	dispatcher     events.Dispatcher
	scopes         map[string]Scope
	scopeNames     []string
	relations      map[string]Relation
	allowFiltering bool
	logger         types.Logger
}

// Option configures a Definition.
type Option func(*Definition)

// Define creates the definition of the entity type stored in table.
//
// Defaults: key "id" of kind UUID, non-incrementing, created_at/updated_at
// timestamps on, ALLOW FILTERING on model queries, no soft deletes.
//
// Parameters:
//   - table: Table name
//   - opts: Optional behavior
//
// Returns:
//   - *Definition: The entity definition
//
// Example:
//
//	users := model.Define("users",
//	    model.WithCasts(map[string]string{"age": "int", "settings": "json"}),
//	    model.WithHidden("password"),
//	    model.WithSoftDeletes(),
//	)
//	u := users.New(conn)
//	_ = u.Fill(map[string]any{"name": "ann", "age": "42"})
//	ok, err := u.Save(ctx)
func Define(table string, opts ...Option) *Definition {
	d := &Definition{
		table:          table,
		keyName:        DefaultKeyName,
		keyKind:        marshal.KindUUID,
		timestamps:     true,
		createdAt:      CreatedAtColumn,
		updatedAt:      UpdatedAtColumn,
		deletedAt:      DeletedAtColumn,
		casts:          make(map[string]string),
		mutators:       make(map[string]Mutator),
		accessors:      make(map[string]Accessor),
		hidden:         make(map[string]bool),
		defaults:       make(map[string]any),
		hooks:          make(map[HookEvent][]Hook),
		scopes:         make(map[string]Scope),
		relations:      make(map[string]Relation),
		allowFiltering: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.OrNop(d.logger)
	if d.softDeletes {
		d.addScope(softDeleteScopeName, softDeleteScope{column: d.deletedAt})
	}

	return d
}

// WithKeyName sets the primary key column. Default: "id".
func WithKeyName(name string) Option {
	return func(d *Definition) {
		d.keyName = name
	}
}

// WithKeyKind sets the store-native kind of the key. Default: marshal.KindUUID.
// Find converts string ids to UUIDs only for KindUUID keys.
func WithKeyKind(kind marshal.Kind) Option {
	return func(d *Definition) {
		d.keyKind = kind
	}
}

// WithIncrementing marks the key as generated by the key generator on every
// insert that lacks one, even when no other attribute is set.
func WithIncrementing(incrementing bool) Option {
	return func(d *Definition) {
		d.incrementing = incrementing
	}
}

// WithKeyGenerator sets the function producing new key values.
//
// Default: a random (version 4) UUID, or a time-based (version 1) UUID for
// incrementing keys.
func WithKeyGenerator(fn func() any) Option {
	return func(d *Definition) {
		d.keyGenerator = fn
	}
}

// WithTimestamps turns created/updated timestamp maintenance on or off.
func WithTimestamps(enabled bool) Option {
	return func(d *Definition) {
		d.timestamps = enabled
	}
}

// WithTimestampColumns renames the created and updated timestamp columns.
// An empty name disables maintenance of that column.
func WithTimestampColumns(createdAt, updatedAt string) Option {
	return func(d *Definition) {
		d.createdAt = createdAt
		d.updatedAt = updatedAt
	}
}

// WithDates declares additional date-typed columns.
func WithDates(columns ...string) Option {
	return func(d *Definition) {
		d.dates = append(d.dates, columns...)
	}
}

// WithCasts declares attribute casts by column. Recognized casts: int,
// integer, real, float, double, string, bool, boolean, array, json, object,
// collection, date, datetime, timestamp, decimal.
func WithCasts(casts map[string]string) Option {
	return func(d *Definition) {
		for column, kind := range casts {
			d.casts[column] = strings.ToLower(kind)
		}
	}
}

// WithMutator registers the set mutator of column.
func WithMutator(column string, fn Mutator) Option {
	return func(d *Definition) {
		d.mutators[column] = fn
	}
}

// WithAccessor registers the get accessor of column.
func WithAccessor(column string, fn Accessor) Option {
	return func(d *Definition) {
		d.accessors[column] = fn
	}
}

// WithAppends adds computed attributes to ToMap. Each needs an accessor.
func WithAppends(columns ...string) Option {
	return func(d *Definition) {
		d.appends = append(d.appends, columns...)
	}
}

// WithHidden removes columns from ToMap.
func WithHidden(columns ...string) Option {
	return func(d *Definition) {
		for _, c := range columns {
			d.hidden[c] = true
		}
	}
}

// WithDefaults declares values inserted for columns the model leaves unset.
// Defaults are merged under explicit attributes when inserting.
func WithDefaults(values map[string]any) Option {
	return func(d *Definition) {
		for k, v := range values {
			d.defaults[k] = v
		}
	}
}

// WithSoftDeletes enables soft deletes on the deleted_at column.
//
// Delete then stamps the column instead of removing the row, and model
// queries hide stamped rows unless WithTrashed or OnlyTrashed is used.
func WithSoftDeletes() Option {
	return func(d *Definition) {
		d.softDeletes = true
	}
}

// WithDeletedAtColumn renames the soft-delete marker column.
func WithDeletedAtColumn(column string) Option {
	return func(d *Definition) {
		d.deletedAt = column
	}
}

// WithHook registers fn for event. Hooks run in registration order.
func WithHook(event HookEvent, fn Hook) Option {
	return func(d *Definition) {
		d.hooks[event] = append(d.hooks[event], fn)
	}
}

// WithDispatcher sends an events.Event after every completed write.
func WithDispatcher(dispatcher events.Dispatcher) Option {
	return func(d *Definition) {
		d.dispatcher = dispatcher
	}
}

// WithGlobalScope registers a scope applied to every model query.
func WithGlobalScope(name string, scope Scope) Option {
	return func(d *Definition) {
		d.addScope(name, scope)
	}
}

// WithAllowFiltering controls whether model queries carry ALLOW FILTERING.
// Default: true.
func WithAllowFiltering(enabled bool) Option {
	return func(d *Definition) {
		d.allowFiltering = enabled
	}
}

// WithLogger sets the logger used for dispatch failures.
func WithLogger(logger types.Logger) Option {
	return func(d *Definition) {
		d.logger = logger
	}
}

func (d *Definition) addScope(name string, scope Scope) {
	if _, ok := d.scopes[name]; !ok {
		d.scopeNames = append(d.scopeNames, name)
	}
	d.scopes[name] = scope
}

// New creates a transient model bound to runner.
func (d *Definition) New(runner query.Runner) *Model {
	return &Model{
		def:        d,
		runner:     runner,
		attributes: make(map[string]any),
		original:   make(map[string]any),
		relations:  make(map[string]any),
	}
}

// NewFromRow hydrates a persisted model from a result row. The row is taken
// as the original snapshot, so the new model is not dirty.
func (d *Definition) NewFromRow(runner query.Runner, row result.Row) *Model {
	m := d.New(runner)
	for k, v := range row {
		m.attributes[k] = v
	}
	m.exists = true
	m.SyncOriginal()

	return m
}

// Query starts a model query bound to runner with the global scopes applied.
func (d *Definition) Query(runner query.Runner) *Builder {
	return newBuilder(d, runner)
}

// Table returns the table name.
func (d *Definition) Table() string {
	return d.table
}

// KeyName returns the primary key column.
func (d *Definition) KeyName() string {
	return d.keyName
}

// QualifiedKeyName returns the key column as used in statements. CQL has no
// table-qualified column syntax, so it equals KeyName.
func (d *Definition) QualifiedKeyName() string {
	return d.keyName
}

// KeyKind returns the store-native kind of the key.
func (d *Definition) KeyKind() marshal.Kind {
	return d.keyKind
}

// ForeignKey returns the column other tables use to reference this one:
// the singular table name, an underscore, and the key name ("user_id").
func (d *Definition) ForeignKey() string {
	return inflection.Singular(d.table) + "_" + d.keyName
}

// Dates returns every date-typed column: declared dates, the timestamp
// columns when timestamps are on, and the soft-delete marker.
func (d *Definition) Dates() []string {
	dates := slices.Clone(d.dates)
	if d.timestamps {
		for _, c := range []string{d.createdAt, d.updatedAt} {
			if c != "" {
				dates = append(dates, c)
			}
		}
	}
	if d.softDeletes {
		dates = append(dates, d.deletedAt)
	}

	return dates
}

// SoftDeletes reports whether the soft-delete capability is on.
func (d *Definition) SoftDeletes() bool {
	return d.softDeletes
}

// DeletedAtColumn returns the soft-delete marker column.
func (d *Definition) DeletedAtColumn() string {
	return d.deletedAt
}

func (d *Definition) isDateAttribute(key string) bool {
	return slices.Contains(d.Dates(), key) || d.isDateCastable(key)
}

func (d *Definition) generateKey() any {
	switch {
	case d.keyGenerator != nil:
		return d.keyGenerator()
	case d.incrementing:
		return marshal.NewTimeUUID()
	default:
		return marshal.NewUUID()
	}
}

// normalizeKey turns string ids into UUIDs for UUID keys.
func (d *Definition) normalizeKey(id any) (any, error) {
	s, ok := id.(string)
	if !ok || d.keyKind != marshal.KindUUID {
		return id, nil
	}

	return marshal.ParseUUID(s)
}
