package model

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/query"
)

// jsonPathSeparator marks a nested JSON field in an attribute key, as in
// "settings->theme->color".
const jsonPathSeparator = "->"

// State is the persistence state of a model.
type State int

const (
	// Transient models have never been inserted.
	Transient State = iota
	// Persisted models match their last written snapshot.
	Persisted
	// Modified models have attributes that differ from the snapshot.
	Modified
	// Deleted models were soft or hard deleted.
	Deleted
)

func (s State) String() string {
	switch s {
	case Transient:
		return "transient"
	case Persisted:
		return "persisted"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Model is one entity instance: current attributes, the snapshot of the last
// persisted state, and loaded relations.
//
// A Model is not safe for concurrent use.
type Model struct {
	def    *Definition
	runner query.Runner

	attributes map[string]any
	original   map[string]any
	relations  map[string]any

	exists             bool
	wasRecentlyCreated bool
	deleted            bool
}

// Definition returns the entity definition of m.
func (m *Model) Definition() *Definition {
	return m.def
}

// Exists reports whether m has been inserted or was hydrated from a row.
func (m *Model) Exists() bool {
	return m.exists
}

// WasRecentlyCreated reports whether m was inserted by this instance.
func (m *Model) WasRecentlyCreated() bool {
	return m.wasRecentlyCreated
}

// State returns the persistence state of m. A hydrated row carrying the
// soft-delete marker is Deleted.
func (m *Model) State() State {
	switch {
	case m.deleted || m.Trashed():
		return Deleted
	case !m.exists:
		return Transient
	case m.IsDirty():
		return Modified
	default:
		return Persisted
	}
}

// SetAttribute sets one attribute.
//
// A registered mutator fully replaces the default handling. Otherwise a
// non-nil value of a date column becomes a marshal.Timestamp, a JSON-cast
// value is encoded to JSON text, and a key containing "->" updates a nested
// field of the JSON column named by its first segment.
//
// Parameters:
//   - key: Column name, or a JSON path such as "settings->theme"
//   - value: New value
//
// Returns:
//   - error: A conversion or JSON encoding error; the attribute is unchanged
func (m *Model) SetAttribute(key string, value any) error {
	if mutator, ok := m.def.mutators[key]; ok {
		return mutator(m, value)
	}

	if value != nil && m.def.isDateAttribute(key) {
		ts, err := marshal.FromDateTime(value)
		if err != nil {
			return fmt.Errorf("cassorm: attribute %s: %w", key, err)
		}
		value = ts
	}

	if value != nil && m.def.isJSONCastable(key) {
		encoded, err := asJSON(value)
		if err != nil {
			return err
		}
		value = encoded
	}

	if strings.Contains(key, jsonPathSeparator) {
		return m.fillJSONAttribute(key, value)
	}

	m.attributes[key] = value

	return nil
}

// SetRaw stores value under key without any conversion.
func (m *Model) SetRaw(key string, value any) {
	m.attributes[key] = value
}

// Fill sets every attribute of values through SetAttribute.
func (m *Model) Fill(values map[string]any) error {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if err := m.SetAttribute(key, values[key]); err != nil {
			return err
		}
	}

	return nil
}

// GetAttribute reads one attribute.
//
// An accessor takes precedence; otherwise casts are applied, date columns
// are returned as time.Time, and anything else is returned as stored. A key
// that is not an attribute falls back to a loaded relation.
func (m *Model) GetAttribute(key string) any {
	v, ok := m.attributes[key]
	if accessor, has := m.def.accessors[key]; has {
		return accessor(m, v)
	}
	if !ok {
		return m.relations[key]
	}
	if m.def.hasCast(key) {
		return m.def.castAttribute(key, v)
	}
	if v != nil && m.def.isDateAttribute(key) {
		if t, err := marshal.AsDateTime(v); err == nil {
			return t
		}
	}

	return v
}

// Attributes returns a copy of the current attributes.
func (m *Model) Attributes() map[string]any {
	return maps.Clone(m.attributes)
}

// Original returns a copy of the last persisted snapshot.
func (m *Model) Original() map[string]any {
	return maps.Clone(m.original)
}

// GetOriginal returns the snapshot value of key.
func (m *Model) GetOriginal(key string) any {
	return m.original[key]
}

// Key returns the primary key value, or nil.
func (m *Model) Key() any {
	return m.attributes[m.def.keyName]
}

// KeyName returns the primary key column.
func (m *Model) KeyName() string {
	return m.def.keyName
}

// QualifiedKeyName returns the key column as used in statements; it is never
// prefixed with the table name.
func (m *Model) QualifiedKeyName() string {
	return m.def.QualifiedKeyName()
}

// OriginalIsEquivalent reports whether current is unchanged from the
// snapshot value of key for persistence purposes.
//
// Checks in order: a key missing from the snapshot is changed; identical
// values are equivalent; a nil current value is changed; date columns
// compare as timestamps; cast columns compare through their cast;
// store-native values compare through their comparable scalar; anything
// else is equivalent only if both sides are numeric with the same text.
func (m *Model) OriginalIsEquivalent(key string, current any) bool {
	original, ok := m.original[key]
	if !ok {
		return false
	}

	switch {
	case identical(current, original):
		return true
	case current == nil:
		return false
	case m.def.isDateAttribute(key):
		a, errA := marshal.FromDateTime(current)
		b, errB := marshal.FromDateTime(original)
		return errA == nil && errB == nil && a == b
	case m.def.hasCast(key):
		return identical(m.def.castAttribute(key, current), m.def.castAttribute(key, original))
	case marshal.IsStoreNative(current):
		return identical(marshal.ToComparableScalar(current), marshal.ToComparableScalar(original))
	}

	return isNumeric(current) && isNumeric(original) && numericString(current) == numericString(original)
}

// GetDirty returns the attributes that differ from the snapshot.
func (m *Model) GetDirty() map[string]any {
	dirty := make(map[string]any)
	for k, v := range m.attributes {
		if !m.OriginalIsEquivalent(k, v) {
			dirty[k] = v
		}
	}

	return dirty
}

// IsDirty reports whether any of keys, or any attribute when keys is empty,
// differs from the snapshot.
func (m *Model) IsDirty(keys ...string) bool {
	dirty := m.GetDirty()
	if len(keys) == 0 {
		return len(dirty) > 0
	}
	for _, k := range keys {
		if _, ok := dirty[k]; ok {
			return true
		}
	}

	return false
}

// SyncOriginal takes the current attributes as the new snapshot.
func (m *Model) SyncOriginal() {
	m.original = maps.Clone(m.attributes)
	if m.original == nil {
		m.original = make(map[string]any)
	}
}

// SetRelation stores a loaded relation value.
func (m *Model) SetRelation(name string, value any) {
	m.relations[name] = value
}

// Relation returns a loaded relation value.
func (m *Model) Relation(name string) (any, bool) {
	v, ok := m.relations[name]
	return v, ok
}

// ToMap exports the model for serialization.
//
// Hidden columns are dropped, dates are formatted with DateFormat, accessors
// and casts are applied, remaining store-native values are projected to
// their comparable scalars, and appended attributes are added.
func (m *Model) ToMap() map[string]any {
	out := make(map[string]any, len(m.attributes)+len(m.def.appends))
	for k, v := range m.attributes {
		if !m.def.hidden[k] {
			out[k] = v
		}
	}

	for _, k := range m.def.Dates() {
		v, ok := out[k]
		if !ok || v == nil {
			continue
		}
		if t, err := marshal.AsDateTime(v); err == nil {
			out[k] = t.UTC().Format(DateFormat)
		}
	}

	for k, accessor := range m.def.accessors {
		if v, ok := out[k]; ok {
			out[k] = accessor(m, v)
		}
	}

	for k, kind := range m.def.casts {
		v, ok := out[k]
		if !ok {
			continue
		}
		if _, mutated := m.def.accessors[k]; mutated {
			continue
		}
		v = m.def.castAttribute(k, v)
		if t, isTime := v.(time.Time); isTime && (kind == "date" || kind == "datetime") {
			v = t.UTC().Format(DateFormat)
		}
		out[k] = v
	}

	for k, v := range out {
		if marshal.IsStoreNative(v) {
			out[k] = marshal.ToComparableScalar(v)
		}
	}

	for _, k := range m.def.appends {
		if m.def.hidden[k] {
			continue
		}
		if accessor, ok := m.def.accessors[k]; ok {
			out[k] = accessor(m, nil)
		}
	}

	return out
}

// fillJSONAttribute sets a nested field of a JSON column. Missing levels are
// created; a column holding invalid JSON is replaced.
func (m *Model) fillJSONAttribute(key string, value any) error {
	path := strings.Split(key, jsonPathSeparator)
	column := path[0]

	root, _ := fromJSON(m.attributes[column]).(map[string]any)
	if root == nil {
		root = make(map[string]any)
	}

	node := root
	for _, segment := range path[1 : len(path)-1] {
		child, _ := node[segment].(map[string]any)
		if child == nil {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value

	encoded, err := asJSON(root)
	if err != nil {
		return err
	}
	m.attributes[column] = encoded

	return nil
}

// identical reports whether a and b have the same dynamic type and value.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return reflect.TypeOf(a) == reflect.TypeOf(b) && reflect.DeepEqual(a, b)
}
