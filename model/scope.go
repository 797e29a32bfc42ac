package model

import "github.com/arloliu/cassorm/query"

const softDeleteScopeName = "soft_deletes"

// Scope constrains every query of a definition.
//
// Apply adds server-side restrictions. Keep filters hydrated models for
// conditions CQL cannot express, such as testing a column for null.
type Scope interface {
	Apply(q *query.Builder)
	Keep(m *Model) bool
}

// ScopeFunc adapts a restriction function to a Scope that keeps every model.
type ScopeFunc func(q *query.Builder)

// Apply calls f(q).
func (f ScopeFunc) Apply(q *query.Builder) {
	f(q)
}

// Keep returns true.
func (ScopeFunc) Keep(*Model) bool {
	return true
}

// trashedMode selects which soft-deleted rows a query returns.
type trashedMode int

const (
	withoutTrashed trashedMode = iota
	withTrashed
	onlyTrashed
)

// softDeleteScope hides rows carrying a deleted-at marker. CQL cannot filter
// on null, so the check runs on hydrated models.
type softDeleteScope struct {
	column string
	mode   trashedMode
}

func (softDeleteScope) Apply(*query.Builder) {}

func (s softDeleteScope) Keep(m *Model) bool {
	trashed := m.attributes[s.column] != nil
	switch s.mode {
	case withTrashed:
		return true
	case onlyTrashed:
		return trashed
	default:
		return !trashed
	}
}
