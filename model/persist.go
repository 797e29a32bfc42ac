package model

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/arloliu/cassorm/events"
	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/query"
	"github.com/arloliu/cassorm/types"
)

// Save inserts a transient model or updates the dirty attributes of a
// persisted one.
//
// A false result with a nil error means a hook vetoed the save.
//
// Parameters:
//   - ctx: Context for the statements
//
// Returns:
//   - bool: true if the model was saved
//   - error: Statement or conversion error
func (m *Model) Save(ctx context.Context) (bool, error) {
	if !m.fire(ctx, SavingEvent) {
		return false, nil
	}

	var (
		saved bool
		err   error
	)
	switch {
	case !m.exists:
		saved, err = m.performInsert(ctx)
	case m.IsDirty():
		saved, err = m.performUpdate(ctx)
	default:
		saved = true
	}
	if err != nil || !saved {
		return false, err
	}

	m.fire(ctx, SavedEvent)
	m.dispatch(ctx, events.Saved)
	m.SyncOriginal()

	return true, nil
}

// performInsert writes a transient model.
//
// An incrementing key lacking a value is generated first. A non-incrementing
// model without any attribute is a successful no-op; otherwise a missing key
// is generated before the insert.
func (m *Model) performInsert(ctx context.Context) (bool, error) {
	if !m.fire(ctx, CreatingEvent) {
		return false, nil
	}

	if m.def.timestamps {
		if err := m.touchTimestamps(); err != nil {
			return false, err
		}
	}

	attributes := maps.Clone(m.def.defaults)
	maps.Copy(attributes, m.attributes)

	keyName := m.def.keyName
	if !m.def.incrementing && len(attributes) == 0 {
		return true, nil
	}
	if attributes[keyName] == nil {
		id := m.def.generateKey()
		if err := m.SetAttribute(keyName, id); err != nil {
			return false, err
		}
		attributes[keyName] = m.attributes[keyName]
	}

	if err := m.newQuery().Insert(ctx, attributes); err != nil {
		return false, err
	}

	m.exists = true
	m.wasRecentlyCreated = true

	m.fire(ctx, CreatedEvent)
	m.dispatch(ctx, events.Created)

	return true, nil
}

// performUpdate writes the dirty attributes of a persisted model. The key
// column is never part of the SET clause.
func (m *Model) performUpdate(ctx context.Context) (bool, error) {
	if !m.fire(ctx, UpdatingEvent) {
		return false, nil
	}

	if m.def.timestamps {
		if err := m.touchTimestamps(); err != nil {
			return false, err
		}
	}

	dirty := m.GetDirty()
	delete(dirty, m.def.keyName)
	if len(dirty) == 0 {
		return true, nil
	}

	key, err := m.keyForSave()
	if err != nil {
		return false, err
	}
	if err := m.newQuery().Where(m.def.keyName, "=", key).Update(ctx, dirty); err != nil {
		return false, err
	}

	m.fire(ctx, UpdatedEvent)
	m.dispatch(ctx, events.Updated)

	return true, nil
}

// Delete removes the model: a soft delete stamps the deleted-at column when
// the capability is on, otherwise the row is deleted.
//
// Returns:
//   - bool: true if the model was deleted, false if it was never persisted or a hook vetoed
//   - error: types.ErrMissingKey or a statement error
func (m *Model) Delete(ctx context.Context) (bool, error) {
	return m.delete(ctx, m.def.softDeletes)
}

// ForceDelete removes the row even when soft deletes are on.
func (m *Model) ForceDelete(ctx context.Context) (bool, error) {
	return m.delete(ctx, false)
}

func (m *Model) delete(ctx context.Context, soft bool) (bool, error) {
	if m.Key() == nil {
		return false, types.ErrMissingKey
	}
	if !m.exists {
		return false, nil
	}
	if !m.fire(ctx, DeletingEvent) {
		return false, nil
	}

	var err error
	if soft {
		err = m.runSoftDelete(ctx)
	} else {
		err = m.runHardDelete(ctx)
	}
	if err != nil {
		return false, err
	}

	m.deleted = true
	m.fire(ctx, DeletedEvent)
	m.dispatch(ctx, events.Deleted)

	return true, nil
}

// Restore clears the soft-delete marker and saves the model.
//
// Returns:
//   - bool: true if the model was restored
//   - error: types.ErrNotSoftDeletable or a statement error
func (m *Model) Restore(ctx context.Context) (bool, error) {
	if !m.def.softDeletes {
		return false, types.ErrNotSoftDeletable
	}
	if !m.fire(ctx, RestoringEvent) {
		return false, nil
	}

	m.attributes[m.def.deletedAt] = nil
	m.exists = true
	m.deleted = false

	saved, err := m.Save(ctx)
	if err != nil || !saved {
		return false, err
	}

	m.fire(ctx, RestoredEvent)
	m.dispatch(ctx, events.Restored)

	return true, nil
}

// Trashed reports whether the soft-delete marker is set.
func (m *Model) Trashed() bool {
	return m.def.softDeletes && m.attributes[m.def.deletedAt] != nil
}

func (m *Model) runSoftDelete(ctx context.Context) error {
	key, err := m.keyForSave()
	if err != nil {
		return err
	}

	now := marshal.Now()
	values := map[string]any{m.def.deletedAt: now}
	if m.def.timestamps && m.def.updatedAt != "" {
		values[m.def.updatedAt] = now
	}
	if err := m.newQuery().Where(m.def.keyName, "=", key).Update(ctx, values); err != nil {
		return err
	}

	for k, v := range values {
		m.attributes[k] = v
		m.original[k] = v
	}

	return nil
}

func (m *Model) runHardDelete(ctx context.Context) error {
	key, err := m.keyForSave()
	if err != nil {
		return err
	}
	if err := m.newQuery().Where(m.def.keyName, "=", key).Delete(ctx); err != nil {
		return err
	}
	m.exists = false

	return nil
}

// touchTimestamps stamps updated_at, and created_at on inserts, unless the
// caller already changed them.
func (m *Model) touchTimestamps() error {
	now := marshal.Now()
	if c := m.def.updatedAt; c != "" && !m.IsDirty(c) {
		if err := m.SetAttribute(c, now); err != nil {
			return err
		}
	}
	if c := m.def.createdAt; c != "" && !m.exists && !m.IsDirty(c) {
		if err := m.SetAttribute(c, now); err != nil {
			return err
		}
	}

	return nil
}

// keyForSave returns the snapshot key, falling back to the current one, so a
// changed key still addresses the stored row.
func (m *Model) keyForSave() (any, error) {
	key := m.original[m.def.keyName]
	if key == nil {
		key = m.Key()
	}
	if key == nil {
		return nil, types.ErrMissingKey
	}

	return key, nil
}

func (m *Model) newQuery() *query.Builder {
	return query.NewBuilder(m.runner, m.def.table)
}

// fire runs the hooks of event in order and reports whether all of them
// allowed the operation. For "-ed" events the result is ignored.
func (m *Model) fire(ctx context.Context, event HookEvent) bool {
	for _, hook := range m.def.hooks[event] {
		if !hook(ctx, m) {
			return false
		}
	}

	return true
}

// dispatch hands a lifecycle event to the definition's dispatcher. Failures
// are logged and never undo the write.
func (m *Model) dispatch(ctx context.Context, name events.Name) {
	if m.def.dispatcher == nil {
		return
	}

	ev := events.Event{
		Name:       name,
		Table:      m.def.table,
		Key:        m.Key(),
		Attributes: m.Attributes(),
		OccurredAt: time.Now(),
	}
	if err := m.def.dispatcher.Dispatch(ctx, ev); err != nil {
		m.def.logger.Warn("event dispatch failed",
			"table", m.def.table,
			"event", string(name),
			"key", fmt.Sprint(ev.Key),
			"error", err,
		)
	}
}
