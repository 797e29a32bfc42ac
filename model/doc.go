// Package model maps table rows to entity instances with dirty tracking,
// casts, date handling and lifecycle hooks.
//
// # Definitions
//
// An entity type is described once with Define and shared by every instance:
//
//	posts := model.Define("posts",
//	    model.WithDates("published_at"),
//	    model.WithCasts(map[string]string{"tags": "json"}),
//	)
//	users := model.Define("users", model.WithSoftDeletes())
//	users.HasMany("posts", posts, "", "")
//
// # Keys
//
// The store has no auto-increment. A model inserted without a key gets one
// from the key generator, a random UUID by default. Key columns are never
// qualified with the table name.
//
// # Dirty Tracking
//
// Each model keeps the snapshot of its last persisted state. Save issues an
// UPDATE containing only the attributes that OriginalIsEquivalent reports as
// changed, comparing dates as timestamps and store-native values through
// their comparable scalars.
//
// # Soft Deletes
//
// With WithSoftDeletes, Delete stamps deleted_at instead of removing the row.
// Because CQL cannot test a column for null, trashed rows are filtered from
// hydrated results rather than in the statement.
package model
