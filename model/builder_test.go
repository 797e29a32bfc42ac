package model_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/model"
	"github.com/arloliu/cassorm/query"
	"github.com/arloliu/cassorm/result"
	"github.com/arloliu/cassorm/types"
)

// pagedRunner serves rows in pages of pageSize, using the row offset as page state.
type pagedRunner struct {
	rows     []result.Row
	pageSize int
	fetches  int
}

func (r *pagedRunner) Execute(_ context.Context, _ string, _ []any) (*result.Collection, error) {
	return r.page(0), nil
}

func (r *pagedRunner) page(offset int) *result.Collection {
	end := min(offset+r.pageSize, len(r.rows))
	if end == len(r.rows) {
		return result.New(r.rows[offset:end], nil, nil)
	}

	return result.New(r.rows[offset:end], []byte(strconv.Itoa(end)), func(_ context.Context, state []byte) (*result.Collection, error) {
		r.fetches++
		next, err := strconv.Atoi(string(state))
		if err != nil {
			return nil, err
		}

		return r.page(next), nil
	})
}

func rowsResponder(rows ...result.Row) func(string, []any) ([]result.Row, error) {
	return func(string, []any) ([]result.Row, error) {
		return rows, nil
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	users := model.Define("users")
	id := marshal.NewUUID()

	t.Run("string key is parsed", func(t *testing.T) {
		r := &fakeRunner{respond: rowsResponder(result.Row{"id": id, "name": "ann"})}

		m, err := users.Query(r).Find(ctx, id.String())
		require.NoError(t, err)
		assert.True(t, m.Exists())
		assert.Equal(t, "ann", m.GetAttribute("name"))

		require.Len(t, r.calls, 1)
		assert.Equal(t, "SELECT * FROM users WHERE id = ? LIMIT 1 ALLOW FILTERING", r.calls[0].stmt)
		assert.Equal(t, []any{id}, r.calls[0].bindings)
	})

	t.Run("not found", func(t *testing.T) {
		r := &fakeRunner{}
		_, err := users.Query(r).Find(ctx, id)
		require.ErrorIs(t, err, types.ErrModelNotFound)
		assert.Contains(t, err.Error(), "users id = "+id.String())
	})

	t.Run("invalid uuid", func(t *testing.T) {
		r := &fakeRunner{}
		_, err := users.Query(r).Find(ctx, "not-a-uuid")
		require.Error(t, err)
		assert.Empty(t, r.calls)
	})

	t.Run("non uuid keys pass through", func(t *testing.T) {
		r := &fakeRunner{respond: rowsResponder(result.Row{"code": "fr"})}
		countries := model.Define("countries", model.WithKeyName("code"), model.WithKeyKind(marshal.KindOther))

		m, err := countries.Query(r).Find(ctx, "fr")
		require.NoError(t, err)
		assert.Equal(t, "fr", m.Key())
		assert.Equal(t, []any{"fr"}, r.calls[0].bindings)
	})
}

func TestFindMany(t *testing.T) {
	ctx := context.Background()
	users := model.Define("users")

	r := &fakeRunner{}
	models, err := users.Query(r).FindMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Empty(t, r.calls)

	a, b := marshal.NewUUID(), marshal.NewUUID()
	r = &fakeRunner{respond: rowsResponder(result.Row{"id": a}, result.Row{"id": b})}
	models, err = users.Query(r).FindMany(ctx, []any{a.String(), b})
	require.NoError(t, err)
	assert.Len(t, models, 2)
	assert.Equal(t, "SELECT * FROM users WHERE id IN (?, ?) ALLOW FILTERING", r.calls[0].stmt)
	assert.Equal(t, []any{a, b}, r.calls[0].bindings)
}

func TestSoftDeleteScope(t *testing.T) {
	ctx := context.Background()
	posts := model.Define("posts", model.WithSoftDeletes())
	trashed := result.Row{"id": marshal.NewUUID(), "title": "gone", "deleted_at": marshal.Now()}
	live := result.Row{"id": marshal.NewUUID(), "title": "live", "deleted_at": nil}
	other := result.Row{"id": marshal.NewUUID(), "title": "other"}
	r := &fakeRunner{respond: rowsResponder(trashed, live, other)}

	titles := func(models []*model.Model) []string {
		out := make([]string, len(models))
		for i, m := range models {
			out[i] = m.GetAttribute("title").(string)
		}

		return out
	}

	tests := []struct {
		name  string
		build func(*model.Builder) *model.Builder
		want  []string
	}{
		{"default hides trashed", func(b *model.Builder) *model.Builder { return b }, []string{"live", "other"}},
		{"with trashed", (*model.Builder).WithTrashed, []string{"gone", "live", "other"}},
		{"only trashed", (*model.Builder).OnlyTrashed, []string{"gone"}},
		{"scope removed", func(b *model.Builder) *model.Builder { return b.WithoutGlobalScope("soft_deletes") }, []string{"gone", "live", "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, err := tt.build(posts.Query(r)).Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(models))
		})
	}

	t.Run("first skips trashed rows without a limit", func(t *testing.T) {
		r.calls = nil
		m, ok, err := posts.Query(r).First(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "live", m.GetAttribute("title"))
		assert.Equal(t, "SELECT * FROM posts ALLOW FILTERING", r.calls[0].stmt)
	})

	t.Run("first with trashed uses a limit", func(t *testing.T) {
		r.calls = nil
		_, _, err := posts.Query(r).WithTrashed().First(ctx)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM posts LIMIT 1 ALLOW FILTERING", r.calls[0].stmt)
	})

	t.Run("trashed rows hydrate as deleted", func(t *testing.T) {
		m, ok, err := posts.Query(r).OnlyTrashed().First(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, m.Trashed())
		assert.True(t, m.Exists())
		assert.Equal(t, model.Deleted, m.State())

		live, ok, err := posts.Query(r).First(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.Persisted, live.State())
	})
}

func TestGlobalScopes(t *testing.T) {
	ctx := context.Background()
	active := model.ScopeFunc(func(q *query.Builder) {
		q.Where("active", "=", true)
	})
	users := model.Define("users", model.WithGlobalScope("active", active), model.WithAllowFiltering(false))

	r := &fakeRunner{}
	_, err := users.Query(r).Where("region", "=", "eu").OrderBy("name", "desc").Limit(10).Get(ctx)
	require.NoError(t, err)
	_, err = users.Query(r).WithoutGlobalScope("active").Select("id", "name").Get(ctx)
	require.NoError(t, err)
	_, err = users.Query(r).AllowFiltering().Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT * FROM users WHERE region = ? AND active = ? ORDER BY name DESC LIMIT 10",
		"SELECT id, name FROM users",
		"SELECT * FROM users WHERE active = ? ALLOW FILTERING",
	}, r.statements())
	assert.Equal(t, []any{"eu", true}, r.calls[0].bindings)
}

func TestBuilderPaging(t *testing.T) {
	ctx := context.Background()
	posts := model.Define("posts", model.WithSoftDeletes())
	rows := make([]result.Row, 5)
	for i := range rows {
		rows[i] = result.Row{"id": marshal.NewUUID(), "n": i}
	}
	rows[2]["deleted_at"] = marshal.Now()

	t.Run("get drains every page", func(t *testing.T) {
		r := &pagedRunner{rows: rows, pageSize: 2}
		models, err := posts.Query(r).Get(ctx)
		require.NoError(t, err)
		assert.Len(t, models, 4)
		assert.Equal(t, 2, r.fetches)
	})

	t.Run("get page walks pages on demand", func(t *testing.T) {
		r := &pagedRunner{rows: rows, pageSize: 2}
		page, err := posts.Query(r).GetPage(ctx)
		require.NoError(t, err)
		assert.Len(t, page.Models(), 2)
		assert.Equal(t, 2, page.Rows().Count())
		assert.True(t, page.HasMorePages())
		assert.Equal(t, 0, r.fetches)

		page, err = page.NextPage(ctx)
		require.NoError(t, err)
		assert.Len(t, page.Models(), 1)
		assert.True(t, page.HasMorePages())

		page, err = page.NextPage(ctx)
		require.NoError(t, err)
		assert.Len(t, page.Models(), 1)
		assert.False(t, page.HasMorePages())

		_, err = page.NextPage(ctx)
		assert.ErrorIs(t, err, types.ErrNoMorePages)
	})
}

func TestCountAndCreate(t *testing.T) {
	ctx := context.Background()
	users := model.Define("users", model.WithTimestamps(false))

	r := &fakeRunner{respond: func(stmt string, _ []any) ([]result.Row, error) {
		if strings.HasPrefix(stmt, "SELECT COUNT(*)") {
			return []result.Row{{"count": int64(7)}}, nil
		}
		return nil, nil
	}}

	n, err := users.Query(r).Where("age", ">", 18).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "SELECT COUNT(*) FROM users WHERE age > ? ALLOW FILTERING", r.calls[0].stmt)

	m, err := users.Query(r).Create(ctx, map[string]any{"name": "ann", "age": 30})
	require.NoError(t, err)
	assert.True(t, m.Exists())
	assert.Equal(t, "INSERT INTO users (age, id, name) VALUES (?, ?, ?)", r.calls[1].stmt)
}

func TestRelations(t *testing.T) {
	ctx := context.Background()
	users := model.Define("users", model.WithTimestamps(false))
	posts := model.Define("posts", model.WithTimestamps(false))
	roles := model.Define("roles", model.WithTimestamps(false))
	users.HasMany("posts", posts, "", "").BelongsToMany("roles", roles, "", "", "")
	posts.BelongsTo("user", users, "", "")

	userID := marshal.NewUUID()
	adminID, editorID := marshal.NewUUID(), marshal.NewUUID()

	t.Run("has many", func(t *testing.T) {
		r := &fakeRunner{respond: rowsResponder(
			result.Row{"id": marshal.NewUUID(), "user_id": userID},
			result.Row{"id": marshal.NewUUID(), "user_id": userID},
		)}
		user := users.NewFromRow(r, result.Row{"id": userID})

		require.NoError(t, user.Load(ctx, "posts"))
		related, ok := loaded(t, user, "posts").([]*model.Model)
		require.True(t, ok)
		assert.Len(t, related, 2)
		assert.Equal(t, "SELECT * FROM posts WHERE user_id = ? ALLOW FILTERING", r.calls[0].stmt)
		assert.Equal(t, []any{userID}, r.calls[0].bindings)
		assert.Equal(t, related, user.GetAttribute("posts"))
	})

	t.Run("belongs to", func(t *testing.T) {
		r := &fakeRunner{respond: rowsResponder(result.Row{"id": userID, "name": "ann"})}
		post := posts.NewFromRow(r, result.Row{"id": marshal.NewUUID(), "user_id": userID})

		require.NoError(t, post.Load(ctx, "user"))
		owner, ok := loaded(t, post, "user").(*model.Model)
		require.True(t, ok)
		assert.Equal(t, "ann", owner.GetAttribute("name"))
		assert.Equal(t, "SELECT * FROM users WHERE id = ? LIMIT 1 ALLOW FILTERING", r.calls[0].stmt)
	})

	t.Run("belongs to without foreign key", func(t *testing.T) {
		r := &fakeRunner{}
		post := posts.NewFromRow(r, result.Row{"id": marshal.NewUUID()})

		require.NoError(t, post.Load(ctx, "user"))
		assert.Nil(t, loaded(t, post, "user"))
		assert.Empty(t, r.calls)
	})

	t.Run("belongs to many", func(t *testing.T) {
		r := &fakeRunner{respond: func(stmt string, _ []any) ([]result.Row, error) {
			if strings.Contains(stmt, "role_user") {
				return []result.Row{{"role_id": adminID}, {"role_id": editorID}}, nil
			}
			return []result.Row{{"id": adminID, "name": "admin"}, {"id": editorID, "name": "editor"}}, nil
		}}
		user := users.NewFromRow(r, result.Row{"id": userID})

		require.NoError(t, user.Load(ctx, "roles"))
		related, ok := loaded(t, user, "roles").([]*model.Model)
		require.True(t, ok)
		assert.Len(t, related, 2)
		assert.Equal(t, []string{
			"SELECT role_id FROM role_user WHERE user_id = ? ALLOW FILTERING",
			"SELECT * FROM roles WHERE id IN (?, ?) ALLOW FILTERING",
		}, r.statements())
		assert.Equal(t, []any{adminID, editorID}, r.calls[1].bindings)
	})

	t.Run("belongs to many without pivot rows", func(t *testing.T) {
		r := &fakeRunner{}
		user := users.NewFromRow(r, result.Row{"id": userID})

		require.NoError(t, user.Load(ctx, "roles"))
		assert.Empty(t, loaded(t, user, "roles"))
		assert.Len(t, r.calls, 1)
	})

	t.Run("unknown relation", func(t *testing.T) {
		user := users.NewFromRow(&fakeRunner{}, result.Row{"id": userID})
		err := user.Load(ctx, "comments")
		assert.ErrorIs(t, err, model.ErrRelationNotFound)
	})

	t.Run("registered relations", func(t *testing.T) {
		rel, ok := users.Relation("roles")
		require.True(t, ok)
		assert.Equal(t, "roles", rel.Name())
		assert.Same(t, roles, rel.Related())

		_, ok = users.Relation("comments")
		assert.False(t, ok)
	})
}

func loaded(t *testing.T, m *model.Model, name string) any {
	t.Helper()
	v, ok := m.Relation(name)
	require.True(t, ok, "relation %s not loaded", name)

	return v
}
