package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/model"
	"github.com/arloliu/cassorm/result"
)

type call struct {
	stmt     string
	bindings []any
}

// fakeRunner records statements and answers SELECTs through respond.
type fakeRunner struct {
	calls   []call
	respond func(stmt string, bindings []any) ([]result.Row, error)
}

func (r *fakeRunner) Execute(_ context.Context, stmt string, bindings []any) (*result.Collection, error) {
	r.calls = append(r.calls, call{stmt: stmt, bindings: bindings})
	if r.respond == nil {
		return result.Empty(), nil
	}

	rows, err := r.respond(stmt, bindings)
	if err != nil {
		return nil, err
	}

	return result.New(rows, nil, nil), nil
}

func (r *fakeRunner) statements() []string {
	stmts := make([]string, len(r.calls))
	for i, c := range r.calls {
		stmts[i] = c.stmt
	}

	return stmts
}

func TestDefinitionNaming(t *testing.T) {
	users := model.Define("users")
	assert.Equal(t, "users", users.Table())
	assert.Equal(t, "id", users.KeyName())
	assert.Equal(t, "id", users.QualifiedKeyName())
	assert.Equal(t, "user_id", users.ForeignKey())
	assert.Equal(t, marshal.KindUUID, users.KeyKind())
	assert.ElementsMatch(t, []string{"created_at", "updated_at"}, users.Dates())

	people := model.Define("people", model.WithKeyName("person_key"), model.WithTimestamps(false),
		model.WithDates("born_on"), model.WithSoftDeletes())
	assert.Equal(t, "person_key", people.QualifiedKeyName())
	assert.Equal(t, "person_person_key", people.ForeignKey())
	assert.ElementsMatch(t, []string{"born_on", "deleted_at"}, people.Dates())

	m := people.New(nil)
	assert.Equal(t, "person_key", m.QualifiedKeyName())
}

func TestSetAttributeMutatorReplacesDefaultHandling(t *testing.T) {
	calls := 0
	def := model.Define("users",
		model.WithDates("seen_at"),
		model.WithMutator("seen_at", func(m *model.Model, value any) error {
			calls++
			m.SetRaw("seen_at", "mutated")
			return nil
		}),
		model.WithMutator("email", func(m *model.Model, value any) error {
			s, ok := value.(string)
			if !ok {
				return errors.New("email must be a string")
			}
			m.SetRaw("email", "<"+s+">")
			return nil
		}),
	)

	m := def.New(nil)
	require.NoError(t, m.SetAttribute("seen_at", time.Now()))
	assert.Equal(t, "mutated", m.Attributes()["seen_at"])
	assert.Equal(t, 1, calls)

	require.NoError(t, m.SetAttribute("email", "ann@example.com"))
	assert.Equal(t, "<ann@example.com>", m.Attributes()["email"])
	assert.Error(t, m.SetAttribute("email", 42))
}

func TestSetAttributeDatePath(t *testing.T) {
	def := model.Define("events",
		model.WithDates("starts_at"),
		model.WithCasts(map[string]string{"ends_at": "datetime"}),
	)
	m := def.New(nil)

	at := time.Date(2024, 1, 2, 3, 4, 5, 600_000_000, time.UTC)
	require.NoError(t, m.SetAttribute("starts_at", at))
	require.NoError(t, m.SetAttribute("ends_at", "2024-01-02 10:00:00"))
	require.NoError(t, m.SetAttribute("created_at", int64(1_700_000_000)))
	require.NoError(t, m.SetAttribute("updated_at", nil))

	attrs := m.Attributes()
	assert.Equal(t, marshal.TimestampOf(at), attrs["starts_at"])
	assert.Equal(t, marshal.Timestamp(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC).UnixMilli()), attrs["ends_at"])
	assert.Equal(t, marshal.Timestamp(1_700_000_000_000), attrs["created_at"])
	assert.Nil(t, attrs["updated_at"])

	got, ok := m.GetAttribute("starts_at").(time.Time)
	require.True(t, ok)
	assert.True(t, got.Equal(at))

	assert.Error(t, m.SetAttribute("starts_at", "not a date"))
}

func TestSetAttributeJSON(t *testing.T) {
	def := model.Define("users", model.WithCasts(map[string]string{"settings": "json"}))
	m := def.New(nil)

	require.NoError(t, m.SetAttribute("settings", map[string]any{"theme": "dark"}))
	assert.JSONEq(t, `{"theme":"dark"}`, m.Attributes()["settings"].(string))

	require.NoError(t, m.SetAttribute("settings->notify->email", true))
	assert.JSONEq(t, `{"theme":"dark","notify":{"email":true}}`, m.Attributes()["settings"].(string))

	decoded, ok := m.GetAttribute("settings").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dark", decoded["theme"])

	require.NoError(t, m.SetAttribute("settings", `{"raw":1}`))
	assert.Equal(t, `{"raw":1}`, m.Attributes()["settings"])
}

func TestGetAttribute(t *testing.T) {
	def := model.Define("users",
		model.WithCasts(map[string]string{"age": "int", "score": "float", "active": "bool", "nick": "string"}),
		model.WithAccessor("name", func(_ *model.Model, v any) any {
			s, _ := v.(string)
			return "Dr. " + s
		}),
	)
	m := def.NewFromRow(nil, result.Row{
		"age":    "42",
		"score":  "1.5",
		"active": "true",
		"nick":   marshal.NewTimeUUID(),
		"name":   "ann",
		"raw":    []string{"a"},
	})

	assert.Equal(t, int64(42), m.GetAttribute("age"))
	assert.Equal(t, 1.5, m.GetAttribute("score"))
	assert.Equal(t, true, m.GetAttribute("active"))
	assert.IsType(t, "", m.GetAttribute("nick"))
	assert.Equal(t, "Dr. ann", m.GetAttribute("name"))
	assert.Equal(t, []string{"a"}, m.GetAttribute("raw"))
	assert.Nil(t, m.GetAttribute("missing"))

	m.SetRelation("posts", []*model.Model{})
	assert.Equal(t, []*model.Model{}, m.GetAttribute("posts"))
}

func TestOriginalIsEquivalent(t *testing.T) {
	def := model.Define("users",
		model.WithDates("seen_at"),
		model.WithCasts(map[string]string{"age": "int", "flags": "json"}),
	)
	id := marshal.NewUUID()
	seen := time.Date(2024, 6, 1, 12, 0, 0, 250_000_000, time.UTC)
	price, err := marshal.ParseDecimal("9.50")
	require.NoError(t, err)
	samePrice, err := marshal.ParseDecimal("9.50")
	require.NoError(t, err)
	ip, err := marshal.ParseInet("10.0.0.1")
	require.NoError(t, err)

	m := def.NewFromRow(nil, result.Row{
		"id":      id,
		"seen_at": marshal.TimestampOf(seen),
		"age":     int64(30),
		"flags":   `{"a":1}`,
		"price":   price,
		"ref":     id.String(),
		"ip":      "10.0.0.1",
		"count":   10,
		"ratio":   0.5,
		"name":    "ann",
		"empty":   nil,
	})

	tests := []struct {
		name    string
		key     string
		current any
		want    bool
	}{
		{"missing from snapshot", "unknown", "x", false},
		{"identical", "name", "ann", true},
		{"different string", "name", "bob", false},
		{"nil against value", "name", nil, false},
		{"nil against nil", "empty", nil, true},
		{"date as time", "seen_at", seen, true},
		{"date as other instant", "seen_at", seen.Add(time.Second), false},
		{"date as epoch seconds truncates", "seen_at", seen.Unix(), false},
		{"cast int from string", "age", "30", true},
		{"cast int different", "age", "31", false},
		{"cast json reformatted", "flags", `{ "a": 1 }`, true},
		{"uuid string against native snapshot", "id", id.String(), false},
		{"native uuid against string snapshot", "ref", id, true},
		{"native uuid different", "ref", marshal.NewUUID(), false},
		{"native decimal same value", "price", samePrice, true},
		{"native inet against string snapshot", "ip", ip, true},
		{"numeric int vs string", "count", "10", true},
		{"numeric int vs int64", "count", int64(10), true},
		{"numeric float vs string", "ratio", "0.5", true},
		{"numeric different", "count", 11, false},
		{"numeric vs non numeric", "count", "ten", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.OriginalIsEquivalent(tt.key, tt.current))
		})
	}
}

func TestDirtyTracking(t *testing.T) {
	def := model.Define("users", model.WithTimestamps(false))
	m := def.NewFromRow(nil, result.Row{"id": marshal.NewUUID(), "name": "ann", "age": 30})

	assert.False(t, m.IsDirty())
	assert.Equal(t, model.Persisted, m.State())

	require.NoError(t, m.SetAttribute("age", "30"))
	assert.False(t, m.IsDirty())

	require.NoError(t, m.SetAttribute("name", "bob"))
	assert.True(t, m.IsDirty())
	assert.True(t, m.IsDirty("name"))
	assert.False(t, m.IsDirty("age"))
	assert.Equal(t, map[string]any{"name": "bob"}, m.GetDirty())
	assert.Equal(t, model.Modified, m.State())
	assert.Equal(t, "ann", m.GetOriginal("name"))

	m.SyncOriginal()
	assert.False(t, m.IsDirty())
	assert.Equal(t, "bob", m.Original()["name"])
}

func TestToMap(t *testing.T) {
	def := model.Define("users",
		model.WithHidden("password"),
		model.WithCasts(map[string]string{"age": "int", "birthday": "date", "prefs": "json"}),
		model.WithAccessor("name", func(_ *model.Model, v any) any {
			return "user:" + v.(string)
		}),
		model.WithAccessor("display", func(m *model.Model, _ any) any {
			return m.Attributes()["name"].(string) + " (" + m.Attributes()["email"].(string) + ")"
		}),
		model.WithAppends("display"),
	)

	id := marshal.NewUUID()
	created := time.Date(2024, 2, 29, 23, 59, 58, 0, time.UTC)
	price, err := marshal.ParseDecimal("12.30")
	require.NoError(t, err)

	m := def.NewFromRow(nil, result.Row{
		"id":         id,
		"name":       "ann",
		"email":      "ann@example.com",
		"password":   "secret",
		"age":        "41",
		"birthday":   "1983-04-05",
		"prefs":      `{"lang":"en"}`,
		"created_at": marshal.TimestampOf(created),
		"updated_at": nil,
		"price":      price,
	})

	out := m.ToMap()
	assert.NotContains(t, out, "password")
	assert.Equal(t, id.String(), out["id"])
	assert.Equal(t, "user:ann", out["name"])
	assert.Equal(t, int64(41), out["age"])
	assert.Equal(t, "1983-04-05 00:00:00", out["birthday"])
	assert.Equal(t, map[string]any{"lang": "en"}, out["prefs"])
	assert.Equal(t, "2024-02-29 23:59:58", out["created_at"])
	assert.Nil(t, out["updated_at"])
	assert.Equal(t, "12.30", out["price"])
	assert.Equal(t, "ann (ann@example.com)", out["display"])
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "transient", model.Transient.String())
	assert.Equal(t, "persisted", model.Persisted.String())
	assert.Equal(t, "modified", model.Modified.String())
	assert.Equal(t, "deleted", model.Deleted.String())
}
