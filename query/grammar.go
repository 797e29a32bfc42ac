package query

import (
	"sort"
	"strconv"
	"strings"
)

// Grammar compiles builders into CQL text.
//
// Bindings are returned in placeholder order. Values are not converted here;
// the connection layer marshals them right before execution.
type Grammar struct{}

// CompileSelect compiles a SELECT statement.
func (Grammar) CompileSelect(b *Builder) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	bindings := compileWheres(&sb, b.wheres, nil)

	if len(b.orders) > 0 {
		terms := make([]string, len(b.orders))
		for i, o := range b.orders {
			terms[i] = o.Column + " " + o.Direction
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	if b.allowFiltering {
		sb.WriteString(" ALLOW FILTERING")
	}

	return sb.String(), bindings
}

// CompileCount compiles a SELECT COUNT(*) statement. Ordering and limit are ignored.
func (Grammar) CompileCount(b *Builder) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(b.table)

	bindings := compileWheres(&sb, b.wheres, nil)
	if b.allowFiltering {
		sb.WriteString(" ALLOW FILTERING")
	}

	return sb.String(), bindings
}

// CompileInsert compiles an INSERT statement. Columns are emitted in sorted
// order so identical value sets always produce identical statement text.
func (Grammar) CompileInsert(b *Builder, values map[string]any) (string, []any) {
	columns := sortedKeys(values)
	bindings := make([]any, len(columns))
	for i, col := range columns {
		bindings[i] = values[col]
	}

	return "INSERT INTO " + b.table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		placeholders(len(columns)) + ")", bindings
}

// CompileUpdate compiles an UPDATE statement. SET columns are sorted.
func (Grammar) CompileUpdate(b *Builder, values map[string]any) (string, []any) {
	columns := sortedKeys(values)
	sets := make([]string, len(columns))
	bindings := make([]any, 0, len(columns)+len(b.wheres))
	for i, col := range columns {
		sets[i] = col + " = ?"
		bindings = append(bindings, values[col])
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))
	bindings = compileWheres(&sb, b.wheres, bindings)

	return sb.String(), bindings
}

// CompileDelete compiles a DELETE statement.
func (Grammar) CompileDelete(b *Builder) (string, []any) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(b.table)
	bindings := compileWheres(&sb, b.wheres, nil)

	return sb.String(), bindings
}

// CompileTableExists returns the statement checking a table in the schema
// catalog. It binds keyspace name then table name.
func (Grammar) CompileTableExists() string {
	return "SELECT table_name FROM system_schema.tables WHERE keyspace_name = ? AND table_name = ?"
}

func compileWheres(sb *strings.Builder, wheres []Where, bindings []any) []any {
	for i, w := range wheres {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(w.Column)
		if w.In {
			sb.WriteString(" IN (")
			sb.WriteString(placeholders(len(w.Values)))
			sb.WriteString(")")
			bindings = append(bindings, w.Values...)

			continue
		}
		sb.WriteString(" ")
		sb.WriteString(w.Operator)
		sb.WriteString(" ?")
		bindings = append(bindings, w.Value)
	}

	return bindings
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}

	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
