package sql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/value"
)

var (
	todoID    IntField  = "id"
	todoDone  BoolField = "done"
	todoDue   TimeField = "due"
	todoLabel           = String("label")
)

func TestFieldPredicates(t *testing.T) {
	due := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		pred   Expression
		where  string
		params []value.Value
	}{
		{"eq", todoID.EQ(1), "id = ?", []value.Value{value.BigInt(1)}},
		{"neq", todoDone.NEQ(true), "done != ?", []value.Value{value.Bool(true)}},
		{"lt", todoDue.LT(due), "due < ?", []value.Value{value.DateTime(due)}},
		{"range", todoID.GTE(2).And(todoID.LTE(4)), "id >= ? AND id <= ?", []value.Value{value.BigInt(2), value.BigInt(4)}},
		{"gt", todoID.GT(0), "id > ?", []value.Value{value.BigInt(0)}},
		{"in", todoID.In(1, 2), "id IN (?, ?)", []value.Value{value.BigInt(1), value.BigInt(2)}},
		{"not in", todoID.NotIn(3), "NOT (id IN (?))", []value.Value{value.BigInt(3)}},
		{"null", todoDue.IsNull(), "due IS NULL", nil},
		{"not null", todoDue.NotNull(), "due IS NOT NULL", nil},
		{"string eq", todoLabel.EQ("a"), "label = ?", []value.Value{value.Text("a")}},
		{"like", todoLabel.Like("a_%"), "label LIKE ?", []value.Value{value.Text("a_%")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := build(t, dialect.SQLite, Table("todos").Select(todoID, todoLabel).Filter(tt.pred))
			assert.Equal(t, "SELECT id, label FROM todos WHERE "+tt.where, query)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestStringFieldPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pred    Expression
		pattern string
	}{
		{"contains", todoLabel.Contains("50%_off"), `%50\%\_off%`},
		{"prefix", todoLabel.HasPrefix(`C:\`), `C:\\%`},
		{"suffix", todoLabel.HasSuffix("done"), "%done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := build(t, dialect.SQLite, Delete("todos").Filter(tt.pred))
			assert.Equal(t, `DELETE FROM todos WHERE label LIKE ? ESCAPE '\'`, query)
			assert.Equal(t, []value.Value{value.Text(tt.pattern)}, params)
		})
	}
	query, _ := build(t, dialect.MySQL, Delete("todos").Filter(todoLabel.Contains("x")))
	assert.Equal(t, `DELETE FROM todos WHERE label LIKE ? ESCAPE '\\'`, query)
	query, _ = build(t, dialect.Postgres, Delete("todos").Filter(todoLabel.Contains("x")))
	assert.Equal(t, `DELETE FROM todos WHERE label LIKE $1 ESCAPE '\'`, query)
}

func TestFieldOrderAndAlias(t *testing.T) {
	query, _ := build(t, dialect.SQLite, Table("todos").Select(todoID.As("todo_id")).OrderBy(todoDue.Desc(), todoID.Asc()))
	assert.Equal(t, "SELECT id AS todo_id FROM todos ORDER BY due DESC, id ASC", query)
	assert.Equal(t, "label", todoLabel.Name())
}
