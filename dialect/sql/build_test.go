package sql

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/value"
)

func build(t *testing.T, d dialect.Dialect, stmt Statement, opts ...Option) (string, []value.Value) {
	t.Helper()
	query, params, err := Build(d, stmt, opts...)
	require.NoError(t, err)
	return query, params
}

func TestBuildScenarios(t *testing.T) {
	tests := []struct {
		name   string
		stmt   Statement
		query  string
		params []value.Value
	}{
		{
			name:   "select filter",
			stmt:   Table("todos").Select(Cols("id", "label")).Filter(Col("id").EQ(int32(1))),
			query:  "SELECT id, label FROM todos WHERE id = ?",
			params: []value.Value{value.Int(1)},
		},
		{
			name:   "select filter with go int",
			stmt:   Table("todos").Select(Cols("id", "label")).Filter(Col("id").EQ(1)),
			query:  "SELECT id, label FROM todos WHERE id = ?",
			params: []value.Value{value.BigInt(1)},
		},
		{
			name:   "insert",
			stmt:   Insert("todos").Set("label", "Hello"),
			query:  "INSERT INTO todos (label) VALUES (?)",
			params: []value.Value{value.Text("Hello")},
		},
		{
			name:   "update",
			stmt:   Update("todos").Set("label", "X").On(Col("id").EQ(int32(5))),
			query:  "UPDATE todos SET label = ? WHERE id = ?",
			params: []value.Value{value.Text("X"), value.Int(5)},
		},
		{
			name:   "delete",
			stmt:   Delete("todos").Filter(Col("id").EQ(int32(3))),
			query:  "DELETE FROM todos WHERE id = ?",
			params: []value.Value{value.Int(3)},
		},
		{
			name:  "limit offset",
			stmt:  Table("todos").Select(Col("id")).Limit(10).Offset(5),
			query: "SELECT id FROM todos LIMIT 10 OFFSET 5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params := build(t, dialect.SQLite, tt.stmt)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestBuildDialects(t *testing.T) {
	stmt := Table("todos").
		Select(Cols("id", "order")).
		Filter(Col("id").EQ(1).And(Col("done").EQ(false)))

	query, params := build(t, dialect.SQLite, stmt)
	assert.Equal(t, `SELECT id, "order" FROM todos WHERE id = ? AND done = ?`, query)
	assert.Equal(t, []value.Value{value.BigInt(1), value.Bool(false)}, params)

	query, params = build(t, dialect.Postgres, stmt)
	assert.Equal(t, `SELECT id, "order" FROM todos WHERE id = $1 AND done = $2`, query)
	assert.Equal(t, []value.Value{value.BigInt(1), value.Bool(false)}, params)

	query, _ = build(t, dialect.MySQL, stmt)
	assert.Equal(t, "SELECT id, `order` FROM todos WHERE id = ? AND done = ?", query)
}

var placeholderRE = regexp.MustCompile(`\$(\d+)`)

func TestBuildPlaceholderAlignment(t *testing.T) {
	stmts := []Statement{
		Table("todos").Select(Cols("id", "label")).
			Filter(Col("id").In(1, 2, 3)).
			Filter(Col("label").Like("a%").Or(Col("label").EQ(nil))).
			Limit(3),
		Insert("todos").Set("label", "a").Set("note", nil).Set("done", true).Returning(Col("id")),
		Update("todos").Set("label", "b").Set("note", nil).On(Col("id").GT(7)).On(Col("done").EQ(false)),
		Delete("todos").Filter(Not(Col("id").In(Sub(Table("archive").Select(Col("todo_id")).Filter(Col("year").LT(2020)))))),
	}
	for i, stmt := range stmts {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			query, params := build(t, dialect.Postgres, stmt)
			matches := placeholderRE.FindAllStringSubmatch(query, -1)
			require.Len(t, matches, len(params))
			for n, m := range matches {
				assert.Equal(t, strconv.Itoa(n+1), m[1])
			}
			for _, p := range params {
				assert.False(t, p.IsNull())
			}
			query, params = build(t, dialect.SQLite, stmt)
			assert.Equal(t, len(params), strings.Count(query, "?"))
		})
	}
}

func TestBuildNullInlining(t *testing.T) {
	query, params := build(t, dialect.Postgres, Insert("todos").Set("label", nil).Set("done", true))
	assert.Equal(t, "INSERT INTO todos (label,done) VALUES (NULL,$1)", query)
	assert.Equal(t, []value.Value{value.Bool(true)}, params)

	query, params = build(t, dialect.SQLite, Update("todos").Set("label", value.Null()).On(Col("id").EQ(2)))
	assert.Equal(t, "UPDATE todos SET label = NULL WHERE id = ?", query)
	assert.Equal(t, []value.Value{value.BigInt(2)}, params)

	var missing *string
	query, params = build(t, dialect.SQLite, Table("todos").Select().Filter(Col("note").EQ(missing)))
	assert.Equal(t, "SELECT * FROM todos WHERE note = NULL", query)
	assert.Empty(t, params)
}

func TestBuildConversionError(t *testing.T) {
	query, params, err := Build(dialect.SQLite, Table("todos").Select().Filter(Col("id").EQ(struct{}{})))
	require.Error(t, err)
	assert.True(t, nibard.IsConversionError(err))
	assert.Empty(t, query)
	assert.Nil(t, params)
}

func TestBuildUnsupported(t *testing.T) {
	tests := []struct {
		name string
		d    dialect.Dialect
		stmt Statement
	}{
		{"full outer join on mysql", dialect.MySQL, Table("a").Select().Join(OuterJoin(Table("b")))},
		{"returning on mysql", dialect.MySQL, Insert("a").Set("x", 1).Returning(Col("id"))},
		{"update without set", dialect.SQLite, Update("a").On(Col("id").EQ(1))},
		{"rename column", dialect.Postgres, AlterTable("a").RenameColumn("x", "y")},
		{"alter without change", dialect.Postgres, AlterTable("a")},
		{"constraint on sqlite", dialect.SQLite, AlterTable("a").AddForeignKey("fk", "b_id", References("b", "id"))},
		{"unknown column type", dialect.SQLite, CreateTable("a").Column(Column("x", dialect.Type{}))},
		{"zero operator", dialect.SQLite, Table("a").Select().Filter(Binary(Col("x"), Op(0), Val(1)))},
		{"unknown operator", dialect.MySQL, Table("a").Select().Filter(Binary(Col("x"), Op(200), Val(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params, err := Build(tt.d, tt.stmt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, nibard.ErrUnsupported))
			assert.True(t, nibard.IsUnsupported(err))
			assert.Empty(t, query)
			assert.Nil(t, params)
		})
	}
}

func TestMustBuild(t *testing.T) {
	query, params := MustBuild(dialect.SQLite, Delete("todos"))
	assert.Equal(t, "DELETE FROM todos", query)
	assert.Empty(t, params)
	assert.Panics(t, func() {
		MustBuild(dialect.MySQL, Table("a").Select().Join(OuterJoin(Table("b"))))
	})
}

func TestBuildShared(t *testing.T) {
	base := Table("todos").Select(Cols("id", "label")).Filter(Col("done").EQ(false))
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stmt := base.Filter(Col("id").GT(int64(i))).Limit(10)
			query, params, err := Build(dialect.Postgres, stmt)
			assert.NoError(t, err)
			assert.Equal(t, "SELECT id, label FROM todos WHERE done = $1 AND id > $2 LIMIT 10", query)
			assert.Equal(t, []value.Value{value.Bool(false), value.BigInt(int64(i))}, params)
		}()
	}
	wg.Wait()

	query, _ := build(t, dialect.SQLite, base)
	assert.Equal(t, "SELECT id, label FROM todos WHERE done = ?", query)
}

func BenchmarkBuild(b *testing.B) {
	todos := Table("todos").As("t")
	tags := Table("tags").As("g")
	stmts := map[string]Statement{
		"select": todos.Select(todos.C("id"), todos.C("label"), tags.C("name")).
			Join(LeftJoin(tags).On(todos.C("id").EQ(tags.C("todo_id")))).
			Filter(todos.C("done").EQ(false)).
			OrderBy(todos.C("id").Desc()).
			Limit(10),
		"insert": Insert("todos").Set("label", "Hello").Set("done", false).Set("priority", 3),
		"update": Update("todos").Set("label", "X").Set("done", true).On(Col("id").EQ(5)),
		"delete": Delete("todos").Filter(Col("id").In(1, 2, 3)),
	}
	for _, d := range dialect.All {
		for name, stmt := range stmts {
			b.Run(d.String()+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_, _, _ = Build(d, stmt)
				}
			})
		}
	}
}
