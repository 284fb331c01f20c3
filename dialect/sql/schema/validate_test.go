package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql"
)

func listsTable() *sql.CreateTableStmt {
	return sql.CreateTable("lists").
		Column(sql.Column("id", dialect.Auto).PrimaryKey()).
		Column(sql.Column("name", dialect.VarChar(64)).NotNull())
}

func todosTable() *sql.CreateTableStmt {
	return sql.CreateTable("todos").
		Column(sql.Column("id", dialect.Auto).PrimaryKey()).
		Column(sql.Column("label", dialect.Text).NotNull()).
		Column(sql.Column("list_id", dialect.Int).References("lists", "id"))
}

func TestValidateTable(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		result := ValidateTable(todosTable())
		assert.False(t, result.HasErrors())
		assert.False(t, result.HasWarnings())
		assert.NoError(t, result.Err())
		assert.Equal(t, "No issues found", result.String())
	})

	t.Run("no columns", func(t *testing.T) {
		result := ValidateTable(sql.CreateTable("empty"))
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "empty: table has no columns", result.Errors[0].Error())
	})

	t.Run("invalid columns", func(t *testing.T) {
		stmt := sql.CreateTable("t").
			Column(sql.Column("id", dialect.Int).PrimaryKey()).
			Column(sql.Column("id", dialect.Text)).
			Column(sql.Column("", dialect.Text)).
			Column(sql.Column("seq", dialect.Auto)).
			Column(sql.Column("x", dialect.Type{})).
			Column(sql.Column("ref", dialect.Int).References("", ""))
		result := ValidateTable(stmt)
		var msgs []string
		for _, e := range result.Errors {
			msgs = append(msgs, e.Error())
		}
		assert.ElementsMatch(t, []string{
			"t.id: duplicate column name",
			"t: column has no name",
			"t.seq: auto increment column must be the primary key",
			"t.x: column has no type",
			"t.ref: foreign key has no referenced table or column",
		}, msgs)
		require.Error(t, result.Err())
	})

	t.Run("primary keys", func(t *testing.T) {
		result := ValidateTable(sql.CreateTable("t").Column(sql.Column("a", dialect.Text)))
		assert.False(t, result.HasErrors())
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "t: table has no primary key", result.Warnings[0].Error())

		result = ValidateTable(sql.CreateTable("t").
			Column(sql.Column("a", dialect.Int).PrimaryKey()).
			Column(sql.Column("b", dialect.Int).PrimaryKey()))
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "t: multiple primary key columns", result.Errors[0].Error())
	})
}

func TestValidateSchema(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		idx := sql.CreateIndex("todos_label").On("todos", "label").Unique()
		result := ValidateSchema([]*sql.CreateTableStmt{listsTable(), todosTable()}, idx)
		assert.False(t, result.HasErrors(), result.String())
	})

	t.Run("missing references", func(t *testing.T) {
		orphan := sql.CreateTable("notes").
			Column(sql.Column("id", dialect.Auto).PrimaryKey()).
			Column(sql.Column("todo_id", dialect.Int).References("todos", "uuid")).
			Column(sql.Column("tag_id", dialect.Int).References("tags", "id"))
		result := ValidateSchema(
			[]*sql.CreateTableStmt{listsTable(), todosTable(), orphan, listsTable()},
			sql.CreateIndex("i").On("todos", "missing"),
			sql.CreateIndex("i").On("nope", "id"),
			sql.CreateIndex("j").On("todos"),
		)
		var msgs []string
		for _, e := range result.Errors {
			msgs = append(msgs, e.Error())
		}
		assert.ElementsMatch(t, []string{
			"lists: duplicate table name",
			`notes.todo_id: foreign key references non-existent column todos.uuid`,
			`notes.tag_id: foreign key references non-existent table "tags"`,
			`todos: index "i" references non-existent column "missing"`,
			"nope: duplicate index name: i",
			`nope: index "i" is on a non-existent table`,
			`todos: index "j" has no columns`,
		}, msgs)
	})
}

func TestValidateDiff(t *testing.T) {
	current := []*sql.CreateTableStmt{listsTable(), todosTable()}

	t.Run("no changes", func(t *testing.T) {
		result := ValidateDiff(current, []*sql.CreateTableStmt{listsTable(), todosTable()})
		assert.False(t, result.HasErrors())
		assert.False(t, result.HasWarnings())
	})

	t.Run("drop table", func(t *testing.T) {
		result := ValidateDiff(current, []*sql.CreateTableStmt{todosTable()})
		require.Len(t, result.Errors, 1)
		assert.True(t, result.HasBreakingChanges())
		assert.Contains(t, result.String(), "lists: table will be dropped [BREAKING]")

		result = ValidateDiff(current, []*sql.CreateTableStmt{todosTable()}, AllowDropTable())
		assert.False(t, result.HasErrors())
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("column changes", func(t *testing.T) {
		desired := sql.CreateTable("lists").
			Column(sql.Column("id", dialect.Auto).PrimaryKey()).
			Column(sql.Column("name", dialect.VarChar(32)).NotNull()).
			Column(sql.Column("owner", dialect.Text).NotNull())
		todos := sql.CreateTable("todos").
			Column(sql.Column("id", dialect.Auto).PrimaryKey()).
			Column(sql.Column("label", dialect.Binary).NotNull()).
			Column(sql.Column("list_id", dialect.Int).NotNull())
		result := ValidateDiff(current, []*sql.CreateTableStmt{desired, todos})

		var errs, warns []string
		for _, e := range result.Errors {
			errs = append(errs, e.Error())
		}
		for _, w := range result.Warnings {
			warns = append(warns, w.Error())
		}
		assert.ElementsMatch(t, []string{
			"todos.list_id: column changing from NULL to NOT NULL may fail if column has NULL values",
		}, errs)
		assert.ElementsMatch(t, []string{
			"lists.name: column size reducing from 64 to 32 may truncate data",
			"lists.owner: new NOT NULL column without default value may fail if table has data",
			"todos.label: column type changing from TEXT to BLOB",
		}, warns)

		result = ValidateDiff(current, []*sql.CreateTableStmt{listsTable(), todos}, AllowNullToNotNull())
		assert.False(t, result.HasErrors())
	})

	t.Run("drop column", func(t *testing.T) {
		desired := sql.CreateTable("todos").Column(sql.Column("id", dialect.Auto).PrimaryKey())
		result := ValidateDiff(current, []*sql.CreateTableStmt{listsTable(), desired})
		assert.Len(t, result.Errors, 2)
		result = ValidateDiff(current, []*sql.CreateTableStmt{listsTable(), desired}, AllowDropColumn())
		assert.False(t, result.HasErrors())
		assert.Len(t, result.Warnings, 2)
	})
}
