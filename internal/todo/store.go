// Package todo is the storage layer of the todos example program. Every
// statement it runs is built with the nibard statement builder.
package todo

import (
	"context"
	"fmt"
	"time"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql"
	"github.com/nibard/nibard/dialect/sql/schema"
	"github.com/nibard/nibard/value"
)

// Columns of the todos table.
var (
	Table            = sql.Table("todos")
	ID               = sql.Int64Field("id")
	Label            = sql.String("label")
	Done             = sql.BoolField("done")
	Created          = sql.TimeField("created_at")
	selectionColumns = sql.Selections(ID, Label, Done, Created)
)

const labelIndex = "todos_label"

// Todo is a row of the todos table.
type Todo struct {
	ID      int64     `json:"id" yaml:"id"`
	Label   string    `json:"label" yaml:"label"`
	Done    bool      `json:"done" yaml:"done"`
	Created time.Time `json:"created_at" yaml:"created_at"`
}

// Tables returns the schema of the program.
func Tables() []*sql.CreateTableStmt {
	return []*sql.CreateTableStmt{
		sql.CreateTable("todos").
			Column(sql.Column("id", dialect.Auto).PrimaryKey()).
			Column(sql.Column("label", dialect.VarChar(255)).NotNull()).
			Column(sql.Column("done", dialect.Bool).NotNull()).
			Column(sql.Column("created_at", dialect.DateTime).NotNull()),
	}
}

// Indexes returns the indexes created next to Tables.
func Indexes() []*sql.CreateIndexStmt {
	return []*sql.CreateIndexStmt{
		sql.CreateIndex(labelIndex).On("todos", "label").Unique(),
	}
}

// Store reads and writes todos through a sql.Runner.
type Store struct {
	r   sql.Runner
	now func() time.Time
}

// NewStore returns a Store running its statements on r.
func NewStore(r sql.Runner) *Store {
	return &Store{r: r, now: func() time.Time { return time.Now().UTC().Truncate(time.Second) }}
}

// Statements returns the DDL statements Init executes, in order.
func Statements() []sql.Statement {
	var stmts []sql.Statement
	for _, t := range Tables() {
		stmts = append(stmts, t)
	}
	for _, i := range Indexes() {
		stmts = append(stmts, i)
	}
	return stmts
}

// Init validates the schema and creates the missing tables and indexes.
func (s *Store) Init(ctx context.Context) error {
	if err := schema.ValidateSchema(Tables(), Indexes()...).Err(); err != nil {
		return fmt.Errorf("todo: invalid schema: %w", err)
	}
	for _, stmt := range Statements() {
		if _, err := sql.Exec(ctx, s.r, stmt); err != nil {
			return fmt.Errorf("todo: init: %w", err)
		}
	}
	return nil
}

// InsertStmt returns the statement Add runs for label.
func InsertStmt(label string, created time.Time) *sql.InsertStmt {
	return sql.Insert("todos").
		Set("label", label).
		Set("done", false).
		Set("created_at", created)
}

// Add inserts a todo and returns it with its generated id. A duplicate
// label is reported as a *nibard.ConstraintError.
func (s *Store) Add(ctx context.Context, label string) (*Todo, error) {
	t := &Todo{Label: label, Created: s.now()}
	stmt := InsertStmt(label, t.Created)
	if s.r.Dialect() == dialect.MySQL {
		res, err := sql.Exec(ctx, s.r, stmt)
		if err != nil {
			return nil, err
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}
		return t, nil
	}
	row, err := sql.QueryRow(ctx, s.r, stmt.Returning(ID))
	if err != nil {
		return nil, err
	}
	if t.ID, err = row.Get("id").Int64(); err != nil {
		return nil, err
	}
	return t, nil
}

// ListOptions pages and filters List.
type ListOptions struct {
	Limit   int
	Offset  int
	Pending bool
	Search  string
}

// ListStmt returns the query List runs.
func ListStmt(opts ListOptions) sql.Select {
	var q sql.Select = Table.Select(selectionColumns).OrderBy(ID.Asc())
	if opts.Pending {
		q = q.Filter(Done.EQ(false))
	}
	if opts.Search != "" {
		q = q.Filter(Label.Contains(opts.Search))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}

// List returns the todos ordered by id.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Todo, error) {
	rows, err := sql.QueryAll(ctx, s.r, ListStmt(opts))
	if err != nil {
		return nil, err
	}
	todos := make([]*Todo, 0, len(rows))
	for _, row := range rows {
		t, err := scan(row)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Get returns the todo with the given id, or a *nibard.NotFoundError.
func (s *Store) Get(ctx context.Context, id int64) (*Todo, error) {
	row, err := sql.QueryRow(ctx, s.r, Table.Select(selectionColumns).Filter(ID.EQ(id)).Limit(1))
	if err != nil {
		return nil, err
	}
	return scan(row)
}

// Count returns the number of todos, and how many of them are done.
func (s *Store) Count(ctx context.Context) (total, done int64, err error) {
	row, err := sql.QueryRow(ctx, s.r, Table.Select(sql.CountAll().As("total")))
	if err != nil {
		return 0, 0, err
	}
	if total, err = row.Get("total").Int64(); err != nil {
		return 0, 0, err
	}
	row, err = sql.QueryRow(ctx, s.r, Table.Select(sql.Count(ID).As("completed")).Filter(Done.EQ(true)))
	if err != nil {
		return 0, 0, err
	}
	if done, err = row.Get("completed").Int64(); err != nil {
		return 0, 0, err
	}
	return total, done, nil
}

// DoneStmt returns the statement Complete runs.
func DoneStmt(id int64) *sql.UpdateStmt {
	return sql.Update("todos").Set("done", true).On(ID.EQ(id))
}

// Complete marks a todo as done.
func (s *Store) Complete(ctx context.Context, id int64) error {
	return s.affectOne(ctx, DoneStmt(id))
}

// RemoveStmt returns the statement Remove runs.
func RemoveStmt(id int64) *sql.DeleteStmt {
	return sql.Delete("todos").Filter(ID.EQ(id))
}

// Remove deletes a todo.
func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.affectOne(ctx, RemoveStmt(id))
}

// affectOne runs stmt and reports a *nibard.NotFoundError when it changed
// no row.
func (s *Store) affectOne(ctx context.Context, stmt sql.Statement) error {
	res, err := sql.Exec(ctx, s.r, stmt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nibard.NewNotFoundError("todos")
	}
	return nil
}

func scan(row sql.Row) (*Todo, error) {
	var (
		t   Todo
		err error
	)
	if t.ID, err = row.Get("id").Int64(); err != nil {
		return nil, fmt.Errorf("todo: id: %w", err)
	}
	if t.Label, err = row.Get("label").Text(); err != nil {
		return nil, fmt.Errorf("todo: label: %w", err)
	}
	if t.Done, err = truth(row.Get("done")); err != nil {
		return nil, fmt.Errorf("todo: done: %w", err)
	}
	if t.Created, err = row.Get("created_at").Time(); err != nil {
		return nil, fmt.Errorf("todo: created_at: %w", err)
	}
	return &t, nil
}

// truth reads a BOOL column. MySQL reports it as TINYINT.
func truth(v value.Value) (bool, error) {
	if i, err := v.Int64(); err == nil {
		return i != 0, nil
	}
	return v.Bool()
}
