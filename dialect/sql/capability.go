package sql

// The capability interfaces below are structural: any type with the render
// method qualifies. Each capability has its own method because one node can
// render differently depending on where it appears. A ColumnAlias, for
// example, renders "col AS alias" in a select list but only "alias" when it
// is referenced as a column.
type (
	// Expression is a value or predicate fragment.
	Expression interface {
		RenderExpr(*Context) error
	}

	// Columnar is a column reference usable in predicates, ORDER BY and
	// function arguments.
	Columnar interface {
		RenderColumn(*Context) error
	}

	// Selection is anything that can appear in a SELECT list or RETURNING
	// clause.
	Selection interface {
		RenderSelection(*Context) error
	}

	// Tabular is a table reference, used to qualify columns.
	Tabular interface {
		RenderTable(*Context) error
	}

	// Target is anything that can appear after FROM.
	Target interface {
		RenderTarget(*Context) error
	}

	// Joinable is a JOIN clause.
	Joinable interface {
		RenderJoin(*Context) error
	}

	// Statement is a complete SQL statement.
	Statement interface {
		RenderStatement(*Context) error
	}
)

// TableName is a bare table name. It is both a Tabular and a Target.
type TableName string

// Table returns a table reference.
func Table(name string) TableName { return TableName(name) }

// RenderTable implements Tabular.
func (t TableName) RenderTable(c *Context) error { return c.Ident(string(t)) }

// RenderTarget implements Target.
func (t TableName) RenderTarget(c *Context) error { return c.Ident(string(t)) }

// C returns the column name qualified by the table.
func (t TableName) C(column string) *TableColumn {
	return &TableColumn{table: t, column: column}
}

// As aliases the table.
func (t TableName) As(alias string) *TableAlias {
	return &TableAlias{table: t, alias: alias}
}

// Select starts a SELECT from the table.
func (t TableName) Select(sel ...Selection) *SelectStmt { return From(t, sel...) }

// TableAlias pairs a table (or subquery) with an alias. As a Target it
// renders "table AS alias"; as a table reference only "alias".
type TableAlias struct {
	table Tabular
	alias string
}

// RenderTarget implements Target.
func (a *TableAlias) RenderTarget(c *Context) error {
	if err := a.table.RenderTable(c); err != nil {
		return err
	}
	c.Raw(" AS ")
	return c.Ident(a.alias)
}

// RenderTable implements Tabular.
func (a *TableAlias) RenderTable(c *Context) error { return c.Ident(a.alias) }

// C returns the column qualified by the alias.
func (a *TableAlias) C(column string) *TableColumn {
	return &TableColumn{table: a, column: column}
}

// Select starts a SELECT from the aliased table.
func (a *TableAlias) Select(sel ...Selection) *SelectStmt { return From(a, sel...) }

// TargetList is a comma separated list of FROM targets.
type TargetList []Target

// Targets returns a comma separated list of targets. Order is kept.
func Targets(ts ...Target) TargetList { return TargetList(ts) }

// RenderTarget implements Target.
func (l TargetList) RenderTarget(c *Context) error {
	return join(c, l, ", ", Target.RenderTarget)
}

// Select starts a SELECT from the target list.
func (l TargetList) Select(sel ...Selection) *SelectStmt { return From(l, sel...) }

// SelectionList is a comma separated list of selections of any length.
type SelectionList []Selection

// Selections returns a comma separated list of selections.
func Selections(s ...Selection) SelectionList { return SelectionList(s) }

// Cols returns a selection list of plain column names.
func Cols(names ...string) SelectionList {
	l := make(SelectionList, len(names))
	for i, n := range names {
		l[i] = ColumnName(n)
	}
	return l
}

// RenderSelection implements Selection.
func (l SelectionList) RenderSelection(c *Context) error {
	return join(c, l, ", ", Selection.RenderSelection)
}

// ColumnList is a comma separated list of column references. It renders as
// a selection and as a column.
type ColumnList []Columnar

// Columns returns a comma separated list of columns.
func Columns(cs ...Columnar) ColumnList { return ColumnList(cs) }

// RenderColumn implements Columnar.
func (l ColumnList) RenderColumn(c *Context) error {
	return join(c, l, ", ", Columnar.RenderColumn)
}

// RenderSelection implements Selection.
func (l ColumnList) RenderSelection(c *Context) error { return l.RenderColumn(c) }

type star struct{}

// Star selects every column.
var Star Selection = star{}

func (star) RenderSelection(c *Context) error { return c.Raw("*") }
