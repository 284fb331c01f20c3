package sql

import (
	"slices"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
)

// assignment is one column/value pair of an INSERT or UPDATE.
type assignment struct {
	column string
	value  Expression
}

// assign returns a copy of as with column set to v. Setting a column twice
// replaces its value in place, so call order decides the column order.
func assign(as []assignment, column string, v any) []assignment {
	out := slices.Clone(as)
	for i := range out {
		if out[i].column == column {
			out[i].value = expr(v)
			return out
		}
	}
	return append(out, assignment{column: column, value: expr(v)})
}

// InsertStmt is an INSERT statement.
type InsertStmt struct {
	table     string
	values    []assignment
	returning []Selection
}

// Insert starts an INSERT into table.
func Insert(table string) *InsertStmt { return &InsertStmt{table: table} }

// Set returns a copy of the statement inserting v into column. v may be an
// Expression or a Go value, which is bound.
func (i *InsertStmt) Set(column string, v any) *InsertStmt {
	cp := *i
	cp.values = assign(i.values, column, v)
	return &cp
}

// Returning returns a copy of the statement with a RETURNING clause.
// MySQL has no RETURNING and fails to render it.
func (i *InsertStmt) Returning(sel ...Selection) *InsertStmt {
	cp := *i
	cp.returning = sel
	return &cp
}

// RenderStatement implements Statement. It renders
//
//	INSERT INTO t (a,b) VALUES (?,?)[ RETURNING ...]
//
// with the columns in the order they were first set.
func (i *InsertStmt) RenderStatement(c *Context) error {
	c.Raw("INSERT INTO ")
	c.Ident(i.table)
	switch {
	case len(i.values) > 0:
		c.Raw(" (")
		for n, a := range i.values {
			if n > 0 {
				c.Raw(",")
			}
			c.Ident(a.column)
		}
		c.Raw(") VALUES (")
		for n, a := range i.values {
			if n > 0 {
				c.Raw(",")
			}
			if err := a.value.RenderExpr(c); err != nil {
				return err
			}
		}
		c.Raw(")")
	case c.Dialect() == dialect.MySQL:
		c.Raw(" () VALUES ()")
	default:
		c.Raw(" DEFAULT VALUES")
	}
	return renderReturning(c, i.returning)
}

func renderReturning(c *Context, sel []Selection) error {
	if len(sel) == 0 {
		return c.Err()
	}
	if c.Dialect() == dialect.MySQL {
		return nibard.NewUnsupportedError("returning", c.Dialect().String())
	}
	c.Raw(" RETURNING ")
	return join(c, sel, ", ", Selection.RenderSelection)
}
