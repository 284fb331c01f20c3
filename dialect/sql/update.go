package sql

import (
	"slices"

	"github.com/nibard/nibard"
)

// UpdateStmt is an UPDATE statement.
type UpdateStmt struct {
	table     string
	sets      []assignment
	filters   []Expression
	returning []Selection
}

// Update starts an UPDATE of table.
func Update(table string) *UpdateStmt { return &UpdateStmt{table: table} }

// Set returns a copy of the statement assigning v to column. Assignments
// render in call order; setting a column again replaces its value.
func (u *UpdateStmt) Set(column string, v any) *UpdateStmt {
	cp := *u
	cp.sets = assign(u.sets, column, v)
	return &cp
}

// On returns a copy of the statement restricted to rows matching e.
// Multiple conditions are combined with AND.
func (u *UpdateStmt) On(e Expression) *UpdateStmt {
	cp := *u
	cp.filters = append(slices.Clip(u.filters), e)
	return &cp
}

// Filter is an alias of On.
func (u *UpdateStmt) Filter(e Expression) *UpdateStmt { return u.On(e) }

// Returning returns a copy of the statement with a RETURNING clause.
func (u *UpdateStmt) Returning(sel ...Selection) *UpdateStmt {
	cp := *u
	cp.returning = sel
	return &cp
}

// RenderStatement implements Statement. It renders
//
//	UPDATE t SET a = ?, b = ?[ WHERE ...]
//
// An UPDATE without assignments is rejected.
func (u *UpdateStmt) RenderStatement(c *Context) error {
	if len(u.sets) == 0 {
		return nibard.NewUnsupportedError("update without assignments", u.table)
	}
	c.Raw("UPDATE ")
	c.Ident(u.table)
	c.Raw(" SET ")
	for i, a := range u.sets {
		if i > 0 {
			c.Raw(", ")
		}
		c.Ident(a.column)
		c.Raw(" = ")
		if err := a.value.RenderExpr(c); err != nil {
			return err
		}
	}
	if err := renderWhere(c, u.filters); err != nil {
		return err
	}
	return renderReturning(c, u.returning)
}
