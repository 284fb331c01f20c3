package sql

import "slices"

// DeleteStmt is a DELETE statement.
type DeleteStmt struct {
	table   string
	filters []Expression
}

// Delete starts a DELETE from table.
func Delete(table string) *DeleteStmt { return &DeleteStmt{table: table} }

// Filter returns a copy of the statement restricted to rows matching e.
// Multiple filters are combined with AND.
func (d *DeleteStmt) Filter(e Expression) *DeleteStmt {
	cp := *d
	cp.filters = append(slices.Clip(d.filters), e)
	return &cp
}

// RenderStatement implements Statement. It renders
//
//	DELETE FROM t[ WHERE ...]
func (d *DeleteStmt) RenderStatement(c *Context) error {
	c.Raw("DELETE FROM ")
	c.Ident(d.table)
	return renderWhere(c, d.filters)
}
