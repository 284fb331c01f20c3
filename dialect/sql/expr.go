package sql

import (
	"fmt"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/value"
)

// Op is a binary operator.
type Op uint8

// Binary operators.
const (
	OpEQ Op = iota + 1
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpNEQ
	OpAnd
	OpOr
	OpLike
	OpIn
)

var opText = [...]string{
	OpEQ:   "=",
	OpLT:   "<",
	OpLTE:  "<=",
	OpGT:   ">",
	OpGTE:  ">=",
	OpNEQ:  "!=",
	OpAnd:  "AND",
	OpOr:   "OR",
	OpLike: "LIKE",
	OpIn:   "IN",
}

// Valid reports whether o is one of the defined operators.
func (o Op) Valid() bool { return o >= OpEQ && int(o) < len(opText) }

// String returns the SQL text of the operator.
func (o Op) String() string {
	if o.Valid() {
		return opText[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// ColumnName is a bare column name. It is a Columnar, a Selection and an
// Expression.
type ColumnName string

// Col returns a column reference.
func Col(name string) ColumnName { return ColumnName(name) }

// RenderColumn implements Columnar.
func (n ColumnName) RenderColumn(c *Context) error { return c.Ident(string(n)) }

// RenderSelection implements Selection.
func (n ColumnName) RenderSelection(c *Context) error { return c.Ident(string(n)) }

// RenderExpr implements Expression.
func (n ColumnName) RenderExpr(c *Context) error { return c.Ident(string(n)) }

// Shorthands for the package level predicates of the same name.

func (n ColumnName) EQ(v any) *BinaryExpr { return EQ(n, v) }
func (n ColumnName) NEQ(v any) *BinaryExpr { return NEQ(n, v) }
func (n ColumnName) LT(v any) *BinaryExpr { return LT(n, v) }
func (n ColumnName) LTE(v any) *BinaryExpr { return LTE(n, v) }
func (n ColumnName) GT(v any) *BinaryExpr { return GT(n, v) }
func (n ColumnName) GTE(v any) *BinaryExpr { return GTE(n, v) }
func (n ColumnName) Like(p string) *BinaryExpr { return Like(n, p) }
func (n ColumnName) In(vs ...any) *BinaryExpr { return In(n, vs...) }
func (n ColumnName) IsNull() *NullCheck { return IsNull(n) }
func (n ColumnName) NotNull() *NullCheck { return NotNull(n) }
func (n ColumnName) Asc() Order { return Asc(n) }
func (n ColumnName) Desc() Order { return Desc(n) }

// As aliases the column.
func (n ColumnName) As(alias string) *ColumnAlias { return As(n, alias) }

// TableColumn is a column qualified by its table. It renders "table.column".
type TableColumn struct {
	table  Tabular
	column string
}

// RenderColumn implements Columnar.
func (t *TableColumn) RenderColumn(c *Context) error {
	if err := t.table.RenderTable(c); err != nil {
		return err
	}
	c.Raw(".")
	return c.Ident(t.column)
}

// RenderSelection implements Selection.
func (t *TableColumn) RenderSelection(c *Context) error { return t.RenderColumn(c) }

// RenderExpr implements Expression.
func (t *TableColumn) RenderExpr(c *Context) error { return t.RenderColumn(c) }

// Shorthands for the package level predicates of the same name.

func (t *TableColumn) EQ(v any) *BinaryExpr { return EQ(t, v) }
func (t *TableColumn) NEQ(v any) *BinaryExpr { return NEQ(t, v) }
func (t *TableColumn) LT(v any) *BinaryExpr { return LT(t, v) }
func (t *TableColumn) LTE(v any) *BinaryExpr { return LTE(t, v) }
func (t *TableColumn) GT(v any) *BinaryExpr { return GT(t, v) }
func (t *TableColumn) GTE(v any) *BinaryExpr { return GTE(t, v) }
func (t *TableColumn) Like(p string) *BinaryExpr { return Like(t, p) }
func (t *TableColumn) In(vs ...any) *BinaryExpr { return In(t, vs...) }
func (t *TableColumn) IsNull() *NullCheck { return IsNull(t) }
func (t *TableColumn) NotNull() *NullCheck { return NotNull(t) }
func (t *TableColumn) Asc() Order { return Asc(t) }
func (t *TableColumn) Desc() Order { return Desc(t) }

// As aliases the column.
func (t *TableColumn) As(alias string) *ColumnAlias { return As(t, alias) }

// ColumnAlias pairs a column with an alias. In a select list it renders
// "column AS alias"; referenced as a column or expression it renders only
// "alias".
type ColumnAlias struct {
	column Columnar
	alias  string
}

// As aliases a column.
func As(col Columnar, alias string) *ColumnAlias {
	return &ColumnAlias{column: col, alias: alias}
}

// RenderSelection implements Selection.
func (a *ColumnAlias) RenderSelection(c *Context) error {
	if err := a.column.RenderColumn(c); err != nil {
		return err
	}
	c.Raw(" AS ")
	return c.Ident(a.alias)
}

// RenderColumn implements Columnar.
func (a *ColumnAlias) RenderColumn(c *Context) error { return c.Ident(a.alias) }

// RenderExpr implements Expression.
func (a *ColumnAlias) RenderExpr(c *Context) error { return c.Ident(a.alias) }

// VarExpr is a bound value.
type VarExpr struct {
	v   value.Value
	err error
}

// Val returns a bound value expression for a Go value. A value that cannot
// be converted fails when the statement is rendered.
func Val(x any) *VarExpr {
	v, err := value.From(x)
	return &VarExpr{v: v, err: err}
}

// V returns a bound value expression.
func V(v value.Value) *VarExpr { return &VarExpr{v: v} }

// Value returns the bound value.
func (e *VarExpr) Value() value.Value { return e.v }

// RenderExpr implements Expression.
func (e *VarExpr) RenderExpr(c *Context) error {
	if e.err != nil {
		return e.err
	}
	return c.Arg(e.v)
}

// expr turns x into an Expression. Expressions are used as is; anything else
// becomes a bound value.
func expr(x any) Expression {
	if e, ok := x.(Expression); ok {
		return e
	}
	return Val(x)
}

// BinaryExpr is "left op right". Chained And/Or calls wrap the previous
// expression without adding parentheses, so
//
//	a.Or(b).And(c)
//
// renders "a OR b AND c" and SQL precedence applies. Use Group to control
// evaluation order.
type BinaryExpr struct {
	Left  Expression
	Op    Op
	Right Expression
}

// Binary returns "left op right".
func Binary(left Expression, op Op, right Expression) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

// RenderExpr implements Expression.
func (b *BinaryExpr) RenderExpr(c *Context) error {
	if !b.Op.Valid() {
		return nibard.NewUnsupportedError("operator", b.Op.String())
	}
	if err := b.Left.RenderExpr(c); err != nil {
		return err
	}
	c.Raw(" " + b.Op.String() + " ")
	return b.Right.RenderExpr(c)
}

// And returns "b AND e".
func (b *BinaryExpr) And(e Expression) *BinaryExpr { return And(b, e) }

// Or returns "b OR e".
func (b *BinaryExpr) Or(e Expression) *BinaryExpr { return Or(b, e) }

func (b *BinaryExpr) logical() bool { return b.Op == OpAnd || b.Op == OpOr }

// Column comparisons. v may be an Expression (another column, a subquery)
// or a Go value, which is bound.
func EQ(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpEQ, expr(v)) }
func NEQ(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpNEQ, expr(v)) }
func LT(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpLT, expr(v)) }
func LTE(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpLTE, expr(v)) }
func GT(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpGT, expr(v)) }
func GTE(col Columnar, v any) *BinaryExpr { return Binary(colExpr(col), OpGTE, expr(v)) }

// Like returns "col LIKE pattern" with the pattern bound.
func Like(col Columnar, pattern string) *BinaryExpr {
	return Binary(colExpr(col), OpLike, Val(pattern))
}

// In returns "col IN (...)". A single subquery from Sub or a ListExpr is
// used as the right side directly; otherwise the
// values are bound as a parenthesized list. An empty list renders
// "col IN (NULL)", which matches nothing.
func In(col Columnar, vs ...any) *BinaryExpr {
	if len(vs) == 1 {
		switch e := vs[0].(type) {
		case *SubqueryExpr, ListExpr:
			return Binary(colExpr(col), OpIn, e.(Expression))
		}
	}
	l := make(ListExpr, len(vs))
	for i, v := range vs {
		l[i] = expr(v)
	}
	return Binary(colExpr(col), OpIn, l)
}

// And returns "l AND r". More operands are chained in order.
func And(l, r Expression, more ...Expression) *BinaryExpr {
	b := Binary(l, OpAnd, r)
	for _, m := range more {
		b = Binary(b, OpAnd, m)
	}
	return b
}

// Or returns "l OR r". More operands are chained in order.
func Or(l, r Expression, more ...Expression) *BinaryExpr {
	b := Binary(l, OpOr, r)
	for _, m := range more {
		b = Binary(b, OpOr, m)
	}
	return b
}

// colExpr adapts a Columnar to an Expression.
func colExpr(col Columnar) Expression {
	if e, ok := col.(Expression); ok {
		return e
	}
	return columnExpr{col}
}

type columnExpr struct{ Columnar }

func (e columnExpr) RenderExpr(c *Context) error { return e.RenderColumn(c) }

// ListExpr is a parenthesized, comma separated list of expressions.
type ListExpr []Expression

// RenderExpr implements Expression.
func (l ListExpr) RenderExpr(c *Context) error {
	c.Raw("(")
	if len(l) == 0 {
		c.Raw("NULL")
	} else if err := join(c, l, ", ", Expression.RenderExpr); err != nil {
		return err
	}
	return c.Raw(")")
}

// GroupExpr wraps an expression in parentheses.
type GroupExpr struct {
	X Expression
}

// Group returns "(e)". It is the only way to force evaluation order.
func Group(e Expression) *GroupExpr { return &GroupExpr{X: e} }

// RenderExpr implements Expression.
func (g *GroupExpr) RenderExpr(c *Context) error {
	c.Raw("(")
	if err := g.X.RenderExpr(c); err != nil {
		return err
	}
	return c.Raw(")")
}

// And returns "(...) AND e".
func (g *GroupExpr) And(e Expression) *BinaryExpr { return And(g, e) }

// Or returns "(...) OR e".
func (g *GroupExpr) Or(e Expression) *BinaryExpr { return Or(g, e) }

// NotExpr negates an expression.
type NotExpr struct {
	X Expression
}

// Not returns "NOT (e)".
func Not(e Expression) *NotExpr { return &NotExpr{X: e} }

// RenderExpr implements Expression.
func (n *NotExpr) RenderExpr(c *Context) error {
	c.Raw("NOT (")
	if err := n.X.RenderExpr(c); err != nil {
		return err
	}
	return c.Raw(")")
}

// And returns "NOT (...) AND e".
func (n *NotExpr) And(e Expression) *BinaryExpr { return And(n, e) }

// Or returns "NOT (...) OR e".
func (n *NotExpr) Or(e Expression) *BinaryExpr { return Or(n, e) }

// NullCheck is "col IS NULL" or "col IS NOT NULL".
type NullCheck struct {
	col Columnar
	not bool
}

// IsNull returns "col IS NULL".
func IsNull(col Columnar) *NullCheck { return &NullCheck{col: col} }

// NotNull returns "col IS NOT NULL".
func NotNull(col Columnar) *NullCheck { return &NullCheck{col: col, not: true} }

// RenderExpr implements Expression.
func (n *NullCheck) RenderExpr(c *Context) error {
	if err := n.col.RenderColumn(c); err != nil {
		return err
	}
	if n.not {
		return c.Raw(" IS NOT NULL")
	}
	return c.Raw(" IS NULL")
}

// And returns "... AND e".
func (n *NullCheck) And(e Expression) *BinaryExpr { return And(n, e) }

// Or returns "... OR e".
func (n *NullCheck) Or(e Expression) *BinaryExpr { return Or(n, e) }

// SubqueryExpr is a SELECT used as an expression or a table.
type SubqueryExpr struct {
	sel Select
}

// Sub wraps a SELECT so it can be used as an expression, for example as
// the right side of In, or aliased as a FROM target.
func Sub(sel Select) *SubqueryExpr { return &SubqueryExpr{sel: sel} }

// RenderExpr implements Expression.
func (s *SubqueryExpr) RenderExpr(c *Context) error {
	c.Raw("(")
	if err := s.sel.RenderStatement(c); err != nil {
		return err
	}
	return c.Raw(")")
}

// RenderTable implements Tabular.
func (s *SubqueryExpr) RenderTable(c *Context) error { return s.RenderExpr(c) }

// As aliases the subquery so it can be selected from.
func (s *SubqueryExpr) As(alias string) *TableAlias {
	return &TableAlias{table: s, alias: alias}
}

// Order is an ORDER BY term.
type Order struct {
	col  Columnar
	desc bool
}

// Asc orders by col ascending.
func Asc(col Columnar) Order { return Order{col: col} }

// Desc orders by col descending.
func Desc(col Columnar) Order { return Order{col: col, desc: true} }

func (o Order) render(c *Context) error {
	if err := o.col.RenderColumn(c); err != nil {
		return err
	}
	if o.desc {
		return c.Raw(" DESC")
	}
	return c.Raw(" ASC")
}
