package sql

// FuncExpr is an aggregate function call. It can be selected, referenced as
// a column and compared.
type FuncExpr struct {
	name     string
	arg      Columnar // nil renders "*"
	distinct bool
}

// CountAll returns COUNT(*).
func CountAll() *FuncExpr { return &FuncExpr{name: "COUNT"} }

// Count returns COUNT(col).
func Count(col Columnar) *FuncExpr { return &FuncExpr{name: "COUNT", arg: col} }

// CountDistinct returns COUNT(DISTINCT col).
func CountDistinct(col Columnar) *FuncExpr {
	return &FuncExpr{name: "COUNT", arg: col, distinct: true}
}

// Sum returns SUM(col).
func Sum(col Columnar) *FuncExpr { return &FuncExpr{name: "SUM", arg: col} }

// Avg returns AVG(col).
func Avg(col Columnar) *FuncExpr { return &FuncExpr{name: "AVG", arg: col} }

// Min returns MIN(col).
func Min(col Columnar) *FuncExpr { return &FuncExpr{name: "MIN", arg: col} }

// Max returns MAX(col).
func Max(col Columnar) *FuncExpr { return &FuncExpr{name: "MAX", arg: col} }

// RenderColumn implements Columnar.
func (f *FuncExpr) RenderColumn(c *Context) error {
	c.Raw(f.name + "(")
	switch {
	case f.arg == nil:
		c.Raw("*")
	case f.distinct:
		c.Raw("DISTINCT ")
		fallthrough
	default:
		if err := f.arg.RenderColumn(c); err != nil {
			return err
		}
	}
	return c.Raw(")")
}

// RenderSelection implements Selection.
func (f *FuncExpr) RenderSelection(c *Context) error { return f.RenderColumn(c) }

// RenderExpr implements Expression.
func (f *FuncExpr) RenderExpr(c *Context) error { return f.RenderColumn(c) }

// As aliases the result.
func (f *FuncExpr) As(alias string) *ColumnAlias { return As(f, alias) }
