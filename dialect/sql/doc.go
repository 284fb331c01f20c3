// Package sql builds SQL statements from typed fragments and renders them
// for a dialect, and executes the result through database/sql.
//
// # Rendering
//
// Every fragment renders itself into a Context, which owns the dialect, the
// text buffer and the ordered parameter list. User data only reaches the
// text through Context.Ident (identifiers, quoted when needed) and
// Context.Arg (bound values); Context.Raw is reserved for the package's own
// keywords and punctuation.
//
//	query, params, err := sql.Build(dialect.SQLite,
//	    sql.Table("todos").
//	        Select(sql.Cols("id", "label")).
//	        Filter(sql.Col("id").EQ(1)))
//	// SELECT id, label FROM todos WHERE id = ?  [BigInt(1)]
//
// Null values are written as the literal NULL and never bound, so the
// parameter list only holds non-null values. Postgres placeholders are
// numbered $1..$N in the order the values were bound.
//
// # Capabilities
//
// Fragments are grouped by where they can appear rather than by what they
// are:
//
//   - Expression: values and predicates (Val, Col("a").EQ(1), Group, Not)
//   - Columnar: column references (Col, TableName.C, aliases, COUNT)
//   - Selection: SELECT list entries (columns, Cols, Selections, Star)
//   - Tabular and Target: table references and FROM targets (Table, As, Targets)
//   - Joinable: JOIN clauses (InnerJoin, LeftJoin, RightJoin, OuterJoin)
//   - Statement: anything Build accepts
//
// # Select
//
// Filter, Join, Limit, Offset and OrderBy each return a new Select wrapping
// the previous one, and may be applied in any order:
//
//	sql.Table("todos").Select(sql.Col("id")).Limit(10).Offset(5)
//	// SELECT id FROM todos LIMIT 10 OFFSET 5
//
// # Operator precedence
//
// And and Or never add parentheses: a.Or(b).And(c) renders "a OR b AND c",
// which SQL evaluates as "a OR (b AND c)". Wrap operands in Group to force
// another order.
//
// # Executing
//
// Driver wraps a *sql.DB for a dialect. Exec, Query and QueryRow render a
// Statement and run it; rows are decoded into value.Value columns.
//
//	drv, err := sql.Open("sqlite:./todos.sqlite")
//	rows, err := sql.Query(ctx, drv, sql.Table("todos").Select())
package sql
