package sql

import (
	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
)

// JoinKind is the kind of a JOIN clause.
type JoinKind uint8

// Join kinds.
const (
	Inner JoinKind = iota + 1
	Left
	Right
	Outer
)

// String returns the SQL keywords of the join kind.
func (k JoinKind) String() string {
	switch k {
	case Inner:
		return "INNER JOIN"
	case Left:
		return "LEFT JOIN"
	case Right:
		return "RIGHT JOIN"
	case Outer:
		return "FULL OUTER JOIN"
	default:
		return "JOIN"
	}
}

// Join is a JOIN clause. It renders "<KIND> JOIN <table>[ ON <expr>]".
type Join struct {
	kind  JoinKind
	table Target
	on    Expression
}

// InnerJoin returns an INNER JOIN of t.
func InnerJoin(t Target) *Join { return &Join{kind: Inner, table: t} }

// LeftJoin returns a LEFT JOIN of t.
func LeftJoin(t Target) *Join { return &Join{kind: Left, table: t} }

// RightJoin returns a RIGHT JOIN of t.
func RightJoin(t Target) *Join { return &Join{kind: Right, table: t} }

// OuterJoin returns a FULL OUTER JOIN of t. MySQL has no full outer join and
// fails to render it.
func OuterJoin(t Target) *Join { return &Join{kind: Outer, table: t} }

// On returns a copy of the join with the given join condition.
func (j *Join) On(e Expression) *Join {
	cp := *j
	cp.on = e
	return &cp
}

// RenderJoin implements Joinable.
func (j *Join) RenderJoin(c *Context) error {
	if j.kind == Outer && c.Dialect() == dialect.MySQL {
		return nibard.NewUnsupportedError("full outer join", c.Dialect().String())
	}
	c.Raw(j.kind.String() + " ")
	if err := j.table.RenderTarget(c); err != nil {
		return err
	}
	if j.on == nil {
		return c.Err()
	}
	c.Raw(" ON ")
	return j.on.RenderExpr(c)
}
