package sql

import (
	"strconv"

	"github.com/nibard/nibard/dialect"
)

// Select is a SELECT statement. Every composition step returns a new Select
// wrapping the previous one, so any Select can be filtered, joined, ordered
// and limited again, in any order. Rendering always emits the clauses in
// canonical order:
//
//	SELECT <selection> FROM <target> [JOIN ...] [WHERE ...] [ORDER BY ...] [LIMIT n] [OFFSET n]
//
// Filters are combined with AND. A later Limit or Offset overrides an
// earlier one.
type Select interface {
	Statement
	Filter(Expression) Select
	Join(Joinable) Select
	Limit(n int) Select
	Offset(n int) Select
	OrderBy(...Order) Select
	collect(*selectParts)
}

// selectParts are the clauses gathered from a Select chain.
type selectParts struct {
	distinct bool
	sels     []Selection
	target   Target
	joins    []Joinable
	filters  []Expression
	orders   []Order
	limit    *int
	offset   *int
}

// SelectStmt is the root of a Select chain: a selection from a target.
type SelectStmt struct {
	target   Target
	sels     []Selection
	distinct bool
}

// From returns "SELECT sel FROM t". An empty selection selects "*".
func From(t Target, sel ...Selection) *SelectStmt {
	return &SelectStmt{target: t, sels: sel}
}

// Distinct returns a copy of the statement selecting distinct rows.
func (s *SelectStmt) Distinct() *SelectStmt {
	cp := *s
	cp.distinct = true
	return &cp
}

func (s *SelectStmt) collect(p *selectParts) {
	p.target, p.sels, p.distinct = s.target, s.sels, s.distinct
}

func (s *SelectStmt) RenderStatement(c *Context) error { return renderSelect(s, c) }
func (s *SelectStmt) Filter(e Expression) Select { return filter(s, e) }
func (s *SelectStmt) Join(j Joinable) Select { return joined(s, j) }
func (s *SelectStmt) Limit(n int) Select { return limit(s, n) }
func (s *SelectStmt) Offset(n int) Select { return offset(s, n) }
func (s *SelectStmt) OrderBy(o ...Order) Select { return orderBy(s, o) }

// FilterSelect adds a WHERE condition to a Select.
type FilterSelect struct {
	parent Select
	pred   Expression
}

func filter(s Select, e Expression) Select { return &FilterSelect{parent: s, pred: e} }

func (s *FilterSelect) collect(p *selectParts) {
	s.parent.collect(p)
	p.filters = append(p.filters, s.pred)
}

func (s *FilterSelect) RenderStatement(c *Context) error { return renderSelect(s, c) }
func (s *FilterSelect) Filter(e Expression) Select { return filter(s, e) }
func (s *FilterSelect) Join(j Joinable) Select { return joined(s, j) }
func (s *FilterSelect) Limit(n int) Select { return limit(s, n) }
func (s *FilterSelect) Offset(n int) Select { return offset(s, n) }
func (s *FilterSelect) OrderBy(o ...Order) Select { return orderBy(s, o) }

// JoinSelect adds a JOIN clause to a Select.
type JoinSelect struct {
	parent Select
	join   Joinable
}

func joined(s Select, j Joinable) Select { return &JoinSelect{parent: s, join: j} }

func (s *JoinSelect) collect(p *selectParts) {
	s.parent.collect(p)
	p.joins = append(p.joins, s.join)
}

func (s *JoinSelect) RenderStatement(c *Context) error { return renderSelect(s, c) }
func (s *JoinSelect) Filter(e Expression) Select { return filter(s, e) }
func (s *JoinSelect) Join(j Joinable) Select { return joined(s, j) }
func (s *JoinSelect) Limit(n int) Select { return limit(s, n) }
func (s *JoinSelect) Offset(n int) Select { return offset(s, n) }
func (s *JoinSelect) OrderBy(o ...Order) Select { return orderBy(s, o) }

// LimitedSelect sets the LIMIT or the OFFSET of a Select.
type LimitedSelect struct {
	parent Select
	n      int
	offset bool
}

func limit(s Select, n int) Select { return &LimitedSelect{parent: s, n: n} }
func offset(s Select, n int) Select { return &LimitedSelect{parent: s, n: n, offset: true} }

func (s *LimitedSelect) collect(p *selectParts) {
	s.parent.collect(p)
	n := s.n
	if s.offset {
		p.offset = &n
	} else {
		p.limit = &n
	}
}

func (s *LimitedSelect) RenderStatement(c *Context) error { return renderSelect(s, c) }
func (s *LimitedSelect) Filter(e Expression) Select { return filter(s, e) }
func (s *LimitedSelect) Join(j Joinable) Select { return joined(s, j) }
func (s *LimitedSelect) Limit(n int) Select { return limit(s, n) }
func (s *LimitedSelect) Offset(n int) Select { return offset(s, n) }
func (s *LimitedSelect) OrderBy(o ...Order) Select { return orderBy(s, o) }

// OrderedSelect adds ORDER BY terms to a Select.
type OrderedSelect struct {
	parent Select
	orders []Order
}

func orderBy(s Select, o []Order) Select { return &OrderedSelect{parent: s, orders: o} }

func (s *OrderedSelect) collect(p *selectParts) {
	s.parent.collect(p)
	p.orders = append(p.orders, s.orders...)
}

func (s *OrderedSelect) RenderStatement(c *Context) error { return renderSelect(s, c) }
func (s *OrderedSelect) Filter(e Expression) Select { return filter(s, e) }
func (s *OrderedSelect) Join(j Joinable) Select { return joined(s, j) }
func (s *OrderedSelect) Limit(n int) Select { return limit(s, n) }
func (s *OrderedSelect) Offset(n int) Select { return offset(s, n) }
func (s *OrderedSelect) OrderBy(o ...Order) Select { return orderBy(s, o) }

func renderSelect(s Select, c *Context) error {
	var p selectParts
	s.collect(&p)
	c.Raw("SELECT ")
	if p.distinct {
		c.Raw("DISTINCT ")
	}
	if len(p.sels) == 0 {
		c.Raw("*")
	} else if err := join(c, p.sels, ", ", Selection.RenderSelection); err != nil {
		return err
	}
	c.Raw(" FROM ")
	if err := p.target.RenderTarget(c); err != nil {
		return err
	}
	for _, j := range p.joins {
		c.Raw(" ")
		if err := j.RenderJoin(c); err != nil {
			return err
		}
	}
	if err := renderWhere(c, p.filters); err != nil {
		return err
	}
	if len(p.orders) > 0 {
		c.Raw(" ORDER BY ")
		if err := join(c, p.orders, ", ", Order.render); err != nil {
			return err
		}
	}
	switch {
	case p.limit != nil:
		c.Raw(" LIMIT " + strconv.Itoa(*p.limit))
	case p.offset != nil:
		// SQLite and MySQL only accept OFFSET after a LIMIT.
		c.Raw(noLimit[c.Dialect()])
	}
	if p.offset != nil {
		c.Raw(" OFFSET " + strconv.Itoa(*p.offset))
	}
	return c.Err()
}

// noLimit is the LIMIT clause each dialect reads as unbounded.
var noLimit = map[dialect.Dialect]string{
	dialect.SQLite: " LIMIT -1",
	dialect.MySQL:  " LIMIT 18446744073709551615",
}

// renderWhere writes " WHERE" and the AND of filters. AND/OR chains are
// parenthesized when more than one filter is combined.
func renderWhere(c *Context, filters []Expression) error {
	if len(filters) == 0 {
		return c.Err()
	}
	c.Raw(" WHERE ")
	if len(filters) == 1 {
		return filters[0].RenderExpr(c)
	}
	for i, f := range filters {
		if i > 0 {
			c.Raw(" AND ")
		}
		if b, ok := f.(*BinaryExpr); ok && b.logical() {
			f = Group(b)
		}
		if err := f.RenderExpr(c); err != nil {
			return err
		}
	}
	return c.Err()
}
