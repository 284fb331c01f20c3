package sql

import (
	"io"
	"strings"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/value"
)

// Context accumulates the text and the bound parameters of one statement.
// A Context is created per render and must not be shared between
// goroutines. Every fragment writes itself through Raw, Ident and Arg.
//
// The n-th placeholder written always corresponds to the n-th entry of the
// parameter list. Null values are the one exception: they are written as
// the literal NULL and never bound.
type Context struct {
	dialect  dialect.Dialect
	quoteAll bool
	w        io.Writer
	buf      *strings.Builder // nil when writing to a caller supplied sink
	params   []value.Value
	err      error
	done     bool
}

// Option configures a Context.
type Option func(*Context)

// QuoteAll makes the Context quote every identifier, not only the ones that
// need it.
func QuoteAll() Option {
	return func(c *Context) {
		c.quoteAll = true
	}
}

// NewContext returns a Context writing into an in-memory buffer.
func NewContext(d dialect.Dialect, opts ...Option) *Context {
	b := &strings.Builder{}
	c := &Context{dialect: d, w: b, buf: b}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewContextWriter returns a Context writing into w. Finish then returns an
// empty text since the statement was streamed to w.
func NewContextWriter(d dialect.Dialect, w io.Writer, opts ...Option) *Context {
	c := &Context{dialect: d, w: w}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the dialect the Context renders for.
func (c *Context) Dialect() dialect.Dialect { return c.dialect }

// Err returns the first error recorded by the Context.
func (c *Context) Err() error { return c.err }

// Raw writes trusted SQL text: keywords, punctuation and numbers produced by
// the package itself. User supplied strings must go through Ident or Arg.
func (c *Context) Raw(s string) error {
	if c.err != nil {
		return c.err
	}
	if c.done {
		c.err = &nibard.FormatError{Err: io.ErrClosedPipe}
		return c.err
	}
	if _, err := io.WriteString(c.w, s); err != nil {
		c.err = &nibard.FormatError{Err: err}
	}
	return c.err
}

// Ident writes an identifier. Dotted names are split and each part is
// written on its own. A lowercase part that is not a keyword of any
// supported dialect is written bare unless QuoteAll was set. Every other
// part is quoted with the dialect's quote character, so mixed case survives
// PostgreSQL's case folding.
func (c *Context) Ident(name string) error {
	for i, part := range strings.Split(name, ".") {
		if i > 0 {
			c.Raw(".")
		}
		if !c.quoteAll && isPlain(part) {
			c.Raw(part)
		} else {
			c.Raw(c.dialect.QuoteIdent(part))
		}
	}
	return c.err
}

func isPlain(s string) bool {
	if s == "" || dialect.IsReserved(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b == '_', b >= 'a' && b <= 'z':
		case b >= '0' && b <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Arg binds v and writes its placeholder. Null is written as the literal
// NULL and not bound.
func (c *Context) Arg(v value.Value) error {
	if c.err != nil {
		return c.err
	}
	if v.IsNull() {
		return c.Raw("NULL")
	}
	c.params = append(c.params, v)
	return c.Raw(c.dialect.Placeholder(len(c.params)))
}

// Finish ends the render and returns the text and the parameter list. It
// returns the first error recorded instead, with no partial output.
func (c *Context) Finish() (string, []value.Value, error) {
	if c.err != nil {
		return "", nil, c.err
	}
	c.done = true
	var s string
	if c.buf != nil {
		s = c.buf.String()
	}
	return s, c.params, nil
}

// Params returns the values bound so far.
func (c *Context) Params() []value.Value { return c.params }

// Args returns the bound values as a []any for database/sql.
func (c *Context) Args() []any {
	return Args(c.params)
}

// Args converts a parameter list to the []any form database/sql expects.
func Args(params []value.Value) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}

// join renders items separated by sep.
func join[T any](c *Context, items []T, sep string, render func(T, *Context) error) error {
	for i, it := range items {
		if i > 0 {
			c.Raw(sep)
		}
		if err := render(it, c); err != nil {
			return err
		}
	}
	return c.err
}
