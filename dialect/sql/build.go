package sql

import (
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/value"
)

// Build renders stmt for dialect d and returns the SQL text and its
// parameters. The text holds exactly one placeholder per parameter, in
// order. On error nothing but the error is returned.
func Build(d dialect.Dialect, stmt Statement, opts ...Option) (string, []value.Value, error) {
	c := NewContext(d, opts...)
	if err := stmt.RenderStatement(c); err != nil {
		return "", nil, err
	}
	return c.Finish()
}

// MustBuild is like Build but panics on error. It is meant for statements
// known to be valid, such as package level queries.
func MustBuild(d dialect.Dialect, stmt Statement, opts ...Option) (string, []value.Value) {
	query, params, err := Build(d, stmt, opts...)
	if err != nil {
		panic(err)
	}
	return query, params
}
