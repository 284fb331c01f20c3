package sql

import (
	"strings"
	"time"

	"github.com/nibard/nibard/dialect"
)

// Field is a typed column. Its predicate methods only accept values of type
// T, so a misspelled or mistyped comparison fails to compile:
//
//	var (
//		ID    sql.IntField = "id"
//		Label = sql.String("label")
//	)
//	sql.Table("todos").Select(ID, Label).Filter(ID.EQ(1))
//
// A Field is a Columnar, a Selection and an Expression.
type Field[T any] string

// Typed fields for the common column types.
type (
	IntField   = Field[int]
	Int64Field = Field[int64]
	FloatField = Field[float64]
	BoolField  = Field[bool]
	TimeField  = Field[time.Time]
)

// Name returns the column name.
func (f Field[T]) Name() string { return string(f) }

// RenderColumn implements Columnar.
func (f Field[T]) RenderColumn(c *Context) error { return c.Ident(string(f)) }

// RenderSelection implements Selection.
func (f Field[T]) RenderSelection(c *Context) error { return c.Ident(string(f)) }

// RenderExpr implements Expression.
func (f Field[T]) RenderExpr(c *Context) error { return c.Ident(string(f)) }

// EQ returns "f = v".
func (f Field[T]) EQ(v T) *BinaryExpr { return EQ(f, v) }

// NEQ returns "f != v".
func (f Field[T]) NEQ(v T) *BinaryExpr { return NEQ(f, v) }

// LT returns "f < v".
func (f Field[T]) LT(v T) *BinaryExpr { return LT(f, v) }

// LTE returns "f <= v".
func (f Field[T]) LTE(v T) *BinaryExpr { return LTE(f, v) }

// GT returns "f > v".
func (f Field[T]) GT(v T) *BinaryExpr { return GT(f, v) }

// GTE returns "f >= v".
func (f Field[T]) GTE(v T) *BinaryExpr { return GTE(f, v) }

// In returns "f IN (vs...)".
func (f Field[T]) In(vs ...T) *BinaryExpr {
	l := make(ListExpr, len(vs))
	for i, v := range vs {
		l[i] = Val(v)
	}
	return In(f, l)
}

// NotIn returns "NOT (f IN (vs...))".
func (f Field[T]) NotIn(vs ...T) *NotExpr { return Not(f.In(vs...)) }

// IsNull returns "f IS NULL".
func (f Field[T]) IsNull() *NullCheck { return IsNull(f) }

// NotNull returns "f IS NOT NULL".
func (f Field[T]) NotNull() *NullCheck { return NotNull(f) }

// Asc orders by the field ascending.
func (f Field[T]) Asc() Order { return Asc(f) }

// Desc orders by the field descending.
func (f Field[T]) Desc() Order { return Desc(f) }

// As aliases the field in a select list.
func (f Field[T]) As(alias string) *ColumnAlias { return As(f, alias) }

// StringField is a text column. On top of the Field predicates it has
// pattern matching helpers that escape LIKE wildcards in their argument.
type StringField struct {
	Field[string]
}

// String returns a StringField for the named column.
func String(name string) StringField { return StringField{Field: Field[string](name)} }

// Like returns "f LIKE pattern". The pattern is used as given.
func (f StringField) Like(pattern string) *BinaryExpr { return Like(f, pattern) }

// Contains returns a predicate matching values containing sub.
func (f StringField) Contains(sub string) *BinaryExpr {
	return Binary(f, OpLike, escaped("%"+escapeLike(sub)+"%"))
}

// HasPrefix returns a predicate matching values starting with prefix.
func (f StringField) HasPrefix(prefix string) *BinaryExpr {
	return Binary(f, OpLike, escaped(escapeLike(prefix)+"%"))
}

// HasSuffix returns a predicate matching values ending with suffix.
func (f StringField) HasSuffix(suffix string) *BinaryExpr {
	return Binary(f, OpLike, escaped("%"+escapeLike(suffix)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// escapedPattern is a bound LIKE pattern followed by its ESCAPE clause.
type escapedPattern struct {
	pattern *VarExpr
}

func escaped(p string) escapedPattern { return escapedPattern{pattern: Val(p)} }

func (e escapedPattern) RenderExpr(c *Context) error {
	if err := e.pattern.RenderExpr(c); err != nil {
		return err
	}
	// MySQL treats the backslash as an escape inside string literals too.
	if c.Dialect() == dialect.MySQL {
		return c.Raw(` ESCAPE '\\'`)
	}
	return c.Raw(` ESCAPE '\'`)
}
