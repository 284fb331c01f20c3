package sql

import (
	"slices"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
)

// ReferentialAction is the ON DELETE / ON UPDATE behavior of a foreign key.
type ReferentialAction uint8

// Referential actions. NoAction is the SQL default and is not rendered.
const (
	NoAction ReferentialAction = iota
	Cascade
	Restrict
	SetNull
	SetDefault
)

// String returns the SQL keywords of the action.
func (a ReferentialAction) String() string {
	switch a {
	case Cascade:
		return "CASCADE"
	case Restrict:
		return "RESTRICT"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ForeignKey references a column of another table.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete ReferentialAction
	OnUpdate ReferentialAction
}

// References returns a foreign key to table(column).
func References(table, column string) ForeignKey {
	return ForeignKey{Table: table, Column: column}
}

func (fk ForeignKey) render(c *Context, spaced bool) error {
	c.Raw("REFERENCES ")
	c.Ident(fk.Table)
	if spaced {
		c.Raw(" ")
	}
	c.Raw("(")
	c.Ident(fk.Column)
	c.Raw(")")
	if fk.OnDelete != NoAction {
		c.Raw(" ON DELETE " + fk.OnDelete.String())
	}
	if fk.OnUpdate != NoAction {
		c.Raw(" ON UPDATE " + fk.OnUpdate.String())
	}
	return c.Err()
}

// ColumnDef is a column definition of CREATE TABLE or ALTER TABLE.
type ColumnDef struct {
	name    string
	typ     dialect.Type
	primary bool
	notNull bool
	fk      *ForeignKey
}

// Column returns a nullable column definition.
func Column(name string, t dialect.Type) *ColumnDef {
	return &ColumnDef{name: name, typ: t}
}

// Name returns the column name.
func (d *ColumnDef) Name() string { return d.name }

// Type returns the column type.
func (d *ColumnDef) Type() dialect.Type { return d.typ }

// IsPrimaryKey reports whether the column is the primary key.
func (d *ColumnDef) IsPrimaryKey() bool { return d.primary }

// IsNotNull reports whether the column was declared NOT NULL.
func (d *ColumnDef) IsNotNull() bool { return d.notNull }

// Reference returns the foreign key of the column, if any.
func (d *ColumnDef) Reference() (ForeignKey, bool) {
	if d.fk == nil {
		return ForeignKey{}, false
	}
	return *d.fk, true
}

// PrimaryKey returns a copy of the definition marked as primary key.
func (d *ColumnDef) PrimaryKey() *ColumnDef {
	cp := *d
	cp.primary = true
	return &cp
}

// NotNull returns a copy of the definition marked NOT NULL.
func (d *ColumnDef) NotNull() *ColumnDef {
	cp := *d
	cp.notNull = true
	return &cp
}

// ForeignKey returns a copy of the definition referencing fk.
func (d *ColumnDef) ForeignKey(fk ForeignKey) *ColumnDef {
	cp := *d
	cp.fk = &fk
	return &cp
}

// References is shorthand for ForeignKey(References(table, column)).
func (d *ColumnDef) References(table, column string) *ColumnDef {
	return d.ForeignKey(References(table, column))
}

// render writes "<name> <type>[ PRIMARY KEY][ NOT NULL| DEFAULT NULL][ AUTOINCREMENT]".
//
// Auto columns have no nullability clause on Postgres, where SERIAL implies
// NOT NULL, and on SQLite, where INTEGER PRIMARY KEY AUTOINCREMENT does.
// MySQL needs NOT NULL AUTO_INCREMENT spelled out.
func (d *ColumnDef) render(c *Context) error {
	c.Ident(d.name)
	typ := c.Dialect().ColumnType(d.typ)
	if typ == "" {
		return nibard.NewUnsupportedError("column type", d.name)
	}
	c.Raw(" " + typ)
	if d.primary {
		c.Raw(" PRIMARY KEY")
	}
	switch {
	case d.typ.IsAuto() && c.Dialect() == dialect.SQLite:
		c.Raw(" AUTOINCREMENT")
	case d.typ.IsAuto() && c.Dialect() == dialect.MySQL:
		c.Raw(" NOT NULL AUTO_INCREMENT")
	case d.typ.IsAuto():
	case d.notNull:
		c.Raw(" NOT NULL")
	default:
		c.Raw(" DEFAULT NULL")
	}
	return c.Err()
}

// CreateTableStmt is a CREATE TABLE statement.
type CreateTableStmt struct {
	name    string
	columns []*ColumnDef
	force   bool
}

// CreateTable starts a CREATE TABLE IF NOT EXISTS statement.
func CreateTable(name string) *CreateTableStmt { return &CreateTableStmt{name: name} }

// Name returns the table name.
func (t *CreateTableStmt) Name() string { return t.name }

// Columns returns the column definitions in declaration order.
func (t *CreateTableStmt) Columns() []*ColumnDef { return slices.Clone(t.columns) }

// Column returns a copy of the statement with def appended.
func (t *CreateTableStmt) Column(def *ColumnDef) *CreateTableStmt {
	cp := *t
	cp.columns = append(slices.Clip(t.columns), def)
	return &cp
}

// Force returns a copy of the statement without IF NOT EXISTS.
func (t *CreateTableStmt) Force() *CreateTableStmt {
	cp := *t
	cp.force = true
	return &cp
}

// RenderStatement implements Statement. It renders
//
//	CREATE TABLE [IF NOT EXISTS ]name (defs[, FOREIGN KEY (c) REFERENCES t(c)]...)
func (t *CreateTableStmt) RenderStatement(c *Context) error {
	c.Raw("CREATE TABLE ")
	if !t.force {
		c.Raw("IF NOT EXISTS ")
	}
	c.Ident(t.name)
	c.Raw(" (")
	if err := join(c, t.columns, ", ", (*ColumnDef).render); err != nil {
		return err
	}
	for _, def := range t.columns {
		if def.fk == nil {
			continue
		}
		c.Raw(", FOREIGN KEY (")
		c.Ident(def.name)
		c.Raw(") ")
		if err := def.fk.render(c, false); err != nil {
			return err
		}
	}
	return c.Raw(")")
}

// CreateIndexStmt is a CREATE INDEX statement.
type CreateIndexStmt struct {
	name    string
	table   string
	columns []string
	unique  bool
}

// CreateIndex starts a CREATE INDEX statement.
func CreateIndex(name string) *CreateIndexStmt { return &CreateIndexStmt{name: name} }

// On returns a copy of the statement indexing columns of table.
func (i *CreateIndexStmt) On(table string, columns ...string) *CreateIndexStmt {
	cp := *i
	cp.table, cp.columns = table, columns
	return &cp
}

// Name returns the index name.
func (i *CreateIndexStmt) Name() string { return i.name }

// Table returns the indexed table.
func (i *CreateIndexStmt) Table() string { return i.table }

// Columns returns the indexed columns.
func (i *CreateIndexStmt) Columns() []string { return slices.Clone(i.columns) }

// IsUnique reports whether the index is unique.
func (i *CreateIndexStmt) IsUnique() bool { return i.unique }

// Unique returns a copy of the statement creating a unique index.
func (i *CreateIndexStmt) Unique() *CreateIndexStmt {
	cp := *i
	cp.unique = true
	return &cp
}

// RenderStatement implements Statement. It renders
//
//	CREATE [UNIQUE ]INDEX IF NOT EXISTS name ON table (cols)
//
// MySQL does not accept IF NOT EXISTS on indexes, so the clause is left out
// there.
func (i *CreateIndexStmt) RenderStatement(c *Context) error {
	c.Raw("CREATE ")
	if i.unique {
		c.Raw("UNIQUE ")
	}
	c.Raw("INDEX ")
	if c.Dialect() != dialect.MySQL {
		c.Raw("IF NOT EXISTS ")
	}
	c.Ident(i.name)
	c.Raw(" ON ")
	c.Ident(i.table)
	c.Raw(" (")
	if err := join(c, i.columns, ", ", func(col string, c *Context) error { return c.Ident(col) }); err != nil {
		return err
	}
	return c.Raw(")")
}

type alterKind uint8

const (
	alterRename alterKind = iota + 1
	alterAddColumn
	alterDropColumn
	alterRenameColumn
	alterForeignKey
)

// AlterTableStmt is an ALTER TABLE statement performing one change.
type AlterTableStmt struct {
	table  string
	kind   alterKind
	name   string // new table name, dropped column or constraint name
	column *ColumnDef
	from   string // foreign key column or renamed column
	fk     ForeignKey
}

// AlterTable starts an ALTER TABLE statement. One of its methods must be
// called to choose the change.
func AlterTable(table string) *AlterTableStmt { return &AlterTableStmt{table: table} }

// RenameTo renames the table.
func (a *AlterTableStmt) RenameTo(name string) *AlterTableStmt {
	return &AlterTableStmt{table: a.table, kind: alterRename, name: name}
}

// AddColumn adds a column.
func (a *AlterTableStmt) AddColumn(def *ColumnDef) *AlterTableStmt {
	return &AlterTableStmt{table: a.table, kind: alterAddColumn, column: def}
}

// DropColumn drops a column.
func (a *AlterTableStmt) DropColumn(name string) *AlterTableStmt {
	return &AlterTableStmt{table: a.table, kind: alterDropColumn, name: name}
}

// RenameColumn renames a column. It is not supported yet and fails to
// render with nibard.ErrUnsupported.
func (a *AlterTableStmt) RenameColumn(from, to string) *AlterTableStmt {
	return &AlterTableStmt{table: a.table, kind: alterRenameColumn, from: from, name: to}
}

// AddForeignKey adds the named foreign key constraint on column.
func (a *AlterTableStmt) AddForeignKey(name, column string, fk ForeignKey) *AlterTableStmt {
	return &AlterTableStmt{table: a.table, kind: alterForeignKey, name: name, from: column, fk: fk}
}

// RenderStatement implements Statement.
func (a *AlterTableStmt) RenderStatement(c *Context) error {
	switch a.kind {
	case alterRenameColumn:
		return nibard.NewUnsupportedError("alter table rename column", "")
	case alterForeignKey:
		if c.Dialect() == dialect.SQLite {
			return nibard.NewUnsupportedError("alter table add constraint", c.Dialect().String())
		}
	case 0:
		return nibard.NewUnsupportedError("alter table without a change", a.table)
	}
	c.Raw("ALTER TABLE ")
	c.Ident(a.table)
	switch a.kind {
	case alterRename:
		c.Raw(" RENAME TO ")
		c.Ident(a.name)
	case alterAddColumn:
		c.Raw(" ADD COLUMN ")
		if err := a.column.render(c); err != nil {
			return err
		}
		if a.column.fk != nil {
			c.Raw(" ")
			return a.column.fk.render(c, false)
		}
	case alterDropColumn:
		c.Raw(" DROP COLUMN ")
		c.Ident(a.name)
	case alterForeignKey:
		c.Raw(" ADD CONSTRAINT ")
		c.Ident(a.name)
		c.Raw(" FOREIGN KEY (")
		c.Ident(a.from)
		c.Raw(") ")
		return a.fk.render(c, true)
	}
	return c.Err()
}

// DropTableStmt is a DROP TABLE statement.
type DropTableStmt struct {
	name     string
	ifExists bool
}

// DropTable starts a DROP TABLE statement.
func DropTable(name string) *DropTableStmt { return &DropTableStmt{name: name} }

// IfExists returns a copy of the statement with IF EXISTS.
func (d *DropTableStmt) IfExists() *DropTableStmt {
	cp := *d
	cp.ifExists = true
	return &cp
}

// RenderStatement implements Statement.
func (d *DropTableStmt) RenderStatement(c *Context) error {
	c.Raw("DROP TABLE ")
	if d.ifExists {
		c.Raw("IF EXISTS ")
	}
	return c.Ident(d.name)
}
