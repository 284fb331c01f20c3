// Package schema checks table and index definitions before they are
// executed, and compares two versions of a schema for breaking changes.
package schema

import (
	"fmt"
	"strings"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/dialect/sql"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateDiff validates the difference between the current and the desired
// table definitions. It returns errors for breaking changes and warnings for
// potentially dangerous operations.
//
//	result := schema.ValidateDiff(current, desired)
//	if result.HasBreakingChanges() {
//	    log.Fatal("breaking changes detected:", result)
//	}
func ValidateDiff(current, desired []*sql.CreateTableStmt, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	result := &ValidationResult{}
	desiredMap := make(map[string]*sql.CreateTableStmt, len(desired))
	for _, t := range desired {
		desiredMap[t.Name()] = t
	}
	for _, t := range current {
		next, ok := desiredMap[t.Name()]
		if !ok {
			result.add(cfg.allowDropTable, &ValidationError{
				Table:    t.Name(),
				Message:  "table will be dropped",
				Breaking: true,
			})
			continue
		}
		validateTableDiff(t, next, cfg, result)
	}
	return result
}

func validateTableDiff(current, desired *sql.CreateTableStmt, cfg *validateConfig, result *ValidationResult) {
	currentCols := columnMap(current)
	desiredCols := columnMap(desired)

	for _, c := range current.Columns() {
		if _, ok := desiredCols[c.Name()]; !ok {
			result.add(cfg.allowDropColumn, &ValidationError{
				Table:    current.Name(),
				Column:   c.Name(),
				Message:  "column will be dropped",
				Breaking: true,
			})
		}
	}

	for _, next := range desired.Columns() {
		prev, ok := currentCols[next.Name()]
		if !ok {
			if next.IsNotNull() && !next.Type().IsAuto() {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   current.Name(),
					Column:  next.Name(),
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		pt, nt := prev.Type(), next.Type()
		if pt.Kind != nt.Kind {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name(),
				Column:  next.Name(),
				Message: fmt.Sprintf("column type changing from %s to %s", dialect.SQLite.ColumnType(pt), dialect.SQLite.ColumnType(nt)),
			})
		} else if pt.Size > 0 && nt.Size > 0 && nt.Size < pt.Size {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   current.Name(),
				Column:  next.Name(),
				Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", pt.Size, nt.Size),
			})
		}
		if !prev.IsNotNull() && next.IsNotNull() {
			result.add(cfg.allowNullToNotNull, &ValidationError{
				Table:    current.Name(),
				Column:   next.Name(),
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			})
		}
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *sql.CreateTableStmt) *ValidationResult {
	result := &ValidationResult{}
	cols := t.Columns()
	if len(cols) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name(),
			Message: "table has no columns",
		})
		return result
	}

	var primary int
	names := make(map[string]bool, len(cols))
	for _, c := range cols {
		switch {
		case c.Name() == "":
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Message: "column has no name",
			})
		case names[c.Name()]:
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Column:  c.Name(),
				Message: "duplicate column name",
			})
		}
		names[c.Name()] = true

		if c.Type().Kind == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Column:  c.Name(),
				Message: "column has no type",
			})
		}
		if c.IsPrimaryKey() {
			primary++
		}
		if c.Type().IsAuto() && !c.IsPrimaryKey() {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Column:  c.Name(),
				Message: "auto increment column must be the primary key",
			})
		}
		if fk, ok := c.Reference(); ok && (fk.Table == "" || fk.Column == "") {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Column:  c.Name(),
				Message: "foreign key has no referenced table or column",
			})
		}
	}

	switch {
	case primary == 0:
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name(),
			Message: "table has no primary key",
		})
	case primary > 1:
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name(),
			Message: "multiple primary key columns",
		})
	}
	return result
}

// ValidateSchema validates tables and indexes together: every table on its
// own, then the foreign keys and indexes against the tables they reference.
func ValidateSchema(tables []*sql.CreateTableStmt, indexes ...*sql.CreateIndexStmt) *ValidationResult {
	result := &ValidationResult{}

	byName := make(map[string]map[string]*sql.ColumnDef, len(tables))
	for _, t := range tables {
		if _, ok := byName[t.Name()]; ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name(),
				Message: "duplicate table name",
			})
		}
		byName[t.Name()] = columnMap(t)

		r := ValidateTable(t)
		result.Errors = append(result.Errors, r.Errors...)
		result.Warnings = append(result.Warnings, r.Warnings...)
	}

	for _, t := range tables {
		for _, c := range t.Columns() {
			fk, ok := c.Reference()
			if !ok || fk.Table == "" {
				continue
			}
			cols, ok := byName[fk.Table]
			if !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name(),
					Column:  c.Name(),
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.Table),
				})
				continue
			}
			if _, ok := cols[fk.Column]; !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name(),
					Column:  c.Name(),
					Message: fmt.Sprintf("foreign key references non-existent column %s.%s", fk.Table, fk.Column),
				})
			}
		}
	}

	idxNames := make(map[string]bool, len(indexes))
	for _, idx := range indexes {
		if idxNames[idx.Name()] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   idx.Table(),
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name()),
			})
		}
		idxNames[idx.Name()] = true

		cols, ok := byName[idx.Table()]
		if !ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   idx.Table(),
				Message: fmt.Sprintf("index %q is on a non-existent table", idx.Name()),
			})
			continue
		}
		if len(idx.Columns()) == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   idx.Table(),
				Message: fmt.Sprintf("index %q has no columns", idx.Name()),
			})
		}
		for _, col := range idx.Columns() {
			if _, ok := cols[col]; !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   idx.Table(),
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name(), col),
				})
			}
		}
	}
	return result
}

// Err returns the errors of the result joined into one, or nil.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return nibard.NewAggregateError(errs...)
}

// add records err as a warning when allowed, and as an error otherwise.
func (r *ValidationResult) add(allowed bool, err *ValidationError) {
	if allowed {
		r.Warnings = append(r.Warnings, err)
	} else {
		r.Errors = append(r.Errors, err)
	}
}

func columnMap(t *sql.CreateTableStmt) map[string]*sql.ColumnDef {
	cols := t.Columns()
	m := make(map[string]*sql.ColumnDef, len(cols))
	for _, c := range cols {
		m[c.Name()] = c
	}
	return m
}
