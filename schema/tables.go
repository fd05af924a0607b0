package schema

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const tableExistsSql = `
SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1;
`

// Column describes one column of a table. An empty Type means TEXT.
type Column struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// CreateOptions controls table creation. The zero value creates a table with
// an implicit INTEGER "id" primary key and NOT NULL columns throughout.
type CreateOptions struct {
	// PrimaryKey names the column to use as primary key. It may reference a
	// declared column or introduce a new INTEGER column. Setting it
	// suppresses the implicit id column.
	PrimaryKey string
	// NoAutoID suppresses the implicit "id INTEGER PRIMARY KEY" column.
	NoAutoID bool
	// AllowNull lists declared columns that accept NULL values.
	AllowNull []string
	// Unique lists declared columns combined into a UNIQUE constraint.
	Unique []string
}

// QuoteIdent quotes an identifier for safe inclusion in a SQL statement.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Exists reports whether a user table with the given name exists.
func Exists(db *sqlx.DB, table string) (bool, error) {
	var count int
	err := db.Get(&count, tableExistsSql, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

// Create creates a new table. Columns default to TEXT NOT NULL; see
// CreateOptions for primary key, NULL, and UNIQUE handling.
func Create(db *sqlx.DB, table string, cols []Column, opts CreateOptions) error {
	exists, err := Exists(db, table)
	if err != nil {
		return err
	}
	if exists {
		return &TableExistsError{Table: table}
	}
	if len(cols) == 0 && opts.PrimaryKey == "" && opts.NoAutoID {
		return fmt.Errorf("cannot create table %s with no columns", table)
	}

	declared := make(map[string]bool, len(cols))
	for _, col := range cols {
		declared[col.Name] = true
	}
	for _, name := range opts.AllowNull {
		if !declared[name] {
			return &UnknownColumnError{Table: table, Column: name}
		}
	}
	for _, name := range opts.Unique {
		if !declared[name] {
			return &UnknownColumnError{Table: table, Column: name}
		}
	}

	allowNull := make(map[string]bool, len(opts.AllowNull))
	for _, name := range opts.AllowNull {
		allowNull[name] = true
	}

	var defs []string

	if opts.PrimaryKey == "" && !opts.NoAutoID {
		defs = append(defs, `"id" INTEGER NOT NULL PRIMARY KEY`)
	} else if opts.PrimaryKey != "" && !declared[opts.PrimaryKey] {
		// A primary key outside the declared columns becomes a leading
		// INTEGER column.
		defs = append(defs, fmt.Sprintf("%s INTEGER NOT NULL PRIMARY KEY", QuoteIdent(opts.PrimaryKey)))
	}

	for _, col := range cols {
		ftype, err := NormalizeType(col.Type)
		if err != nil {
			return err
		}
		if col.Name == opts.PrimaryKey {
			if col.Type == "" {
				ftype = "INTEGER"
			}
			defs = append(defs, fmt.Sprintf("%s %s NOT NULL PRIMARY KEY", QuoteIdent(col.Name), ftype))
			continue
		}
		def := fmt.Sprintf("%s %s", QuoteIdent(col.Name), ftype)
		if !allowNull[col.Name] {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(opts.Unique) > 0 {
		quoted := make([]string, len(opts.Unique))
		for i, name := range opts.Unique {
			quoted[i] = QuoteIdent(name)
		}
		defs = append(defs, fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", ")))
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);", QuoteIdent(table), strings.Join(defs, ",\n\t"))
	_, err = db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// Drop removes a table and all its rows.
func Drop(db *sqlx.DB, table string) error {
	exists, err := Exists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return &UnknownTableError{Table: table}
	}
	_, err = db.Exec(fmt.Sprintf("DROP TABLE %s;", QuoteIdent(table)))
	if err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// Rename renames a table. The target name must not be taken.
func Rename(db *sqlx.DB, old string, new string) error {
	exists, err := Exists(db, old)
	if err != nil {
		return err
	}
	if !exists {
		return &UnknownTableError{Table: old}
	}
	exists, err = Exists(db, new)
	if err != nil {
		return err
	}
	if exists {
		return &TableExistsError{Table: new}
	}
	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", QuoteIdent(old), QuoteIdent(new)))
	if err != nil {
		return fmt.Errorf("failed to rename table %s to %s: %w", old, new, err)
	}
	return nil
}
