// Package records provides convenience helpers for inserting, deleting, and
// fetching rows. Everything is a thin pass-through to the underlying engine;
// scanning is delegated to sqlx.
package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/litedb/schema"
)

// Insert inserts a positional record into table. Missing trailing values are
// padded with NULL; extra values are an error.
func Insert(db *sqlx.DB, table string, values ...any) error {
	columns, err := schema.Columns(db, table)
	if err != nil {
		return err
	}
	if len(values) > len(columns) {
		return fmt.Errorf("too many values for table %s: got %d, have %d columns",
			table, len(values), len(columns))
	}
	for len(values) < len(columns) {
		values = append(values, nil)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	query := fmt.Sprintf("INSERT INTO %s VALUES (%s);", schema.QuoteIdent(table), placeholders)
	_, err = db.Exec(query, values...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// InsertMap inserts a record given as a column-to-value map. Columns not
// present in the map take their defaults.
func InsertMap(db *sqlx.DB, table string, row map[string]any) error {
	if len(row) == 0 {
		return fmt.Errorf("empty record for table %s", table)
	}
	exists, err := schema.Exists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return &schema.UnknownTableError{Table: table}
	}

	columns := make([]string, 0, len(row))
	for name := range row {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	named := make([]string, len(columns))
	for i, name := range columns {
		quoted[i] = schema.QuoteIdent(name)
		named[i] = ":" + name
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		schema.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(named, ", "))
	_, err = db.NamedExec(query, row)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// Delete removes rows matching the where clause, or every row if where is
// empty. A leading WHERE keyword in the clause is tolerated. Returns the
// number of rows removed.
func Delete(db *sqlx.DB, table string, where string, args ...any) (int64, error) {
	exists, err := schema.Exists(db, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, &schema.UnknownTableError{Table: table}
	}

	query := fmt.Sprintf("DELETE FROM %s", schema.QuoteIdent(table))
	clause := strings.TrimSpace(where)
	if lower := strings.ToLower(clause); lower == "where" {
		clause = ""
	} else if strings.HasPrefix(lower, "where ") {
		clause = strings.TrimSpace(clause[len("where "):])
	}
	if clause != "" {
		query += " WHERE " + clause
	}
	query += ";"

	result, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return result.RowsAffected()
}

// FetchAll scans every row of table into dest, which must be a pointer to a
// slice.
func FetchAll(db *sqlx.DB, dest any, table string) error {
	exists, err := schema.Exists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return &schema.UnknownTableError{Table: table}
	}
	return db.Select(dest, fmt.Sprintf("SELECT * FROM %s;", schema.QuoteIdent(table)))
}

// FetchOne scans the first row of table into dest. Returns sql.ErrNoRows for
// an empty table.
func FetchOne(db *sqlx.DB, dest any, table string) error {
	exists, err := schema.Exists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return &schema.UnknownTableError{Table: table}
	}
	return db.Get(dest, fmt.Sprintf("SELECT * FROM %s LIMIT 1;", schema.QuoteIdent(table)))
}

// FetchN scans up to n rows of table into dest, which must be a pointer to a
// slice.
func FetchN(db *sqlx.DB, dest any, table string, n int) error {
	if n < 0 {
		return fmt.Errorf("invalid row count %d", n)
	}
	exists, err := schema.Exists(db, table)
	if err != nil {
		return err
	}
	if !exists {
		return &schema.UnknownTableError{Table: table}
	}
	return db.Select(dest, fmt.Sprintf("SELECT * FROM %s LIMIT ?;", schema.QuoteIdent(table)), n)
}

// Count returns the number of rows in table.
func Count(db *sqlx.DB, table string) (int64, error) {
	exists, err := schema.Exists(db, table)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, &schema.UnknownTableError{Table: table}
	}
	var count int64
	err = db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s;", schema.QuoteIdent(table)))
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
