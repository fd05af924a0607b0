package schema

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const tableInfoSql = `
SELECT cid, name, type, "notnull", dflt_value, pk
FROM pragma_table_info($1) ORDER BY cid;
`

// columnInfo mirrors one row of PRAGMA table_info.
type columnInfo struct {
	CID     int            `db:"cid"`
	Name    string         `db:"name"`
	Type    string         `db:"type"`
	NotNull bool           `db:"notnull"`
	Default sql.NullString `db:"dflt_value"`
	PK      int            `db:"pk"`
}

// ColumnOptions controls AddColumn.
type ColumnOptions struct {
	AllowNull bool
	Unique    bool
}

func tableInfo(db *sqlx.DB, table string) ([]columnInfo, error) {
	exists, err := Exists(db, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &UnknownTableError{Table: table}
	}
	var infos []columnInfo
	err = db.Select(&infos, tableInfoSql, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	return infos, nil
}

// Columns returns the column names of a table in declaration order.
func Columns(db *sqlx.DB, table string) ([]string, error) {
	infos, err := tableInfo(db, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// ColumnTypes returns the columns of a table with their declared types, in
// declaration order.
func ColumnTypes(db *sqlx.DB, table string) ([]Column, error) {
	infos, err := tableInfo(db, table)
	if err != nil {
		return nil, err
	}
	cols := make([]Column, len(infos))
	for i, info := range infos {
		cols[i] = Column{Name: info.Name, Type: info.Type}
	}
	return cols, nil
}

// HasColumn reports whether the table has a column with the given name.
func HasColumn(db *sqlx.DB, table string, column string) (bool, error) {
	names, err := Columns(db, table)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == column {
			return true, nil
		}
	}
	return false, nil
}

// AddColumn appends a new column to an existing table via ALTER TABLE ADD
// COLUMN. The engine supports this natively, so no rebuild is needed.
func AddColumn(db *sqlx.DB, table string, col Column, opts ColumnOptions) error {
	has, err := HasColumn(db, table, col.Name)
	if err != nil {
		return err
	}
	if has {
		return &ColumnExistsError{Table: table, Column: col.Name}
	}

	ftype, err := NormalizeType(col.Type)
	if err != nil {
		return err
	}

	ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", QuoteIdent(table), QuoteIdent(col.Name), ftype)
	if !opts.AllowNull {
		// SQLite requires a default for a NOT NULL column added to a
		// table that may already hold rows.
		affinity, _ := Affinity(ftype)
		switch affinity {
		case "INTEGER", "REAL", "NUMERIC":
			ddl += " NOT NULL DEFAULT 0"
		default:
			ddl += " NOT NULL DEFAULT ''"
		}
	}
	ddl += ";"

	_, err = db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, col.Name, err)
	}

	if opts.Unique {
		// ADD COLUMN does not accept a UNIQUE constraint; a unique index
		// is equivalent.
		index := fmt.Sprintf("idx_%s_%s_unique", table, col.Name)
		_, err = db.Exec(fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s);",
			QuoteIdent(index), QuoteIdent(table), QuoteIdent(col.Name)))
		if err != nil {
			return fmt.Errorf("failed to add unique index on %s.%s: %w", table, col.Name, err)
		}
	}
	return nil
}
