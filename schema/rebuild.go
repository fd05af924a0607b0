package schema

// Emulation of schema edits SQLite does not support natively. The table is
// renamed aside, a replacement with the new shape is created, rows are copied
// across with INSERT .. SELECT, and the original is dropped. The whole edit
// runs in one transaction so a failure leaves the original table intact.

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DropColumn removes a column from a table by rebuilding it. Dropping the
// only remaining column drops the table itself.
func DropColumn(db *sqlx.DB, table string, column string) error {
	infos, err := tableInfo(db, table)
	if err != nil {
		return err
	}

	found := false
	keep := make([]columnInfo, 0, len(infos))
	for _, info := range infos {
		if info.Name == column {
			found = true
			continue
		}
		keep = append(keep, info)
	}
	if !found {
		return &UnknownColumnError{Table: table, Column: column}
	}
	if len(keep) == 0 {
		return Drop(db, table)
	}

	defs := make([]string, len(keep))
	names := make([]string, len(keep))
	for i, info := range keep {
		defs[i] = renderColumnDef(info)
		names[i] = QuoteIdent(info.Name)
	}
	return rebuild(db, table, defs, names, names)
}

// AlterColumnType changes the declared type of a column by rebuilding the
// table. Stored values are reinterpreted under the new type's affinity.
func AlterColumnType(db *sqlx.DB, table string, column string, newType string) error {
	ftype, err := NormalizeType(newType)
	if err != nil {
		return err
	}

	infos, err := tableInfo(db, table)
	if err != nil {
		return err
	}

	found := false
	defs := make([]string, len(infos))
	names := make([]string, len(infos))
	for i, info := range infos {
		if info.Name == column {
			found = true
			info.Type = ftype
		}
		defs[i] = renderColumnDef(info)
		names[i] = QuoteIdent(info.Name)
	}
	if !found {
		return &UnknownColumnError{Table: table, Column: column}
	}
	return rebuild(db, table, defs, names, names)
}

// SetPrimaryKey promotes a column to be the table's primary key, rebuilding
// the table around it. If the column does not exist yet, a new leading column
// is created and filled from the rowid. An existing column is moved to the
// front, matching the new key's position in the schema. ftype defaults to
// INTEGER.
func SetPrimaryKey(db *sqlx.DB, table string, column string, ftype string) error {
	if ftype == "" {
		ftype = "INTEGER"
	}
	ftype, err := NormalizeType(ftype)
	if err != nil {
		return err
	}

	infos, err := tableInfo(db, table)
	if err != nil {
		return err
	}

	// Any previous primary key reverts to an ordinary column.
	rest := make([]columnInfo, 0, len(infos))
	existing := false
	for _, info := range infos {
		if info.Name == column {
			existing = true
			continue
		}
		info.PK = 0
		rest = append(rest, info)
	}

	defs := []string{fmt.Sprintf("%s %s NOT NULL PRIMARY KEY", QuoteIdent(column), ftype)}
	names := []string{QuoteIdent(column)}
	selects := []string{QuoteIdent(column)}
	if !existing {
		selects = []string{"rowid"}
	}
	for _, info := range rest {
		defs = append(defs, renderColumnDef(info))
		names = append(names, QuoteIdent(info.Name))
		selects = append(selects, QuoteIdent(info.Name))
	}

	return rebuild(db, table, defs, names, selects)
}

// renderColumnDef reproduces a column definition from PRAGMA table_info
// output. Only single-column primary keys survive a rebuild; dflt_value is
// already a SQL literal and is spliced back in verbatim.
func renderColumnDef(info columnInfo) string {
	def := QuoteIdent(info.Name)
	if info.Type != "" {
		def += " " + info.Type
	}
	if info.PK > 0 {
		def += " PRIMARY KEY"
	}
	if info.NotNull {
		def += " NOT NULL"
	}
	if info.Default.Valid {
		def += " DEFAULT " + info.Default.String
	}
	return def
}

// rebuild replaces table with a new shape, copying rows across. defs are the
// complete column definitions of the replacement, insertCols the quoted
// column names to fill, and selectExprs the matching expressions evaluated
// against the old table.
func rebuild(db *sqlx.DB, table string, defs []string, insertCols []string, selectExprs []string) error {
	// Foreign key enforcement would reject the intermediate states; restore
	// the previous setting when done. The pragma has no effect inside a
	// transaction, so it is toggled outside of one.
	var fkEnabled int
	if err := db.Get(&fkEnabled, "PRAGMA foreign_keys;"); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if fkEnabled != 0 {
		if _, err := db.Exec("PRAGMA foreign_keys=off;"); err != nil {
			return fmt.Errorf("failed to disable foreign keys: %w", err)
		}
		defer db.Exec("PRAGMA foreign_keys=on;")
	}

	old := fmt.Sprintf("%s_old_%s", table, uuid.New().String()[:8])

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", QuoteIdent(table), QuoteIdent(old)))
	if err != nil {
		return fmt.Errorf("failed to rename %s aside: %w", table, err)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n);", QuoteIdent(table), strings.Join(defs, ",\n\t"))
	_, err = tx.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to recreate table %s: %w", table, err)
	}

	copySql := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;",
		QuoteIdent(table), strings.Join(insertCols, ", "),
		strings.Join(selectExprs, ", "), QuoteIdent(old))
	_, err = tx.Exec(copySql)
	if err != nil {
		return fmt.Errorf("failed to copy rows into rebuilt table %s: %w", table, err)
	}

	_, err = tx.Exec(fmt.Sprintf("DROP TABLE %s;", QuoteIdent(old)))
	if err != nil {
		return fmt.Errorf("failed to drop old table %s: %w", old, err)
	}

	return tx.Commit()
}
