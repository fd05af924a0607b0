package database

// Database manages the SQL connection and forwards queries to the underlying
// engine.

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

const tableNamesSql = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name;
`

const columnNamesSql = `
SELECT name FROM pragma_table_info($1) ORDER BY cid;
`

type Database struct {
	db   *sqlx.DB
	path string
}

// DriverName returns the SQL driver name registered for the current build.
// This is "sqlite" for the pure Go driver and "sqlite3" for the CGO driver.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" or "cgo" depending on the build tags used.
func DriverType() string {
	return driverType
}

// DriverPackage returns the import path of the underlying driver.
func DriverPackage() string {
	return driverPackage
}

// Open opens the database file at path, creating it if it does not exist.
func Open(path string) (*Database, error) {
	db, err := sqlx.Connect(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &Database{db: db, path: path}, nil
}

// OpenInMemory opens a private in-memory database. The contents are lost when
// the connection is closed.
func OpenInMemory() (*Database, error) {
	db, err := sqlx.Connect(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A connection pool would hand each goroutine its own empty database.
	db.SetMaxOpenConns(1)
	return &Database{db: db}, nil
}

// Connect opens a database using an explicit driver name and data source
// string, for callers that manage driver registration themselves.
func Connect(driverName string, dataSourceName string) (*Database, error) {
	db, err := sqlx.Connect(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	path := dataSourceName
	if strings.Contains(path, ":memory:") {
		path = ""
	}
	return &Database{db: db, path: path}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Destroy closes the connection and removes the backing file. It fails for
// in-memory databases, which have no file to remove.
func (d *Database) Destroy() error {
	if d.path == "" {
		return fmt.Errorf("cannot destroy database: no backing file")
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if err := os.Remove(d.path); err != nil {
		return fmt.Errorf("failed to remove database file %s: %w", d.path, err)
	}
	return nil
}

// Exec runs a statement that modifies the database.
func (d *Database) Exec(query string, args ...any) (sql.Result, error) {
	return d.db.Exec(query, args...)
}

// Query runs a SELECT statement and scans all resulting rows into dest, which
// must be a pointer to a slice.
func (d *Database) Query(dest any, query string, args ...any) error {
	return d.db.Select(dest, query, args...)
}

// QueryRow runs a SELECT statement and scans the first resulting row into
// dest. Returns sql.ErrNoRows if the query matches nothing.
func (d *Database) QueryRow(dest any, query string, args ...any) error {
	return d.db.Get(dest, query, args...)
}

// TableNames returns the names of all user tables in the database, sorted.
func (d *Database) TableNames() ([]string, error) {
	names := []string{}
	err := d.db.Select(&names, tableNamesSql)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}

// Schema returns a map from each user table name to its column names, in
// declaration order.
func (d *Database) Schema() (map[string][]string, error) {
	tables, err := d.TableNames()
	if err != nil {
		return nil, err
	}
	schema := make(map[string][]string, len(tables))
	for _, table := range tables {
		columns := []string{}
		err = d.db.Select(&columns, columnNamesSql, table)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
		}
		schema[table] = columns
	}
	return schema, nil
}

// Clear drops every user table, leaving an empty database behind.
func (d *Database) Clear() error {
	tables, err := d.TableNames()
	if err != nil {
		return err
	}

	tx, err := d.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		_, err = tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, strings.ReplaceAll(table, `"`, `""`)))
		if err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// DB returns the underlying sqlx handle for queries this package does not
// cover.
func (d *Database) DB() *sqlx.DB {
	return d.db
}
