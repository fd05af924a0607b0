package schema

import (
	"errors"
	"path"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/tomyedwab/litedb/database"
)

// setupTestDB creates a temporary test database
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbPath := path.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db.DB()
}

func TestCreateDefaults(t *testing.T) {
	db := setupTestDB(t)

	err := Create(db, "employees", []Column{
		{Name: "name"},
		{Name: "age", Type: "INTEGER"},
		{Name: "email"},
	}, CreateOptions{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	columns, err := Columns(db, "employees")
	if err != nil {
		t.Fatalf("Columns returned error: %v", err)
	}
	want := []string{"id", "name", "age", "email"}
	if !reflect.DeepEqual(columns, want) {
		t.Errorf("Expected columns %v, got %v", want, columns)
	}

	// The implicit id column is a rowid alias and assigns itself.
	_, err = db.Exec(`INSERT INTO employees (name, age, email) VALUES ('alice', 40, 'a@example.com')`)
	if err != nil {
		t.Fatalf("Insert into created table failed: %v", err)
	}
	var id int
	err = db.Get(&id, "SELECT id FROM employees WHERE name = 'alice'")
	if err != nil {
		t.Fatalf("Failed to read back row: %v", err)
	}
	if id != 1 {
		t.Errorf("Expected id 1, got %d", id)
	}
}

func TestCreateWithPrimaryKey(t *testing.T) {
	db := setupTestDB(t)

	err := Create(db, "parts", []Column{
		{Name: "sku"},
		{Name: "description"},
	}, CreateOptions{PrimaryKey: "sku"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	infos, err := tableInfo(db, "parts")
	if err != nil {
		t.Fatalf("tableInfo returned error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(infos))
	}
	if infos[0].Name != "sku" || infos[0].PK == 0 {
		t.Errorf("Expected sku to be the primary key, got %+v", infos[0])
	}
	// A pk declared without a type defaults to INTEGER.
	if infos[0].Type != "INTEGER" {
		t.Errorf("Expected INTEGER primary key, got %s", infos[0].Type)
	}
}

func TestCreateWithExternalPrimaryKey(t *testing.T) {
	db := setupTestDB(t)

	// A primary key outside the declared columns becomes a leading column.
	err := Create(db, "notes", []Column{{Name: "body"}}, CreateOptions{PrimaryKey: "ref"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	columns, err := Columns(db, "notes")
	if err != nil {
		t.Fatalf("Columns returned error: %v", err)
	}
	want := []string{"ref", "body"}
	if !reflect.DeepEqual(columns, want) {
		t.Errorf("Expected columns %v, got %v", want, columns)
	}
}

func TestCreateNullAndUnique(t *testing.T) {
	db := setupTestDB(t)

	err := Create(db, "users", []Column{
		{Name: "username"},
		{Name: "nickname"},
	}, CreateOptions{AllowNull: []string{"nickname"}, Unique: []string{"username"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = db.Exec(`INSERT INTO users (username) VALUES ('bob')`)
	if err != nil {
		t.Fatalf("Insert with NULL nickname failed: %v", err)
	}
	_, err = db.Exec(`INSERT INTO users (username, nickname) VALUES ('bob', 'rob')`)
	if err == nil {
		t.Error("Expected UNIQUE violation inserting duplicate username")
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)

	err := Create(db, "bad", []Column{{Name: "x", Type: "FANCY"}}, CreateOptions{})
	var typeErr *UnsupportedTypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("Expected UnsupportedTypeError, got %v", err)
	}

	err = Create(db, "bad", []Column{{Name: "x"}}, CreateOptions{Unique: []string{"y"}})
	var colErr *UnknownColumnError
	if !errors.As(err, &colErr) {
		t.Errorf("Expected UnknownColumnError for undeclared unique column, got %v", err)
	}

	err = Create(db, "bad", []Column{{Name: "x"}}, CreateOptions{AllowNull: []string{"y"}})
	if !errors.As(err, &colErr) {
		t.Errorf("Expected UnknownColumnError for undeclared null column, got %v", err)
	}
}

func TestCreateRejectsDuplicateTable(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "dup", []Column{{Name: "x"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	err := Create(db, "dup", []Column{{Name: "x"}}, CreateOptions{})
	var existsErr *TableExistsError
	if !errors.As(err, &existsErr) {
		t.Errorf("Expected TableExistsError, got %v", err)
	}
}

func TestDrop(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "gone", []Column{{Name: "x"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := Drop(db, "gone"); err != nil {
		t.Fatalf("Drop returned error: %v", err)
	}
	exists, err := Exists(db, "gone")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if exists {
		t.Error("Table still exists after Drop")
	}

	err = Drop(db, "gone")
	var unknownErr *UnknownTableError
	if !errors.As(err, &unknownErr) {
		t.Errorf("Expected UnknownTableError, got %v", err)
	}
}

func TestRename(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "old_name", []Column{{Name: "x"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := Rename(db, "old_name", "new_name"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	exists, err := Exists(db, "new_name")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !exists {
		t.Error("Renamed table does not exist")
	}

	var unknownErr *UnknownTableError
	if err := Rename(db, "old_name", "other"); !errors.As(err, &unknownErr) {
		t.Errorf("Expected UnknownTableError renaming missing table, got %v", err)
	}

	if err := Create(db, "taken", []Column{{Name: "x"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	var existsErr *TableExistsError
	if err := Rename(db, "new_name", "taken"); !errors.As(err, &existsErr) {
		t.Errorf("Expected TableExistsError renaming over existing table, got %v", err)
	}
}
