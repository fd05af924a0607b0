package schema

import (
	"errors"
	"testing"
)

func TestAddColumn(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "books", []Column{{Name: "title"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO books (title) VALUES ('dune')`); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	err := AddColumn(db, "books", Column{Name: "pages", Type: "INTEGER"}, ColumnOptions{})
	if err != nil {
		t.Fatalf("AddColumn returned error: %v", err)
	}

	// Existing rows get the type's zero default, since the column is NOT NULL.
	var pages int
	if err := db.Get(&pages, `SELECT pages FROM books WHERE title = 'dune'`); err != nil {
		t.Fatalf("Failed to read new column: %v", err)
	}
	if pages != 0 {
		t.Errorf("Expected default 0, got %d", pages)
	}
}

func TestAddColumnDuplicate(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "books", []Column{{Name: "title"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	err := AddColumn(db, "books", Column{Name: "title"}, ColumnOptions{})
	var existsErr *ColumnExistsError
	if !errors.As(err, &existsErr) {
		t.Errorf("Expected ColumnExistsError, got %v", err)
	}
}

func TestAddColumnUnique(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "books", []Column{{Name: "title"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	err := AddColumn(db, "books", Column{Name: "isbn"}, ColumnOptions{AllowNull: true, Unique: true})
	if err != nil {
		t.Fatalf("AddColumn returned error: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO books (title, isbn) VALUES ('dune', '123')`); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO books (title, isbn) VALUES ('other', '123')`); err == nil {
		t.Error("Expected UNIQUE violation inserting duplicate isbn")
	}
}

func TestAddColumnUnknownTable(t *testing.T) {
	db := setupTestDB(t)

	err := AddColumn(db, "missing", Column{Name: "x"}, ColumnOptions{})
	var unknownErr *UnknownTableError
	if !errors.As(err, &unknownErr) {
		t.Errorf("Expected UnknownTableError, got %v", err)
	}
}

func TestColumnTypes(t *testing.T) {
	db := setupTestDB(t)

	err := Create(db, "typed", []Column{
		{Name: "label"},
		{Name: "score", Type: "REAL"},
	}, CreateOptions{NoAutoID: true})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	cols, err := ColumnTypes(db, "typed")
	if err != nil {
		t.Fatalf("ColumnTypes returned error: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(cols))
	}
	if cols[0].Name != "label" || cols[0].Type != "TEXT" {
		t.Errorf("Unexpected first column: %+v", cols[0])
	}
	if cols[1].Name != "score" || cols[1].Type != "REAL" {
		t.Errorf("Unexpected second column: %+v", cols[1])
	}
}

func TestHasColumn(t *testing.T) {
	db := setupTestDB(t)

	if err := Create(db, "books", []Column{{Name: "title"}}, CreateOptions{}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	has, err := HasColumn(db, "books", "title")
	if err != nil {
		t.Fatalf("HasColumn returned error: %v", err)
	}
	if !has {
		t.Error("Expected title column to exist")
	}
	has, err = HasColumn(db, "books", "isbn")
	if err != nil {
		t.Fatalf("HasColumn returned error: %v", err)
	}
	if has {
		t.Error("Did not expect isbn column to exist")
	}
}
