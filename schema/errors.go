package schema

import (
	"fmt"
)

type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("no such table: %s", e.Table)
}

type TableExistsError struct {
	Table string
}

func (e *TableExistsError) Error() string {
	return fmt.Sprintf("table already exists: %s", e.Table)
}

type UnknownColumnError struct {
	Table  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("no such column: %s.%s", e.Table, e.Column)
}

type ColumnExistsError struct {
	Table  string
	Column string
}

func (e *ColumnExistsError) Error() string {
	return fmt.Sprintf("column already exists: %s.%s", e.Table, e.Column)
}

// UnsupportedTypeError is returned when a declared column type is neither a
// SQLite storage class nor a recognized affinity name.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported column type: %s", e.Type)
}
