package schema

import (
	"strings"
)

// DefaultType is the column type used when a column is declared by name only.
const DefaultType = "TEXT"

// storageClasses are the five SQLite storage classes.
var storageClasses = map[string]bool{
	"NULL":    true,
	"INTEGER": true,
	"REAL":    true,
	"TEXT":    true,
	"BLOB":    true,
}

// affinityNames are the declared type names SQLite maps onto a storage class
// via its affinity rules. A parenthesized size suffix (e.g. VARCHAR(255)) is
// stripped before lookup.
var affinityNames = map[string]string{
	"TINYINT":           "INTEGER",
	"SMALLINT":          "INTEGER",
	"MEDIUMINT":         "INTEGER",
	"BIGINT":            "INTEGER",
	"UNSIGNED BIG INT":  "INTEGER",
	"INT":               "INTEGER",
	"INT2":              "INTEGER",
	"INT8":              "INTEGER",
	"CHARACTER":         "TEXT",
	"VARCHAR":           "TEXT",
	"VARYING CHARACTER": "TEXT",
	"NCHAR":             "TEXT",
	"NATIVE CHARACTER":  "TEXT",
	"NVARCHAR":          "TEXT",
	"CLOB":              "TEXT",
	"DOUBLE":            "REAL",
	"DOUBLE PRECISION":  "REAL",
	"FLOAT":             "REAL",
	"DECIMAL":           "NUMERIC",
	"BOOLEAN":           "NUMERIC",
	"DATE":              "NUMERIC",
	"DATETIME":          "NUMERIC",
}

// NormalizeType validates a declared column type against the SQLite storage
// classes and affinity names, case-insensitively, and returns its canonical
// uppercase spelling. An empty declaration is valid in SQLite (BLOB affinity)
// but this package treats it as the TEXT default instead.
func NormalizeType(declared string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(declared))
	if normalized == "" {
		return DefaultType, nil
	}

	base := normalized
	if i := strings.IndexByte(base, '('); i >= 0 {
		if !strings.HasSuffix(base, ")") {
			return "", &UnsupportedTypeError{Type: declared}
		}
		base = strings.TrimSpace(base[:i])
	}

	if storageClasses[base] {
		return normalized, nil
	}
	if _, ok := affinityNames[base]; ok {
		return normalized, nil
	}
	return "", &UnsupportedTypeError{Type: declared}
}

// Affinity returns the storage class a declared type maps to under SQLite's
// affinity rules, or an error if the type is not recognized.
func Affinity(declared string) (string, error) {
	normalized, err := NormalizeType(declared)
	if err != nil {
		return "", err
	}
	base := normalized
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if storageClasses[base] {
		return base, nil
	}
	return affinityNames[base], nil
}
