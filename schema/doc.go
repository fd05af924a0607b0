// Package schema creates, inspects, and alters SQLite table schemas. The
// operations the engine supports natively (CREATE TABLE, DROP TABLE, RENAME,
// ADD COLUMN) are plain pass-through statements; the ones it does not
// (dropping a column, changing a column's type, promoting a primary key) are
// emulated by rebuilding the table and copying its rows across.
package schema
