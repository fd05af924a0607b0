package database

// Package database provides a connection to an embedded SQLite database and a
// handful of convenience methods over it. This package is a thin facade; all
// query execution is delegated to the underlying engine via sqlx. Schema
// manipulation lives in the schema package and row helpers in the records
// package.
