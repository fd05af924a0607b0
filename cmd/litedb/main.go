// Command litedb exposes the library over a database file: schema
// inspection, table and column edits (including the rebuild-emulated ones),
// and .sql migrations.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/tomyedwab/litedb/database"
	"github.com/tomyedwab/litedb/migrations"
	"github.com/tomyedwab/litedb/records"
	"github.com/tomyedwab/litedb/schema"
)

var cli struct {
	DB string `help:"Path to the database file." short:"d" required:"" env:"LITEDB_DB" type:"path"`

	Tables        TablesCmd        `cmd:"" help:"List tables."`
	Schema        SchemaCmd        `cmd:"" help:"Print each table with its columns."`
	CreateTable   CreateTableCmd   `cmd:"" help:"Create a table from name[:type] column specs."`
	DropTable     DropTableCmd     `cmd:"" help:"Drop a table."`
	RenameTable   RenameTableCmd   `cmd:"" help:"Rename a table."`
	AddColumn     AddColumnCmd     `cmd:"" help:"Add a column to a table."`
	DropColumn    DropColumnCmd    `cmd:"" help:"Drop a column (rebuilds the table)."`
	AlterColumn   AlterColumnCmd   `cmd:"" help:"Change a column's type (rebuilds the table)."`
	SetPrimaryKey SetPrimaryKeyCmd `cmd:"" help:"Promote a column to primary key (rebuilds the table)."`
	Migrate       MigrateCmd       `cmd:"" help:"Apply .sql migrations from a directory."`
	Count         CountCmd         `cmd:"" help:"Count rows in a table."`
	Info          InfoCmd          `cmd:"" help:"Print driver information."`
}

type TablesCmd struct{}

func (c *TablesCmd) Run(db *database.Database) error {
	tables, err := db.TableNames()
	if err != nil {
		return err
	}
	for _, table := range tables {
		fmt.Println(table)
	}
	return nil
}

type SchemaCmd struct{}

func (c *SchemaCmd) Run(db *database.Database) error {
	tables, err := db.TableNames()
	if err != nil {
		return err
	}
	for _, table := range tables {
		cols, err := schema.ColumnTypes(db.DB(), table)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", table)
		for _, col := range cols {
			fmt.Printf("  %s %s\n", col.Name, col.Type)
		}
	}
	return nil
}

type CreateTableCmd struct {
	Table   string   `arg:"" help:"Table name."`
	Columns []string `arg:"" help:"Column specs, name or name:type."`

	PrimaryKey string   `help:"Column to use as primary key."`
	NoAutoID   bool     `help:"Do not add an implicit INTEGER id primary key."`
	Null       []string `help:"Columns that accept NULL values."`
	Unique     []string `help:"Columns combined into a UNIQUE constraint."`
}

func (c *CreateTableCmd) Run(db *database.Database) error {
	cols := make([]schema.Column, len(c.Columns))
	for i, spec := range c.Columns {
		name, ftype, _ := strings.Cut(spec, ":")
		cols[i] = schema.Column{Name: name, Type: ftype}
	}
	return schema.Create(db.DB(), c.Table, cols, schema.CreateOptions{
		PrimaryKey: c.PrimaryKey,
		NoAutoID:   c.NoAutoID,
		AllowNull:  c.Null,
		Unique:     c.Unique,
	})
}

type DropTableCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *DropTableCmd) Run(db *database.Database) error {
	return schema.Drop(db.DB(), c.Table)
}

type RenameTableCmd struct {
	Old string `arg:"" help:"Current table name."`
	New string `arg:"" help:"New table name."`
}

func (c *RenameTableCmd) Run(db *database.Database) error {
	return schema.Rename(db.DB(), c.Old, c.New)
}

type AddColumnCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column name."`
	Type   string `arg:"" optional:"" help:"Column type (default TEXT)."`

	Null   bool `help:"Allow NULL values."`
	Unique bool `help:"Enforce uniqueness via an index."`
}

func (c *AddColumnCmd) Run(db *database.Database) error {
	return schema.AddColumn(db.DB(), c.Table, schema.Column{Name: c.Column, Type: c.Type},
		schema.ColumnOptions{AllowNull: c.Null, Unique: c.Unique})
}

type DropColumnCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column name."`
}

func (c *DropColumnCmd) Run(db *database.Database) error {
	return schema.DropColumn(db.DB(), c.Table, c.Column)
}

type AlterColumnCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column name."`
	Type   string `arg:"" help:"New column type."`
}

func (c *AlterColumnCmd) Run(db *database.Database) error {
	return schema.AlterColumnType(db.DB(), c.Table, c.Column, c.Type)
}

type SetPrimaryKeyCmd struct {
	Table  string `arg:"" help:"Table name."`
	Column string `arg:"" help:"Column to promote (created from rowid if missing)."`
	Type   string `arg:"" optional:"" help:"Key column type (default INTEGER)."`
}

func (c *SetPrimaryKeyCmd) Run(db *database.Database) error {
	return schema.SetPrimaryKey(db.DB(), c.Table, c.Column, c.Type)
}

type MigrateCmd struct {
	Dir string `arg:"" help:"Directory of .sql migration files." type:"existingdir"`
}

func (c *MigrateCmd) Run(db *database.Database) error {
	if err := migrations.Apply(db.DB(), os.DirFS(c.Dir), "."); err != nil {
		return err
	}
	applied, err := migrations.Applied(db.DB())
	if err != nil {
		return err
	}
	fmt.Printf("%d migrations applied\n", len(applied))
	return nil
}

type CountCmd struct {
	Table string `arg:"" help:"Table name."`
}

func (c *CountCmd) Run(db *database.Database) error {
	count, err := records.Count(db.DB(), c.Table)
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}

type InfoCmd struct{}

func (c *InfoCmd) Run(db *database.Database) error {
	fmt.Printf("driver: %s (%s, %s)\n",
		database.DriverName(), database.DriverType(), database.DriverPackage())
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("litedb"),
		kong.Description("Convenience layer and schema-edit helpers for SQLite databases"),
		kong.UsageOnError(),
	)

	db, err := database.Open(cli.DB)
	ctx.FatalIfErrorf(err)
	defer db.Close()

	ctx.FatalIfErrorf(ctx.Run(db))
}
