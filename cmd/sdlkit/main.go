// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdlkit/internal/describer"
	"sdlkit/internal/diag"
	"sdlkit/internal/dml"
	"sdlkit/internal/parser"
	"sdlkit/internal/parserdb"
	"sdlkit/internal/reformat"

	_ "sdlkit/internal/connector/mssql"
	_ "sdlkit/internal/connector/mysql"
	_ "sdlkit/internal/connector/postgres"
	_ "sdlkit/internal/connector/sqlite"

	_ "sdlkit/internal/describer/mssql"
	_ "sdlkit/internal/describer/mysql"
	_ "sdlkit/internal/describer/postgres"
	_ "sdlkit/internal/describer/sqlite"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sdlkit",
		Short: "Schema definition language toolchain – parse, validate, format and introspect",
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(formatCmd())
	rootCmd.AddCommand(liftCmd())
	rootCmd.AddCommand(introspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveSchemaPath takes the argument when present, otherwise the path
// from sdlkit.toml.
func resolveSchemaPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig("sdlkit.toml")
	if err != nil {
		return "", err
	}
	if cfg.Schema.Path == "" {
		return "", fmt.Errorf("no schema file given and no schema.path in sdlkit.toml")
	}
	return cfg.Schema.Path, nil
}

func loadAndResolve(path string) (string, *parserdb.DB, *diag.Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	src := string(data)

	schema, diags := parser.Parse(src)
	db := parserdb.New(schema, parserdb.ConnectorFor(schema), &diags)
	return src, db, &diags, nil
}

func printDiagnostics(src string, diags *diag.Diagnostics) {
	for _, w := range diags.Warnings() {
		line, col := diag.LineCol(src, w.Span.Start)
		fmt.Fprintf(os.Stderr, "warning: %d:%d: %s\n", line, col, w.Message)
	}
	for _, e := range diags.Errors() {
		line, col := diag.LineCol(src, e.Span.Start)
		fmt.Fprintf(os.Stderr, "error: %d:%d: %s\n", line, col, e.Message)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schema file]",
		Short: "Parse and validate a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveSchemaPath(args)
			if err != nil {
				return err
			}
			src, _, diags, err := loadAndResolve(path)
			if err != nil {
				return err
			}
			printDiagnostics(src, diags)
			if diags.HasErrors() {
				return fmt.Errorf("%d validation error(s)", len(diags.Errors()))
			}
			fmt.Println("schema is valid")
			return nil
		},
	}
}

func formatCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "format [schema file]",
		Short: "Reformat a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveSchemaPath(args)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			out := reformat.Reformat(string(data))
			if write {
				return os.WriteFile(path, []byte(out), 0o644)
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")
	return cmd
}

func liftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lift [schema file]",
		Short: "Validate a schema and display its lowered datamodel",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveSchemaPath(args)
			if err != nil {
				return err
			}
			src, db, diags, err := loadAndResolve(path)
			if err != nil {
				return err
			}
			if diags.HasErrors() {
				printDiagnostics(src, diags)
				return fmt.Errorf("%d validation error(s)", len(diags.Errors()))
			}

			dm := dml.Lift(db)
			fmt.Printf("Models found: %d\n", len(dm.Models))
			for _, m := range dm.Models {
				fmt.Printf("- %s (%d fields)\n", m.Name, len(m.Fields))
				for _, f := range m.Fields {
					typeName := string(f.Type.Scalar)
					if f.Type.Kind != dml.TypeScalar {
						typeName = f.Type.Name
					}
					fmt.Printf("  - %s: %s\n", f.Name, typeName)
				}
			}
			for _, e := range dm.Enums {
				fmt.Printf("- enum %s (%d values)\n", e.Name, len(e.Values))
			}
			return nil
		},
	}
}

func introspectCmd() *cobra.Command {
	var provider, url, schemaName string
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Describe a live database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("sdlkit.toml")
			if err != nil {
				return err
			}
			if provider == "" {
				provider = cfg.Datasource.Provider
			}
			if url == "" {
				url = cfg.Datasource.URL
			}
			if schemaName == "" {
				schemaName = cfg.Datasource.Schema
			}
			if provider == "" || url == "" {
				return fmt.Errorf("provider and url are required, via flags or sdlkit.toml")
			}

			d, err := describer.New(provider)
			if err != nil {
				return err
			}
			db, err := sql.Open(driverName(provider), url)
			if err != nil {
				return fmt.Errorf("failed to open connection: %w", err)
			}
			defer db.Close()

			out, err := d.Describe(cmd.Context(), db, schemaName)
			if err != nil {
				return err
			}

			fmt.Printf("Tables found: %d\n", len(out.Tables))
			for _, t := range out.Tables {
				fmt.Printf("- %s (%d columns, %d indexes, %d foreign keys)\n",
					t.Name, len(t.Columns), len(t.Indexes), len(t.ForeignKeys))
			}
			for _, e := range out.Enums {
				fmt.Printf("- enum %s (%d values)\n", e.Name, len(e.Values))
			}
			if len(out.Views) > 0 {
				fmt.Printf("Views found: %d\n", len(out.Views))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "database provider (postgresql, mysql, sqlserver, sqlite)")
	cmd.Flags().StringVar(&url, "url", "", "connection string")
	cmd.Flags().StringVar(&schemaName, "schema", "", "schema to introspect")
	return cmd
}

func driverName(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "pgx"
	case "sqlserver", "mssql":
		return "sqlserver"
	case "sqlite":
		return "sqlite3"
	default:
		return "mysql"
	}
}
