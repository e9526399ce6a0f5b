package main

import (
	"fmt"
	"sort"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/cobra"

	"github.com/flatview/flatview"
	"github.com/flatview/flatview/factory"
	"github.com/flatview/flatview/internal/cli"
	"github.com/flatview/flatview/schemafile"
	"github.com/flatview/flatview/sqlgen"
)

var (
	generateTable      string
	generateSchemasDir string
	generateDryRun     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create or refresh schema views",
	Long: `Compile every schema file in the schemas directory and create or
refresh the corresponding changelog and latest-snapshot views.`,
	Example: `  # Create views for the users collection from ./schemas
  flatview generate --table users

  # Print the compiled view queries without touching the warehouse
  flatview generate --table users --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := resolveString(generateTable, cfg.Generate.Table)
		if table == "" {
			return cli.ConfigError("generate.table is required", nil)
		}
		dryRun := generateDryRun || cfg.Generate.DryRun
		if err := cfg.Validate(dryRun); err != nil {
			return cli.ConfigError("invalid configuration", err)
		}

		schemasDir := resolveString(generateSchemasDir, cfg.SchemasDir)
		schemas, err := schemafile.LoadDir(schemasDir)
		if err != nil {
			return cli.SchemaParseError("loading schemas", err)
		}
		if len(schemas) == 0 {
			return cli.SchemaParseError(fmt.Sprintf("no schema files found in %s", schemasDir), nil)
		}

		if dryRun {
			return printCompiledViews(table, schemas)
		}

		ctx := cmd.Context()
		client, err := bigquery.NewClient(ctx, cfg.BigQuery.Project)
		if err != nil {
			return cli.WarehouseError("connecting to BigQuery", err)
		}
		defer func() { _ = client.Close() }()

		f := factory.New(client, cfg.BigQuery.Dataset)
		for _, name := range sortedNames(schemas) {
			if err := f.InitializeSchemaViews(ctx, table, name, *schemas[name]); err != nil {
				return cli.WarehouseError(fmt.Sprintf("initializing views for schema %s", name), err)
			}
			if !quiet {
				base := flatview.SchemaViewName(table, name)
				fmt.Printf("Views ready: %s, %s\n",
					flatview.ChangelogTableName(base), flatview.LatestViewName(base))
			}
		}
		return nil
	},
}

// printCompiledViews writes the compiled queries to stdout without any
// warehouse access.
func printCompiledViews(table string, schemas map[string]*flatview.Schema) error {
	source := flatview.ChangelogTableName(flatview.RawTableName(table))
	for _, name := range sortedNames(schemas) {
		changelog, err := sqlgen.BuildSchemaViewQuery(cfg.BigQuery.Dataset, source, *schemas[name])
		if err != nil {
			return cli.SchemaParseError(fmt.Sprintf("compiling schema %s", name), err)
		}
		latest, err := sqlgen.BuildLatestSnapshotViewQuery(cfg.BigQuery.Dataset, source, *schemas[name])
		if err != nil {
			return cli.SchemaParseError(fmt.Sprintf("compiling schema %s", name), err)
		}

		base := flatview.SchemaViewName(table, name)
		fmt.Printf("-- %s\n%s\n\n", flatview.ChangelogTableName(base), changelog.Query)
		fmt.Printf("-- %s\n%s\n\n", flatview.LatestViewName(base), latest.Query)
	}
	return nil
}

func sortedNames(schemas map[string]*flatview.Schema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	generateCmd.Flags().StringVar(&generateTable, "table", "", "collection table name the views derive from")
	generateCmd.Flags().StringVar(&generateSchemasDir, "schemas-dir", "", "directory containing schema files")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print compiled queries without creating views")
}
