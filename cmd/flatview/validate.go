package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flatview/flatview/internal/cli"
	"github.com/flatview/flatview/schemafile"
)

var validateSchemasDir string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate schema files",
	Long:  `Check every schema file in the schemas directory for structural errors.`,
	Example: `  # Validate a specific schemas directory
  flatview validate --schemas-dir schemas

  # Validate using config file settings
  flatview validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemasDir := resolveString(validateSchemasDir, cfg.SchemasDir)

		schemas, err := schemafile.LoadDir(schemasDir)
		if err != nil {
			return cli.SchemaParseError("validating schemas", err)
		}
		if len(schemas) == 0 {
			return cli.SchemaParseError(fmt.Sprintf("no schema files found in %s", schemasDir), nil)
		}

		if !quiet {
			fmt.Printf("All schemas valid. Found %d:\n", len(schemas))
			for _, name := range sortedNames(schemas) {
				fmt.Printf("  - %s (%d fields)\n", name, len(schemas[name].Fields))
			}
		}

		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchemasDir, "schemas-dir", "", "directory containing schema files")
}
