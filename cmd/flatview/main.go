// Package main provides a CLI for managing flatview schema views.
//
// The CLI supports:
//   - validate: Check schema files for structural errors
//   - generate: Compile schemas and create/update the warehouse views
//   - version: Print version information
//
// Commands that touch the warehouse (generate without --dry-run) need a
// BigQuery project and dataset, via flags, FLATVIEW_* environment
// variables, or flatview.yaml. Validation and dry-run compilation work
// entirely offline.
package main

func main() {
	Execute()
}
