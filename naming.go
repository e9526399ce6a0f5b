package flatview

// Naming conventions for the warehouse objects surrounding a document
// collection. These compose: the changelog view for a schema over table
// "users" with schema name "app" is
// ChangelogTableName(SchemaViewName("users", "app")) = "users_schema_app_changelog".

// RawTableName returns the name of the raw storage table for a collection.
func RawTableName(table string) string {
	return table + "_raw"
}

// ChangelogTableName returns the changelog-shaped name for a table or view.
func ChangelogTableName(table string) string {
	return table + "_changelog"
}

// LatestViewName returns the latest-snapshot-shaped name for a table or view.
func LatestViewName(table string) string {
	return table + "_latest"
}

// SchemaViewName returns the base name for the views derived from the named
// schema over the given collection table.
func SchemaViewName(table, schemaName string) string {
	return table + "_schema_" + schemaName
}
