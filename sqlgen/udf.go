package sqlgen

import "fmt"

// Names of the dataset-scoped coercion functions. The compiler's only
// contract with them is by name: given an extraction expression, each
// returns an expression producing the coerced value. Their SQL is installed
// by the factory package and never inspected here.
const (
	UDFBoolean   = "json_to_boolean"
	UDFNumber    = "json_to_number"
	UDFTimestamp = "json_to_timestamp"
	UDFArray     = "json_to_array"
	UDFGeopoint  = "json_to_geopoint"
)

// udfCall builds a call to a dataset-scoped coercion function.
func udfCall(datasetID, name, expr string) string {
	return fmt.Sprintf("`%s`.%s(%s)", datasetID, name, expr)
}

// UDFDefinitions returns the DDL statements installing the coercion
// functions into a dataset. Statements are idempotent (CREATE OR REPLACE)
// so the factory can run them on every initialization.
func UDFDefinitions(datasetID string) []string {
	return []string{
		sqlf(`
			CREATE OR REPLACE FUNCTION `+"`%s`"+`.%s(json STRING)
			RETURNS BOOL AS (SAFE_CAST(json AS BOOL))`,
			datasetID, UDFBoolean),
		sqlf(`
			CREATE OR REPLACE FUNCTION `+"`%s`"+`.%s(json STRING)
			RETURNS NUMERIC AS (SAFE_CAST(json AS NUMERIC))`,
			datasetID, UDFNumber),
		sqlf(`
			CREATE OR REPLACE FUNCTION `+"`%s`"+`.%s(json STRING)
			RETURNS TIMESTAMP AS (SAFE.PARSE_TIMESTAMP("%%Y-%%m-%%dT%%H:%%M:%%E*SZ", json))`,
			datasetID, UDFTimestamp),
		sqlf(`
			CREATE OR REPLACE FUNCTION `+"`%s`"+`.%s(json STRING)
			RETURNS ARRAY<STRING> AS (
			  ARRAY(SELECT TRIM(member, '"') FROM UNNEST(JSON_EXTRACT_ARRAY(json, '$')) member)
			)`,
			datasetID, UDFArray),
		sqlf(`
			CREATE OR REPLACE FUNCTION `+"`%s`"+`.%s(latitude STRING, longitude STRING)
			RETURNS GEOGRAPHY AS (
			  ST_GEOGPOINT(SAFE_CAST(longitude AS FLOAT64), SAFE_CAST(latitude AS FLOAT64))
			)`,
			datasetID, UDFGeopoint),
	}
}
