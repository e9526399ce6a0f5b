package sqlgen

import (
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/flatview/flatview"
)

// selectExpr is one output column of the flattened SELECT: the expression
// and the qualified name it is assigned with AS.
type selectExpr struct {
	Name string
	Expr string
}

// leafResult carries a resolved leaf field's select expressions and the
// matching column descriptors, in emission order.
type leafResult struct {
	selects []selectExpr
	columns []*bigquery.FieldSchema
}

// JSON pointer members of a stored geopoint value.
const (
	latitudeSubPath  = ".latitude"
	longitudeSubPath = ".longitude"
)

// resolveLeaf builds the extraction and coercion expression(s) for one
// non-map field. Geopoint is the only kind producing more than one output
// column per input field (the point itself plus numeric latitude and
// longitude members); it returns early instead of falling through the
// single-column finalize step shared by every other kind.
//
// The caller guarantees map fields never reach this function.
func resolveLeaf(datasetID, dataColumn string, path []string, field flatview.Field) (leafResult, error) {
	qualified := Qualify(path, field.Name)

	var expr string
	column := &bigquery.FieldSchema{
		Name:        qualified,
		Description: field.Description,
	}

	switch field.Type {
	case flatview.TypeNull:
		expr = "NULL"
		column.Type = bigquery.StringFieldType

	case flatview.TypeString, flatview.TypeReference:
		expr = jsonExtract(dataColumn, path, field, "", identity)
		column.Type = bigquery.StringFieldType

	case flatview.TypeBoolean:
		expr = jsonExtract(dataColumn, path, field, "", func(e string) string {
			return udfCall(datasetID, UDFBoolean, e)
		})
		column.Type = bigquery.BooleanFieldType

	case flatview.TypeNumber:
		expr = jsonExtract(dataColumn, path, field, "", func(e string) string {
			return udfCall(datasetID, UDFNumber, e)
		})
		column.Type = bigquery.NumericFieldType

	case flatview.TypeTimestamp:
		expr = jsonExtract(dataColumn, path, field, "", func(e string) string {
			return udfCall(datasetID, UDFTimestamp, e)
		})
		column.Type = bigquery.TimestampFieldType

	case flatview.TypeArray:
		// Arrays are not scalars: the scalar extraction form would yield
		// NULL and the unnest join would drop the row.
		expr = jsonExtractValue(dataColumn, path, field, "", func(e string) string {
			return udfCall(datasetID, UDFArray, e)
		})
		column.Type = bigquery.StringFieldType
		column.Repeated = true

	case flatview.TypeGeopoint:
		lat := jsonExtract(dataColumn, path, field, latitudeSubPath, identity)
		lon := jsonExtract(dataColumn, path, field, longitudeSubPath, identity)
		return leafResult{
			selects: []selectExpr{
				{Name: qualified, Expr: fmt.Sprintf("`%s`.%s(%s, %s)", datasetID, UDFGeopoint, lat, lon)},
				{Name: qualified + "_latitude", Expr: fmt.Sprintf("SAFE_CAST(%s AS NUMERIC)", lat)},
				{Name: qualified + "_longitude", Expr: fmt.Sprintf("SAFE_CAST(%s AS NUMERIC)", lon)},
			},
			columns: []*bigquery.FieldSchema{
				{Name: qualified, Type: bigquery.GeographyFieldType, Description: field.Description},
				{Name: qualified + "_latitude", Type: bigquery.NumericFieldType},
				{Name: qualified + "_longitude", Type: bigquery.NumericFieldType},
			},
		}, nil

	case flatview.TypeMap:
		return leafResult{}, flatview.InvalidSchemaError(path, field.Name, "map field passed to leaf resolver")

	default:
		return leafResult{}, flatview.UnknownFieldTypeError(path, field.Name, field.Type)
	}

	return leafResult{
		selects: []selectExpr{{Name: qualified, Expr: expr}},
		columns: []*bigquery.FieldSchema{column},
	}, nil
}
