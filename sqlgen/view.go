package sqlgen

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/flatview/flatview"
)

// dataColumn is the changelog column holding the raw JSON document payload.
const dataColumn = "data"

// Fixed leading columns of every changelog-shaped query, present regardless
// of schema content.
const leadingColumns = "document_name, timestamp, operation"

// CompiledView is the sole artifact handed to the warehouse layer: the view
// body SQL and the ordered column descriptors to attach to the view object.
type CompiledView struct {
	Query   string
	Columns []*bigquery.FieldSchema
}

// BuildSchemaViewQuery compiles a schema into the changelog view over the
// given raw table: one output row per change event, with every leaf field
// extracted and coerced into a flat typed column.
//
// When the schema contains array fields, the base SELECT is wrapped in a
// subquery and one CROSS JOIN UNNEST clause is appended per array field, so
// each array independently multiplies the row count by its element count
// (a source row with any empty array disappears, standard unnest-join
// semantics). Every array contributes two trailing synthetic columns,
// <field>_index and <field>_member, appended after all regular descriptors.
//
// The compile is a pure function of its arguments: no I/O, no retained
// state, identical output for identical input.
func BuildSchemaViewQuery(datasetID, rawTableName string, schema flatview.Schema) (*CompiledView, error) {
	walked, err := walkSchema(datasetID, dataColumn, nil, schema.Fields)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("SELECT %s FROM `%s.%s`",
		selectList(walked.selects), datasetID, rawTableName)

	return assembleView(base, rawTableName, walked), nil
}

// selectList joins the walker's expressions after the fixed leading
// columns. Zero fields leaves just the leading columns, no trailing comma.
func selectList(selects []selectExpr) string {
	parts := make([]string, len(selects))
	for i, s := range selects {
		parts[i] = s.Expr + " AS " + s.Name
	}
	return leadingColumns + optf(len(parts) > 0, ", %s", strings.Join(parts, ", "))
}

// assembleView applies array row multiplication to a base query and builds
// the final descriptor list. Shared by the changelog and latest-snapshot
// compilers, which differ only in base query shape.
func assembleView(base, tableAlias string, walked walkResult) *CompiledView {
	columns := append([]*bigquery.FieldSchema(nil), walked.columns...)

	query := base
	if len(walked.arrays) > 0 {
		joins := make([]string, len(walked.arrays))
		for i, name := range walked.arrays {
			joins[i] = fmt.Sprintf("CROSS JOIN UNNEST(%s.%s) AS %s_member WITH OFFSET %s_index",
				tableAlias, name, name, name)
		}
		query = fmt.Sprintf("SELECT * FROM (%s) AS %s\n%s", base, tableAlias, strings.Join(joins, "\n"))

		for _, name := range walked.arrays {
			columns = append(columns,
				&bigquery.FieldSchema{Name: name + "_index", Type: bigquery.IntegerFieldType},
				&bigquery.FieldSchema{Name: name + "_member", Type: bigquery.StringFieldType},
			)
		}
	}

	return &CompiledView{Query: query, Columns: columns}
}
