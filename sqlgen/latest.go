package sqlgen

import (
	"fmt"

	"github.com/flatview/flatview"
)

// BuildLatestSnapshotViewQuery compiles a schema into the latest-snapshot
// view over the given raw table: the same flattened columns as the
// changelog view, reduced to the newest change event per document, with
// deleted documents filtered out.
//
// The outer shape differs from the changelog view but the CompiledView
// contract and the column list are identical, including the synthetic
// array index/member columns.
func BuildLatestSnapshotViewQuery(datasetID, rawTableName string, schema flatview.Schema) (*CompiledView, error) {
	walked, err := walkSchema(datasetID, dataColumn, nil, schema.Fields)
	if err != nil {
		return nil, err
	}

	numbered := fmt.Sprintf(
		"SELECT %s, ROW_NUMBER() OVER (PARTITION BY document_name ORDER BY timestamp DESC) AS change_rank FROM `%s.%s`",
		selectList(walked.selects), datasetID, rawTableName)

	base := fmt.Sprintf(
		"SELECT * EXCEPT(change_rank) FROM (%s) WHERE change_rank = 1 AND operation != \"DELETE\"",
		numbered)

	return assembleView(base, rawTableName, walked), nil
}
