package sqlgen

import (
	"cloud.google.com/go/bigquery"

	"github.com/flatview/flatview"
)

// walkResult aggregates everything a traversal emits, in declaration order.
// Array and geopoint qualified names are tracked separately so the view
// assemblers can apply row multiplication and snapshot exclusions that the
// leaf resolver has no view-level context for.
type walkResult struct {
	selects   []selectExpr
	arrays    []string
	geopoints []string
	columns   []*bigquery.FieldSchema
}

func (r *walkResult) merge(other walkResult) {
	r.selects = append(r.selects, other.selects...)
	r.arrays = append(r.arrays, other.arrays...)
	r.geopoints = append(r.geopoints, other.geopoints...)
	r.columns = append(r.columns, other.columns...)
}

// walkSchema traverses fields depth-first in declaration order, resolving
// leaves and recursing into map fields with the extended path. Map fields
// emit no column themselves: their descendants' qualified names already
// encode the full path. Structural invariants are re-checked here so a
// malformed schema is rejected at traversal time even when the caller
// skipped Validate.
func walkSchema(datasetID, dataColumn string, path []string, fields []flatview.Field) (walkResult, error) {
	var out walkResult
	for _, field := range fields {
		if field.Type == flatview.TypeMap {
			if len(field.Fields) == 0 {
				return walkResult{}, flatview.InvalidSchemaError(path, field.Name, "map field has no child fields")
			}
			child, err := walkSchema(datasetID, dataColumn, append(path, field.Name), field.Fields)
			if err != nil {
				return walkResult{}, err
			}
			out.merge(child)
			continue
		}

		if len(field.Fields) > 0 {
			return walkResult{}, flatview.InvalidSchemaError(path, field.Name, "non-map field carries child fields")
		}

		leaf, err := resolveLeaf(datasetID, dataColumn, path, field)
		if err != nil {
			return walkResult{}, err
		}
		out.merge(walkResult{selects: leaf.selects, columns: leaf.columns})

		qualified := Qualify(path, field.Name)
		switch field.Type {
		case flatview.TypeArray:
			out.arrays = append(out.arrays, qualified)
		case flatview.TypeGeopoint:
			out.geopoints = append(out.geopoints, qualified)
		}
	}
	return out, nil
}
