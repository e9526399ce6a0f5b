package sqlgen

import (
	"reflect"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"

	"github.com/flatview/flatview"
)

func columnNames(columns []*bigquery.FieldSchema) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func TestBuildSchemaViewQueryScalarsOnly(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "name", Type: flatview.TypeString},
		{Name: "age", Type: flatview.TypeNumber},
	}}

	view, err := BuildSchemaViewQuery("ds", "users_raw_changelog", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	want := "SELECT document_name, timestamp, operation, " +
		"JSON_EXTRACT_SCALAR(data, '$.name') AS name, " +
		"`ds`.json_to_number(JSON_EXTRACT_SCALAR(data, '$.age')) AS age " +
		"FROM `ds.users_raw_changelog`"
	if view.Query != want {
		t.Errorf("query =\n%q\nwant:\n%q", view.Query, want)
	}

	if strings.Contains(view.Query, "CROSS JOIN UNNEST") {
		t.Error("scalar-only schema produced an UNNEST clause")
	}
	if got := columnNames(view.Columns); !reflect.DeepEqual(got, []string{"name", "age"}) {
		t.Errorf("columns = %v, want [name age]", got)
	}
}

func TestBuildSchemaViewQueryZeroFields(t *testing.T) {
	view, err := BuildSchemaViewQuery("ds", "empty_raw_changelog", flatview.Schema{})
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	want := "SELECT document_name, timestamp, operation FROM `ds.empty_raw_changelog`"
	if view.Query != want {
		t.Errorf("query = %q, want %q", view.Query, want)
	}
	if len(view.Columns) != 0 {
		t.Errorf("columns = %v, want none", columnNames(view.Columns))
	}
}

func TestBuildSchemaViewQueryMapNesting(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "m", Type: flatview.TypeMap, Fields: []flatview.Field{
			{Name: "x", Type: flatview.TypeString},
			{Name: "y", Type: flatview.TypeBoolean},
		}},
	}}

	view, err := BuildSchemaViewQuery("ds", "docs_raw_changelog", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	// The map contributes no descriptor itself, only path-qualified children.
	if got := columnNames(view.Columns); !reflect.DeepEqual(got, []string{"m_x", "m_y"}) {
		t.Errorf("columns = %v, want [m_x m_y]", got)
	}
	if !strings.Contains(view.Query, "JSON_EXTRACT_SCALAR(data, '$.m.x') AS m_x") {
		t.Errorf("query missing nested extraction for m_x:\n%s", view.Query)
	}
}

func TestBuildSchemaViewQuerySingleArray(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "a", Type: flatview.TypeArray},
	}}

	view, err := BuildSchemaViewQuery("ds", "t", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	want := "SELECT * FROM (" +
		"SELECT document_name, timestamp, operation, " +
		"`ds`.json_to_array(JSON_EXTRACT(data, '$.a')) AS a " +
		"FROM `ds.t`" +
		") AS t\n" +
		"CROSS JOIN UNNEST(t.a) AS a_member WITH OFFSET a_index"
	if view.Query != want {
		t.Errorf("query =\n%q\nwant:\n%q", view.Query, want)
	}

	if got := columnNames(view.Columns); !reflect.DeepEqual(got, []string{"a", "a_index", "a_member"}) {
		t.Errorf("columns = %v, want [a a_index a_member]", got)
	}
	index, member := view.Columns[1], view.Columns[2]
	if index.Type != bigquery.IntegerFieldType || index.Repeated {
		t.Errorf("a_index = {%s repeated=%v}, want INTEGER nullable", index.Type, index.Repeated)
	}
	if member.Type != bigquery.StringFieldType || member.Repeated {
		t.Errorf("a_member = {%s repeated=%v}, want STRING nullable", member.Type, member.Repeated)
	}
}

func TestBuildSchemaViewQueryMultipleArrays(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "a", Type: flatview.TypeArray},
		{Name: "name", Type: flatview.TypeString},
		{Name: "b", Type: flatview.TypeArray},
	}}

	view, err := BuildSchemaViewQuery("ds", "t", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	// One sequential UNNEST join per array field: rows multiply by the
	// product of array lengths.
	if got := strings.Count(view.Query, "CROSS JOIN UNNEST"); got != 2 {
		t.Errorf("UNNEST clause count = %d, want 2", got)
	}
	aJoin := strings.Index(view.Query, "CROSS JOIN UNNEST(t.a)")
	bJoin := strings.Index(view.Query, "CROSS JOIN UNNEST(t.b)")
	if aJoin == -1 || bJoin == -1 || aJoin > bJoin {
		t.Errorf("join clauses missing or out of declaration order:\n%s", view.Query)
	}

	// Synthetic pairs come after all regular descriptors, in field order.
	want := []string{"a", "name", "b", "a_index", "a_member", "b_index", "b_member"}
	if got := columnNames(view.Columns); !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
}

func TestBuildSchemaViewQueryMalformedSchema(t *testing.T) {
	tests := []struct {
		name   string
		schema flatview.Schema
	}{
		{
			name: "map without children",
			schema: flatview.Schema{Fields: []flatview.Field{
				{Name: "m", Type: flatview.TypeMap},
			}},
		},
		{
			name: "non-map with children",
			schema: flatview.Schema{Fields: []flatview.Field{
				{Name: "s", Type: flatview.TypeString, Fields: []flatview.Field{
					{Name: "x", Type: flatview.TypeString},
				}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSchemaViewQuery("ds", "t", tt.schema)
			if !flatview.IsInvalidSchemaErr(err) {
				t.Errorf("got %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestBuildSchemaViewQueryUnknownType(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "x", Type: flatview.FieldType("uuid")},
	}}
	_, err := BuildSchemaViewQuery("ds", "t", schema)
	if !flatview.IsUnknownFieldTypeErr(err) {
		t.Errorf("got %v, want ErrUnknownFieldType", err)
	}
}

func TestBuildSchemaViewQueryIdempotent(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "name", Type: flatview.TypeString},
		{Name: "tags", Type: flatview.TypeArray},
		{Name: "loc", Type: flatview.TypeGeopoint},
	}}

	first, err := BuildSchemaViewQuery("ds", "events_raw", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}
	second, err := BuildSchemaViewQuery("ds", "events_raw", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	if first.Query != second.Query {
		t.Error("identical input produced different query text")
	}
	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Error("identical input produced different column lists")
	}
}

func TestBuildSchemaViewQueryEndToEnd(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "name", Type: flatview.TypeString},
		{Name: "tags", Type: flatview.TypeArray},
		{Name: "loc", Type: flatview.TypeGeopoint},
	}}

	view, err := BuildSchemaViewQuery("ds", "events_raw", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}

	want := "SELECT * FROM (" +
		"SELECT document_name, timestamp, operation, " +
		"JSON_EXTRACT_SCALAR(data, '$.name') AS name, " +
		"`ds`.json_to_array(JSON_EXTRACT(data, '$.tags')) AS tags, " +
		"`ds`.json_to_geopoint(JSON_EXTRACT_SCALAR(data, '$.loc.latitude'), JSON_EXTRACT_SCALAR(data, '$.loc.longitude')) AS loc, " +
		"SAFE_CAST(JSON_EXTRACT_SCALAR(data, '$.loc.latitude') AS NUMERIC) AS loc_latitude, " +
		"SAFE_CAST(JSON_EXTRACT_SCALAR(data, '$.loc.longitude') AS NUMERIC) AS loc_longitude " +
		"FROM `ds.events_raw`" +
		") AS events_raw\n" +
		"CROSS JOIN UNNEST(events_raw.tags) AS tags_member WITH OFFSET tags_index"
	if view.Query != want {
		t.Errorf("query =\n%q\nwant:\n%q", view.Query, want)
	}

	wantColumns := []string{"name", "tags", "loc", "loc_latitude", "loc_longitude", "tags_index", "tags_member"}
	if got := columnNames(view.Columns); !reflect.DeepEqual(got, wantColumns) {
		t.Errorf("columns = %v, want %v", got, wantColumns)
	}
}
