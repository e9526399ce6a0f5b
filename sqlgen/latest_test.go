package sqlgen

import (
	"reflect"
	"strings"
	"testing"

	"github.com/flatview/flatview"
)

func TestBuildLatestSnapshotViewQueryScalars(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "name", Type: flatview.TypeString},
	}}

	view, err := BuildLatestSnapshotViewQuery("ds", "users_raw_changelog", schema)
	if err != nil {
		t.Fatalf("BuildLatestSnapshotViewQuery() error: %v", err)
	}

	want := "SELECT * EXCEPT(change_rank) FROM (" +
		"SELECT document_name, timestamp, operation, " +
		"JSON_EXTRACT_SCALAR(data, '$.name') AS name, " +
		"ROW_NUMBER() OVER (PARTITION BY document_name ORDER BY timestamp DESC) AS change_rank " +
		"FROM `ds.users_raw_changelog`" +
		") WHERE change_rank = 1 AND operation != \"DELETE\""
	if view.Query != want {
		t.Errorf("query =\n%q\nwant:\n%q", view.Query, want)
	}
}

func TestBuildLatestSnapshotViewQueryColumnsMatchChangelog(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "name", Type: flatview.TypeString},
		{Name: "tags", Type: flatview.TypeArray},
		{Name: "loc", Type: flatview.TypeGeopoint},
	}}

	changelog, err := BuildSchemaViewQuery("ds", "events_raw_changelog", schema)
	if err != nil {
		t.Fatalf("BuildSchemaViewQuery() error: %v", err)
	}
	latest, err := BuildLatestSnapshotViewQuery("ds", "events_raw_changelog", schema)
	if err != nil {
		t.Fatalf("BuildLatestSnapshotViewQuery() error: %v", err)
	}

	// The two compilers share a contract: identical column lists, only the
	// outer query shape differs.
	if !reflect.DeepEqual(changelog.Columns, latest.Columns) {
		t.Errorf("latest columns = %v, changelog columns = %v",
			columnNames(latest.Columns), columnNames(changelog.Columns))
	}

	if !strings.Contains(latest.Query, "ROW_NUMBER() OVER (PARTITION BY document_name ORDER BY timestamp DESC)") {
		t.Errorf("latest query missing dedup window:\n%s", latest.Query)
	}
	if !strings.Contains(latest.Query, "CROSS JOIN UNNEST(events_raw_changelog.tags) AS tags_member WITH OFFSET tags_index") {
		t.Errorf("latest query missing array unnest:\n%s", latest.Query)
	}
}

func TestBuildLatestSnapshotViewQueryMalformedSchema(t *testing.T) {
	schema := flatview.Schema{Fields: []flatview.Field{
		{Name: "m", Type: flatview.TypeMap},
	}}
	_, err := BuildLatestSnapshotViewQuery("ds", "t", schema)
	if !flatview.IsInvalidSchemaErr(err) {
		t.Errorf("got %v, want ErrInvalidSchema", err)
	}
}
