// Package factory creates and refreshes the warehouse view objects for a
// document schema. It is the thin orchestration layer around the sqlgen
// compiler: all I/O lives here, behind an explicit BigQuery client handle,
// never in the compiler.
package factory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/flatview/flatview"
	"github.com/flatview/flatview/sqlgen"
)

// Raw changelog row format. Every collection's raw changelog table carries
// exactly these columns; the document payload itself lives in data.
var rawChangelogSchema = bigquery.Schema{
	{Name: "timestamp", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "event_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "document_name", Type: bigquery.StringFieldType, Required: true},
	{Name: "operation", Type: bigquery.StringFieldType, Required: true},
	{Name: "data", Type: bigquery.StringFieldType},
	{Name: "document_id", Type: bigquery.StringFieldType},
}

// Raw changelog fields never surfaced in schema views.
var excludedProvenanceFields = map[string]bool{
	"event_id": true,
	"data":     true,
}

// SchemaViewFactory creates and updates the pair of schema views
// (changelog, latest snapshot) derived from a document schema.
//
// Creation is not serialized across callers: two factories racing to create
// the same view can both observe non-existence, and one of them will get an
// already-exists error from the warehouse. Callers needing at-most-once
// creation must coordinate externally.
type SchemaViewFactory struct {
	client    *bigquery.Client
	datasetID string
}

// New returns a factory operating on the given dataset through client.
// The client handle is owned by the caller.
func New(client *bigquery.Client, datasetID string) *SchemaViewFactory {
	return &SchemaViewFactory{client: client, datasetID: datasetID}
}

// InitializeSchemaViews installs the coercion functions into the dataset,
// compiles the changelog and latest-snapshot views for the named schema
// over tableName's raw changelog, and creates or updates both view objects.
func (f *SchemaViewFactory) InitializeSchemaViews(ctx context.Context, tableName, schemaName string, schema flatview.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	if err := f.installUDFs(ctx); err != nil {
		return err
	}

	source := flatview.ChangelogTableName(flatview.RawTableName(tableName))
	viewBase := flatview.SchemaViewName(tableName, schemaName)

	changelog, err := sqlgen.BuildSchemaViewQuery(f.datasetID, source, schema)
	if err != nil {
		return fmt.Errorf("compiling changelog view for %s: %w", viewBase, err)
	}
	latest, err := sqlgen.BuildLatestSnapshotViewQuery(f.datasetID, source, schema)
	if err != nil {
		return fmt.Errorf("compiling latest view for %s: %w", viewBase, err)
	}

	if err := f.ensureView(ctx, flatview.ChangelogTableName(viewBase), changelog); err != nil {
		return err
	}
	return f.ensureView(ctx, flatview.LatestViewName(viewBase), latest)
}

// ensureView creates the view if absent, otherwise refreshes its query and
// attached schema in place.
func (f *SchemaViewFactory) ensureView(ctx context.Context, name string, view *sqlgen.CompiledView) error {
	columns := MergeProvenanceColumns(view.Columns)
	table := f.client.Dataset(f.datasetID).Table(name)

	err := table.Create(ctx, &bigquery.TableMetadata{
		ViewQuery: view.Query,
		Schema:    columns,
	})
	if err == nil {
		return nil
	}
	if !isAlreadyExists(err) {
		return fmt.Errorf("creating view %s: %w", name, err)
	}

	_, err = table.Update(ctx, bigquery.TableMetadataToUpdate{
		ViewQuery: view.Query,
		Schema:    columns,
	}, "")
	if err != nil {
		return fmt.Errorf("updating view %s: %w", name, err)
	}
	return nil
}

// installUDFs runs the idempotent coercion-function DDL against the dataset.
func (f *SchemaViewFactory) installUDFs(ctx context.Context) error {
	for _, ddl := range sqlgen.UDFDefinitions(f.datasetID) {
		job, err := f.client.Query(ddl).Run(ctx)
		if err != nil {
			return fmt.Errorf("installing coercion functions: %w", err)
		}
		status, err := job.Wait(ctx)
		if err != nil {
			return fmt.Errorf("installing coercion functions: %w", err)
		}
		if err := status.Err(); err != nil {
			return fmt.Errorf("installing coercion functions: %w", err)
		}
	}
	return nil
}

// MergeProvenanceColumns appends the raw changelog's provenance fields
// (everything except event_id and data) after the compiler's own
// descriptors, matching the fixed leading columns of the compiled query.
func MergeProvenanceColumns(columns bigquery.Schema) bigquery.Schema {
	merged := append(bigquery.Schema(nil), columns...)
	for _, field := range rawChangelogSchema {
		if excludedProvenanceFields[field.Name] {
			continue
		}
		clone := *field
		merged = append(merged, &clone)
	}
	return merged
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
