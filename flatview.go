// Package flatview compiles declarative document schemas into flattened
// BigQuery view definitions over a raw JSON changelog table.
//
// # Problem
//
// A document-oriented changelog table stores one JSON-encoded document
// snapshot per change event. Querying it directly means digging values out
// of a JSON blob with no types. flatview lets you declare the shape of your
// documents once and derive typed, flat views from it - without rewriting
// the raw storage.
//
// # Core Concepts
//
// A Schema is a tree of named, typed Fields. Leaf fields (string, boolean,
// number, timestamp, reference, geopoint, array, null) become view columns;
// map fields nest and contribute their descendants under path-qualified
// names (a map "address" with child "city" yields column "address_city").
//
// The sqlgen package turns a Schema into a CompiledView: SQL text that
// extracts and type-coerces values out of the JSON data column, plus the
// matching BigQuery column descriptors. Two view shapes are produced from
// the same schema: a changelog view (every change event) and a latest
// snapshot view (newest surviving row per document).
//
// # Basic Usage
//
//	schema, _ := schemafile.Load("schemas/users.json")
//	view, _ := sqlgen.BuildSchemaViewQuery("my_dataset", "users_raw_changelog", *schema)
//	// view.Query is the SQL text, view.Columns the descriptor list
//
// # View Management
//
// The factory package creates and refreshes the warehouse view objects from
// compiled views, using an explicit BigQuery client handle:
//
//	f := factory.New(client, "my_dataset")
//	err := f.InitializeSchemaViews(ctx, "users", "app", *schema)
//
// The compiler itself performs no I/O: every compile is a pure function of
// (dataset, table name, Schema) and is safe to call concurrently.
package flatview

// FieldType identifies the declared type of a schema field. The set is
// closed; the compiler fails fast on anything else rather than silently
// dropping the field.
type FieldType string

// The supported field types. TypeMap is purely structural - it never
// produces a column itself, only path-qualified columns for its children.
const (
	TypeBoolean   FieldType = "boolean"
	TypeGeopoint  FieldType = "geopoint"
	TypeNumber    FieldType = "number"
	TypeMap       FieldType = "map"
	TypeArray     FieldType = "array"
	TypeNull      FieldType = "null"
	TypeString    FieldType = "string"
	TypeTimestamp FieldType = "timestamp"
	TypeReference FieldType = "reference"
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	return string(t)
}

// Known reports whether t is one of the supported field types.
func (t FieldType) Known() bool {
	switch t {
	case TypeBoolean, TypeGeopoint, TypeNumber, TypeMap, TypeArray,
		TypeNull, TypeString, TypeTimestamp, TypeReference:
		return true
	}
	return false
}

// Field describes a single named value within a document.
//
// Fields is present (and must be non-empty) only when Type is TypeMap;
// every other type must not carry child fields. Names are caller-controlled
// and not assumed pre-sanitized - sqlgen.Qualify flattens them into valid
// column identifiers.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Fields      []Field   `json:"fields,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema declares the shape of the documents stored in a changelog table.
// It is immutable input: the compiler only traverses it.
type Schema struct {
	Fields []Field `json:"fields"`

	// IDField and TimestampField optionally name the fields holding the
	// document identifier and document timestamp.
	IDField        string `json:"idField,omitempty"`
	TimestampField string `json:"timestampField,omitempty"`
}

// Validate checks the structural invariants of the schema: non-empty field
// names, known field types, child fields present exactly on map fields, and
// sibling name uniqueness. It returns an error wrapping ErrInvalidSchema or
// ErrUnknownFieldType on the first violation found.
func (s Schema) Validate() error {
	return validateFields(nil, s.Fields)
}

func validateFields(path []string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return invalidSchemaf(path, "(unnamed)", "field name is empty")
		}
		if seen[f.Name] {
			return invalidSchemaf(path, f.Name, "duplicate sibling field name")
		}
		seen[f.Name] = true

		if !f.Type.Known() {
			return unknownFieldTypef(path, f.Name, f.Type)
		}
		switch {
		case f.Type == TypeMap && len(f.Fields) == 0:
			return invalidSchemaf(path, f.Name, "map field has no child fields")
		case f.Type != TypeMap && len(f.Fields) > 0:
			return invalidSchemaf(path, f.Name, "non-map field carries child fields")
		}
		if f.Type == TypeMap {
			if err := validateFields(append(path, f.Name), f.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}
