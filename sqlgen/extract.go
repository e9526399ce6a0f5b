package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flatview/flatview"
)

var nonIdentChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Qualify flattens a nesting path plus a leaf name into a single column
// identifier: every character of name outside [A-Za-z0-9_] is replaced with
// an underscore, then path and name are joined with underscores.
//
// Known gap, carried forward deliberately: BigQuery additionally requires
// column names to start with a letter or underscore and to be at most 128
// characters, and neither rule is enforced here. Inventing a truncation
// policy would silently change column names for existing deployments, so
// callers must not assume the output is always valid.
func Qualify(path []string, name string) string {
	clean := nonIdentChars.ReplaceAllString(name, "_")
	return strings.Join(append(append([]string(nil), path...), clean), "_")
}

// transformFunc wraps a JSON-extraction expression in further SQL, e.g. a
// coercion function call. identity leaves the expression untouched.
type transformFunc func(expr string) string

func identity(expr string) string { return expr }

// jsonExtract builds the expression pulling the raw string value for field
// out of the JSON data column. The JSON pointer is the dot-joined nesting
// path plus the field name; subPath is appended verbatim to reach inside a
// composite value (a geopoint's latitude member, for example). No escaping
// beyond this is performed: path and field names are trusted not to contain
// the pointer delimiter in a way that changes meaning.
func jsonExtract(dataColumn string, path []string, field flatview.Field, subPath string, transform transformFunc) string {
	return transform(fmt.Sprintf("JSON_EXTRACT_SCALAR(%s, '$.%s')",
		dataColumn, jsonPointer(path, field, subPath)))
}

// jsonExtractValue is the non-scalar sibling of jsonExtract: it pulls the
// JSON text of the addressed value rather than its scalar rendering.
// JSON_EXTRACT_SCALAR returns NULL for any non-scalar JSON value, so array
// fields must extract through this form or every array coerces to NULL and
// the unnest join drops the row.
func jsonExtractValue(dataColumn string, path []string, field flatview.Field, subPath string, transform transformFunc) string {
	return transform(fmt.Sprintf("JSON_EXTRACT(%s, '$.%s')",
		dataColumn, jsonPointer(path, field, subPath)))
}

func jsonPointer(path []string, field flatview.Field, subPath string) string {
	pointer := field.Name
	if len(path) > 0 {
		pointer = strings.Join(path, ".") + "." + field.Name
	}
	return pointer + subPath
}
