// Package schemafile loads flatview schemas from JSON or YAML files.
// A schema file's base name (without extension) is the schema name used
// when deriving view names.
package schemafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/flatview/flatview"
)

var extensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// Load reads and validates a single schema file. YAML is a superset of
// JSON here, so both formats go through the same decoder.
func Load(path string) (*flatview.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}
	var schema flatview.Schema
	if err := yaml.UnmarshalStrict(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return &schema, nil
}

// LoadDir loads every schema file in dir, keyed by schema name (the file
// base name without extension). Non-schema files are skipped.
func LoadDir(dir string) (map[string]*flatview.Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema directory %s: %w", dir, err)
	}

	schemas := make(map[string]*flatview.Schema)
	for _, entry := range entries {
		if entry.IsDir() || !extensions[filepath.Ext(entry.Name())] {
			continue
		}
		schema, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, dup := schemas[name]; dup {
			return nil, fmt.Errorf("duplicate schema name %q in %s", name, dir)
		}
		schemas[name] = schema
	}
	return schemas, nil
}
