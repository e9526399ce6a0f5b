package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
)

// Config represents the flatview configuration from flatview.yaml.
type Config struct {
	// BigQuery configuration
	BigQuery BigQueryConfig `mapstructure:"bigquery"`

	// Schema file location
	SchemasDir string `mapstructure:"schemas_dir"`

	// Per-command configuration
	Generate GenerateConfig `mapstructure:"generate"`
}

// BigQueryConfig holds warehouse connection settings.
type BigQueryConfig struct {
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

// GenerateConfig holds view generation settings.
type GenerateConfig struct {
	Table  string `mapstructure:"table"`
	DryRun bool   `mapstructure:"dry_run"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("FLATVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schemas_dir", "schemas")

	v.SetDefault("bigquery.project", "")
	v.SetDefault("bigquery.dataset", "")

	v.SetDefault("generate.table", "")
	v.SetDefault("generate.dry_run", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for flatview.yaml or flatview.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		// Try flatview.yaml then flatview.yml
		for _, name := range []string{"flatview.yaml", "flatview.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break // Stop at repo root
		}

		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// Validate checks that the settings required for warehouse access are set.
// Dry-run compilation needs only a dataset name, not a project.
func (c *Config) Validate(dryRun bool) error {
	if c.BigQuery.Dataset == "" {
		return fmt.Errorf("bigquery.dataset is required")
	}
	if !dryRun && c.BigQuery.Project == "" {
		return fmt.Errorf("bigquery.project is required")
	}
	return nil
}
