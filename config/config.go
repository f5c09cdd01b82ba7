package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the extraction run configuration.
type Config struct {
	// MaxPages bounds the pagination walk.
	MaxPages int `yaml:"max_pages"`
	// DebugMode emits per-fragment classifier and mapper decisions. It
	// changes logging only, never behavior.
	DebugMode bool `yaml:"debug_mode"`
	// ContainerSimilarityThreshold is the allowed deviation in labeled
	// sub-elements when grouping sibling containers.
	ContainerSimilarityThreshold int `yaml:"container_similarity_threshold"`
	// MinContainerCount is how many similar siblings make a container layout.
	MinContainerCount int `yaml:"min_container_count"`
	// LabelMatchMode is "strict" or "fuzzy".
	LabelMatchMode string `yaml:"label_match_mode"`

	Filters struct {
		MinPropertyValue float64  `yaml:"min_property_value"`
		MaxPropertyValue float64  `yaml:"max_property_value"`
		Municipalities   []string `yaml:"municipalities"`
		PropertyTypes    []string `yaml:"property_types"`
	} `yaml:"filters"`

	Export struct {
		OutputDir       string `yaml:"output_dir"`
		SpreadsheetURL  string `yaml:"spreadsheet_url"`
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"export"`
}

// LoadConfig loads configuration from a YAML file and applies defaults for
// anything the file leaves out.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a configuration with the stock defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{
		MaxPages:                     50,
		ContainerSimilarityThreshold: 2,
		MinContainerCount:            2,
		LabelMatchMode:               "fuzzy",
	}
	cfg.Filters.MaxPropertyValue = 0 // 0 means no upper bound
	cfg.Export.OutputDir = "."
	return cfg
}

// Validate rejects configurations the session must not start with.
func (c *Config) Validate() error {
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive, got %d", c.MaxPages)
	}
	if c.MinContainerCount < 0 {
		return fmt.Errorf("min_container_count must not be negative, got %d", c.MinContainerCount)
	}
	if c.ContainerSimilarityThreshold < 0 {
		return fmt.Errorf("container_similarity_threshold must not be negative, got %d", c.ContainerSimilarityThreshold)
	}
	if m := c.LabelMatchMode; m != "" && m != "strict" && m != "fuzzy" {
		return fmt.Errorf("label_match_mode must be strict or fuzzy, got %q", m)
	}
	if c.Filters.MaxPropertyValue > 0 && c.Filters.MinPropertyValue > c.Filters.MaxPropertyValue {
		return fmt.Errorf("min_property_value %.2f exceeds max_property_value %.2f",
			c.Filters.MinPropertyValue, c.Filters.MaxPropertyValue)
	}
	return nil
}
