// Package config loads the pipeline configuration from YAML. Every path the
// pipeline touches is explicit here; nothing depends on the working directory
// beyond relative paths in the file itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
)

// Config is the top-level pipeline configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	RawDir    string `yaml:"raw_dir"`
	Name      string `yaml:"name"`
	TextField string `yaml:"text_field"`
	OutputDir string `yaml:"output_dir"`

	TopN             int      `yaml:"top_n"`
	DiffMeanVarLimit int      `yaml:"diff_mean_var_limit"`
	Methods          []string `yaml:"methods"`
	HypothesisDiff   bool     `yaml:"hypothesis_diff"`

	CachePath string `yaml:"cache_path"`
	Stoplist  string `yaml:"stoplist"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig names the Prometheus textfile written at the end of a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:   "data",
		RawDir:    "2021-01",
		Name:      "dataset",
		TextField: "ictihat",
		OutputDir: "results",
		TopN:      assoc.DefaultTopN,
		Methods:   []string{assoc.MethodFrequency},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, internalerr.NewInputError(path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, internalerr.NewInputError(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values and method names.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required: %w", internalerr.ErrInvalidConfig)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required: %w", internalerr.ErrInvalidConfig)
	}
	if c.TopN < 0 {
		return fmt.Errorf("top_n must be >= 0, got %d: %w", c.TopN, internalerr.ErrInvalidConfig)
	}
	if c.DiffMeanVarLimit < 0 {
		return fmt.Errorf("diff_mean_var_limit must be >= 0, got %d: %w", c.DiffMeanVarLimit, internalerr.ErrInvalidConfig)
	}
	for _, m := range c.Methods {
		if _, err := assoc.Lookup(m); err != nil {
			return err
		}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q: %w", c.Logging.Format, internalerr.ErrInvalidConfig)
	}
	return nil
}

// SelectedMethods returns the configured methods, or the default set.
func (c Config) SelectedMethods() []string {
	if len(c.Methods) > 0 {
		return c.Methods
	}
	return assoc.DefaultMethods(c.HypothesisDiff)
}

// TopNFor returns the export cap for a method. The difference of mean and
// variance is uncapped unless diff_mean_var_limit is set.
func (c Config) TopNFor(method string) int {
	if method == assoc.MethodDiffMeanVar {
		return c.DiffMeanVarLimit
	}
	return c.TopN
}

// RawPath is the directory of raw decision files.
func (c Config) RawPath() string {
	return filepath.Join(c.DataDir, c.RawDir)
}

// CorpusPath is the cleaned corpus file.
func (c Config) CorpusPath() string {
	return filepath.Join(c.DataDir, c.Name+".json")
}
