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

// Config represents the harmony configuration from harmony.yaml.
type Config struct {
	// Models is a glob matching the YAML model files.
	Models string `mapstructure:"models"`
	// Adapter serves the models that name no adapter.
	Adapter string `mapstructure:"adapter"`
	// Strict fails on malformed fields.
	Strict bool `mapstructure:"strict"`

	Output OutputConfig `mapstructure:"output"`
	GQLGen GQLGenConfig `mapstructure:"gqlgen"`
}

// OutputConfig holds the generated file settings.
type OutputConfig struct {
	Schema  string `mapstructure:"schema"`
	Go      string `mapstructure:"go"`
	Package string `mapstructure:"package"`
}

// GQLGenConfig holds the gqlgen integration settings.
type GQLGenConfig struct {
	Config string `mapstructure:"config"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("HARMONY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if configPath != "" {
		cfg.resolve(filepath.Dir(configPath))
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models", "models/*.yaml")
	v.SetDefault("adapter", "")
	v.SetDefault("strict", false)

	v.SetDefault("output.schema", "")
	v.SetDefault("output.go", "")
	v.SetDefault("output.package", "models")

	v.SetDefault("gqlgen.config", "gqlgen.yml")
}

// resolve makes the relative paths of c relative to dir.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Models, &c.Output.Schema, &c.Output.Go, &c.GQLGen.Config} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for harmony.yaml or harmony.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"harmony.yaml", "harmony.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repository root.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
