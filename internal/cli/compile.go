package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/jvdsande/harmony/compiler/gen"
	"github.com/jvdsande/harmony/compiler/load"
)

// ModelFiles returns the files matching the models glob, sorted.
func (c *Config) ModelFiles() ([]string, error) {
	files, err := filepath.Glob(c.Models)
	if err != nil {
		return nil, ConfigError(fmt.Sprintf("invalid models pattern %q", c.Models), err)
	}
	if len(files) == 0 {
		return nil, ConfigError(fmt.Sprintf("no model files match %q", c.Models), nil)
	}
	slices.Sort(files)
	return files, nil
}

// Compile loads the model files and compiles them.
func (c *Config) Compile(ctx context.Context, logger *slog.Logger) (*gen.Graph, error) {
	files, err := c.ModelFiles()
	if err != nil {
		return nil, err
	}
	models, err := load.Files(ctx, files...)
	if err != nil {
		return nil, ModelParseError("loading models", err)
	}
	opts := []gen.Option{gen.WithStrict(c.Strict)}
	if logger != nil {
		opts = append(opts, gen.WithLogger(logger))
	}
	if c.Adapter != "" {
		opts = append(opts, gen.WithDefaultAdapter(c.Adapter))
	}
	g, err := gen.Compile(models, opts...)
	if err != nil {
		return nil, ModelParseError("compiling models", err)
	}
	return g, nil
}
