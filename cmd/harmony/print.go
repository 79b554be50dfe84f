package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jvdsande/harmony/contrib/graphql"
	"github.com/jvdsande/harmony/internal/cli"
)

const (
	generatedHeader = "Code generated by harmony. DO NOT EDIT."
	watchDebounce   = 100 * time.Millisecond
)

func (a *app) printCmd() *cobra.Command {
	var (
		out   string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the GraphQL schema",
		Long:  `Compile the model files and print the SDL document.`,
		Example: `  # Print to stdout
  harmony print

  # Write to a file and regenerate on every model change
  harmony print --out schema.graphql --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out = resolveString(out, a.cfg.Output.Schema)
			logger := a.logger(cmd)
			run := func() error {
				return a.print(cmd, logger, out)
			}
			if err := run(); err != nil && !watch {
				return err
			} else if err != nil {
				logger.Error("print failed", "error", err)
			}
			if !watch {
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.watch(ctx, logger, run)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the schema to this file instead of stdout")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "regenerate when model files change")
	return cmd
}

func (a *app) print(cmd *cobra.Command, logger *slog.Logger, out string) error {
	g, err := a.cfg.Compile(cmd.Context(), logger)
	if err != nil {
		return err
	}
	if out == "" {
		sdl, err := graphql.Print(g)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
		return err
	}
	sdl, err := graphql.Print(g, graphql.WithHeader(generatedHeader))
	if err != nil {
		return err
	}
	if err := writeFile(out, []byte(sdl)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout(cmd), "Wrote %s (%d models)\n", out, len(g.Models))
	return nil
}

// watch runs fn whenever a file matching the models pattern changes, until
// ctx is done. Failures of fn are logged and watching goes on.
func (a *app) watch(ctx context.Context, logger *slog.Logger, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(a.cfg.Models)
	if err := w.Add(dir); err != nil {
		return cli.ConfigError(fmt.Sprintf("watching %s", dir), err)
	}
	logger.Info("watching model files", "pattern", a.cfg.Models)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(a.cfg.Models, ev) {
				continue
			}
			logger.Debug("model file changed", "file", ev.Name, "op", ev.Op.String())
			fire = time.After(watchDebounce)
		case <-fire:
			fire = nil
			if err := fn(); err != nil {
				logger.Error("regeneration failed", "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether ev changes a file matching pattern.
func relevant(pattern string, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	ok, err := filepath.Match(pattern, ev.Name)
	return err == nil && ok
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
