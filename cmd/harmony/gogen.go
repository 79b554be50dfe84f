package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvdsande/harmony/compiler/gen"
)

func (a *app) gogenCmd() *cobra.Command {
	var out, pkg string
	cmd := &cobra.Command{
		Use:   "gogen",
		Short: "Generate Go structs",
		Long:  `Generate one Go struct per model output type.`,
		Example: `  # Write models.go into ./models
  harmony gogen --out models --package models`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out = resolveString(out, a.cfg.Output.Go)
			pkg = resolveString(pkg, a.cfg.Output.Package, "models")
			g, err := a.cfg.Compile(cmd.Context(), a.logger(cmd))
			if err != nil {
				return err
			}
			if out == "" {
				src, err := gen.GenerateGo(g, pkg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err := gen.WriteGo(g, out, pkg); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout(cmd), "Generated package %s in %s\n", pkg, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: stdout)")
	cmd.Flags().StringVar(&pkg, "package", "", "package name of the generated code")
	return cmd
}
