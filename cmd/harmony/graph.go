package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) graphCmd() *cobra.Command {
	var (
		out    string
		cycles bool
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the model reference graph",
		Long: `Print the graph of references between models in DOT format, or list the
reference cycles.`,
		Example: `  # Render with graphviz
  harmony graph | dot -Tsvg > models.svg

  # List reference cycles
  harmony graph --cycles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.cfg.Compile(cmd.Context(), a.logger(cmd))
			if err != nil {
				return err
			}
			refs := g.References()
			if cycles {
				for _, c := range refs.Cycles() {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			}
			dot, err := refs.DOT()
			if err != nil {
				return err
			}
			if out != "" {
				return writeFile(out, []byte(dot))
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), dot)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the DOT graph to this file")
	cmd.Flags().BoolVar(&cycles, "cycles", false, "list reference cycles instead")
	return cmd
}
