package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvdsande/harmony/contrib/graphql"
	"github.com/jvdsande/harmony/internal/cli"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the model files",
		Long: `Compile the model files, print the SDL document and validate it with the
GraphQL schema loader, federation directives included.`,
		Example: `  # Validate using config file settings
  harmony validate

  # Fail on malformed fields
  HARMONY_STRICT=true harmony validate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.cfg.Compile(cmd.Context(), a.logger(cmd))
			if err != nil {
				return err
			}
			sdl, err := graphql.Print(g)
			if err != nil {
				return err
			}
			if err := graphql.Validate(sdl); err != nil {
				return cli.InvalidSDLError("validating schema", err)
			}

			out := a.stdout(cmd)
			fmt.Fprintf(out, "Schema is valid. Found %d models:\n", len(g.Models))
			for _, m := range g.Models {
				kind := m.Adapter
				if m.External {
					kind = "external"
				}
				fmt.Fprintf(out, "  - %s (%s, %d fields)\n", m.Name, kind, m.Schemas.Main.Fields().Len())
			}
			return nil
		},
	}
}
