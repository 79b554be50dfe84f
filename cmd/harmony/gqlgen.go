package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvdsande/harmony/contrib/graphql"
	"github.com/jvdsande/harmony/internal/cli"
)

func (a *app) gqlgenCmd() *cobra.Command {
	var path, schema string
	cmd := &cobra.Command{
		Use:   "gqlgen",
		Short: "Inject scalar bindings into gqlgen.yml",
		Long: `Add the harmony schema file and the bindings of the Date, Number, JSON and
adapter identifier scalars to a gqlgen configuration file. The file is
created when missing.`,
		Example: `  harmony gqlgen --config-file gqlgen.yml --schema schema.graphql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path = resolveString(path, a.cfg.GQLGen.Config)
			schema = resolveString(schema, a.cfg.Output.Schema)
			g, err := a.cfg.Compile(cmd.Context(), a.logger(cmd))
			if err != nil {
				return err
			}
			c, err := graphql.LoadGQLGenConfig(path)
			if err != nil {
				return cli.ConfigError("loading gqlgen configuration", err)
			}
			c.InjectHarmonyBindings(g, schema)
			if err := c.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout(cmd), "Updated %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config-file", "", "gqlgen configuration file (default: gqlgen.config)")
	cmd.Flags().StringVar(&schema, "schema", "", "schema file to register (default: output.schema)")
	return cmd
}
