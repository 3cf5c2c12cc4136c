package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newEnginesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List registered engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			kit, err := g.newKit(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = kit.Close(ctx) }()

			infos := kit.Engines().List()
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{info.Name, strings.Join(info.Extensions, " "), info.Description}
			}
			return g.output(cmd).Print([]string{"NAME", "EXTENSIONS", "DESCRIPTION"}, rows, infos)
		},
	}
}

func newSchemaCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "schema ENGINE",
		Short: "Print the JSON schema of an engine's options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kit, err := g.newKit(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = kit.Close(ctx) }()

			data, err := kit.Engines().Schema(args[0])
			if err != nil {
				return err
			}
			return g.output(cmd).Raw(append(data, '\n'))
		},
	}
}
