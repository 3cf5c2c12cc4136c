package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/tmplkit"
	"github.com/reglet-dev/tmplkit/application/config"
)

func newRenderCmd(g *globals) *cobra.Command {
	var localsPath string
	var sets []string
	var outPath string

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a file through the engines named by its extensions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			locals := tmplkit.Locals{}
			if localsPath != "" {
				loaded, err := tmplkit.LoadLocals(localsPath)
				if err != nil {
					return err
				}
				locals = loaded
			}
			for _, kv := range sets {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return fmt.Errorf("invalid --set %q, want key=value", kv)
				}
				if err := config.Set(locals, key, value); err != nil {
					return fmt.Errorf("invalid --set %q: %w", kv, err)
				}
			}

			kit, err := g.newKit(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = kit.Close(ctx) }()

			res, err := kit.RenderFile(ctx, args[0], locals)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, res.Output, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
				return nil
			}
			out := g.output(cmd)
			if g.jsonOutput {
				return out.JSON(struct {
					RenderID    string   `json:"render_id"`
					File        string   `json:"file"`
					ContentType string   `json:"content_type,omitempty"`
					Engines     []string `json:"engines"`
					Output      string   `json:"output"`
				}{res.RenderID, res.File, res.ContentType, res.Engines, string(res.Output)})
			}
			return out.Raw(res.Output)
		},
	}

	cmd.Flags().StringVarP(&localsPath, "locals", "l", "", "YAML or JSON file of locals")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a string local (key=value, dotted keys nest), repeatable")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write output to a file instead of stdout")

	return cmd
}
