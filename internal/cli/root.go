// Package cli implements the tmplkit command line.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/tmplkit"
	"github.com/reglet-dev/tmplkit/domain/entities"
	"github.com/reglet-dev/tmplkit/log"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

// loadConfig returns the configuration named by --config, or the defaults,
// with --log-level applied.
func (g *globals) loadConfig() (entities.Config, error) {
	cfg := entities.DefaultConfig()
	if g.configPath != "" {
		loaded, err := tmplkit.LoadConfig(g.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	entities.WithLogLevel(g.logLevel)(&cfg)
	return cfg, nil
}

// newKit builds a Kit whose logs go to errW.
func (g *globals) newKit(ctx context.Context, errW io.Writer) (*tmplkit.Kit, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := log.New(
		log.WithLevelName(cfg.LogLevel),
		log.WithFormat(cfg.LogFormat),
		log.WithWriter(errW),
	)
	return tmplkit.New(ctx, cfg, tmplkit.WithLogger(logger))
}

func (g *globals) output(cmd *cobra.Command) *Output {
	return NewOutput(g.jsonOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// NewRootCmd creates the tmplkit command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "tmplkit",
		Short:         "Render files through chained template engines",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to tmplkit.yaml")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newRenderCmd(g),
		newEnginesCmd(g),
		newSchemaCmd(g),
	)
	return rootCmd
}

// Execute runs the command tree and reports a failure on stderr. It returns
// the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		jsonMode, _ := cmd.PersistentFlags().GetBool("json")
		NewOutput(jsonMode, cmd.OutOrStdout(), cmd.ErrOrStderr()).Error(err)
		return 1
	}
	return 0
}
