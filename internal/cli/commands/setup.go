// Package commands implements the leapviz subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/internal/config"
	"github.com/leapstack-labs/leapviz/internal/plugins"
	"github.com/leapstack-labs/leapviz/pkg/datatree"
	"github.com/leapstack-labs/leapviz/pkg/drill"
	"github.com/leapstack-labs/leapviz/pkg/wire"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger stored on the command
// context by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// Layout is the space handed to plugins: the terminal width when known, the
// configured layout otherwise.
func (c *CommandContext) Layout() datatree.Layout {
	return datatree.Layout{
		Width:  c.Renderer.Width(c.Cfg.Layout.Width),
		Height: c.Cfg.Layout.Height,
	}
}

// LoadTree reads a result file, builds its trees with the enabled plugins
// and prepares them for rendering.
func (c *CommandContext) LoadTree(path string) (*datatree.Tree, error) {
	res, err := wire.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	enabled, err := plugins.Lookup(c.Cfg.Plugins.Enabled)
	if err != nil {
		return nil, err
	}
	tree, err := datatree.Build(res, enabled, datatree.Options{
		Logger: c.Logger.With("file", path),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tree.Schema.Registry().BeforeRender(c.Layout())
	return tree, nil
}

// DrillEngine returns an engine for the configured grammar.
func (c *CommandContext) DrillEngine() *drill.Engine {
	var formatter drill.LiteralFormatter = drill.MalloyLiterals{}
	if c.Cfg.Grammar == config.GrammarSQL {
		formatter = drill.SQLLiterals{}
	}
	return drill.New(drill.Options{Formatter: formatter, TabWidth: c.Cfg.TabWidth})
}
