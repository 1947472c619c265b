package main

import (
	"fmt"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/internal/app"
	"github.com/fenrir/approot/internal/config"
	"github.com/fenrir/approot/internal/logging"
	"github.com/fenrir/approot/manifest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds flag values and what PersistentPreRunE derives from them.
type cli struct {
	cfgFile  string
	manifest string
	policy   string
	verbose  bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "approot",
		Short: "Resolve and bootstrap module composition graphs",
		Long: titleStyle.Render("approot") + subtitleStyle.Render(" - module composition root") + `

approot loads a composition (the built-in ImageLink app, or a YAML/CUE
manifest), resolves its import graph and provider scopes, and mounts the
bootstrap components into an in-memory page.

` + subtitleStyle.Render("Examples:") + `
  approot validate                       Check the built-in composition
  approot resolve --manifest app.cue     Show module order and bound tokens
  approot bootstrap --page app-root      Mount and render the page
  approot graph                          Draw the import tree`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: c.sync,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default ./"+config.FileName+".yaml)")
	pf.StringVar(&c.manifest, "manifest", "", "composition manifest (.yaml, .yml, .cue, .json)")
	pf.StringVar(&c.policy, "policy", "", "import override policy: last-import-wins or first-import-wins")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(c.validateCmd(), c.resolveCmd(), c.bootstrapCmd(), c.graphCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.Load(cmd.Context(), config.LoadOptions{File: c.cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if c.verbose {
		level = "debug"
	}
	log, err := logging.New(cfg.Log.Mode, level)
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log
	return nil
}

// sync flushes buffered log entries. Sync on a terminal stderr fails on some
// platforms, so the error is dropped.
func (c *cli) sync(*cobra.Command, []string) {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

// declaration returns the configured root module. Manifests are built
// against the ImageLink catalog.
func (c *cli) declaration() (*compose.Module, error) {
	if c.cfg.Manifest == "" {
		return app.Declaration()
	}
	m, err := manifest.Load(c.cfg.Manifest)
	if err != nil {
		return nil, err
	}
	return manifest.Build(m, app.Catalog())
}

func (c *cli) resolve() (*compose.Graph, error) {
	root, err := c.declaration()
	if err != nil {
		return nil, err
	}
	g, err := compose.Resolve(root,
		compose.WithLogger(c.log),
		compose.WithPolicy(c.cfg.ComposePolicy()),
	)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root.Name, err)
	}
	return g, nil
}
