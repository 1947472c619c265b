package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fenrir/approot/compose"
	"github.com/fenrir/approot/host/memhost"

	"github.com/m1gwings/treedrawer/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and resolve the composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.resolve()
			if err != nil {
				return err
			}
			defer c.shutdown(g)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("ok"))
			return err
		},
	}
}

func (c *cli) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print module order and bootstrap components with their bound tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := c.resolve()
			if err != nil {
				return err
			}
			defer c.shutdown(g)
			return printGraph(cmd.OutOrStdout(), g)
		},
	}
}

func printGraph(w io.Writer, g *compose.Graph) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Modules"), subtitleStyle.Render("("+g.Policy().String()+")"))
	for i, name := range g.Order() {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, name)
	}
	b.WriteString(titleStyle.Render("Bootstrap") + "\n")
	roots := g.Roots()
	if len(roots) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, r := range roots {
		toks := make([]string, 0, len(r.Deps))
		for _, t := range r.Deps.Tokens() {
			toks = append(toks, string(t))
		}
		fmt.Fprintf(&b, "  %s <%s> in %s: %s\n", r.Component.Name, r.Component.Selector, r.Module.Name, strings.Join(toks, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (c *cli) bootstrapCmd() *cobra.Command {
	var page []string
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Mount the bootstrap components into an in-memory page and render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("page") {
				c.cfg.Page = page
			}
			return c.bootstrap(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVar(&page, "page", nil, "page element selectors (default: the bootstrap selectors)")
	return cmd
}

func (c *cli) bootstrap(w io.Writer) (err error) {
	g, err := c.resolve()
	if err != nil {
		return err
	}
	defer func() {
		if serr := g.Shutdown(); serr != nil && err == nil {
			err = fmt.Errorf("shutdown: %w", serr)
		}
	}()

	overrides, err := c.cfg.MountMap()
	if err != nil {
		return err
	}
	selector := func(comp *compose.Component) string {
		if s, ok := overrides[comp.Name]; ok {
			return s
		}
		return comp.Selector
	}

	elements := c.cfg.Page
	if len(elements) == 0 {
		for _, r := range g.Roots() {
			elements = append(elements, selector(r.Component))
		}
	}
	doc := memhost.NewDocument(memhost.WithElements(elements...), memhost.WithLogger(c.log))

	mounts := compose.MountPoints{}
	for _, r := range g.Roots() {
		if at, ok := doc.At(selector(r.Component)); ok {
			mounts[r.Component.Name] = at
		}
	}

	handles, err := compose.Bootstrap(g, mounts, doc)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var b strings.Builder
	for _, h := range handles {
		fmt.Fprintf(&b, "%s %s at <%s> %s\n",
			successStyle.Render("mounted"), h.Component.Name, h.Mount.Selector, subtitleStyle.Render(h.ID.String()))
	}
	b.WriteString(titleStyle.Render("Page") + "\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return doc.Render(w)
}

func (c *cli) graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Draw the import tree of the composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := c.declaration()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), importTree(root))
			return err
		},
	}
}

// importTree draws root and its imports. A module already on the current
// path is drawn once more with a "(cycle)" mark and not expanded.
func importTree(root *compose.Module) *tree.Tree {
	t := tree.NewTree(tree.NodeString(root.Name))
	addImports(t, root, map[*compose.Module]bool{root: true})
	return t
}

func addImports(t *tree.Tree, m *compose.Module, onPath map[*compose.Module]bool) {
	for _, imp := range m.Imports {
		if imp == nil {
			continue
		}
		if onPath[imp] {
			t.AddChild(tree.NodeString(imp.Name + " (cycle)"))
			continue
		}
		child := t.AddChild(tree.NodeString(imp.Name))
		onPath[imp] = true
		addImports(child, imp, onPath)
		delete(onPath, imp)
	}
}

func (c *cli) shutdown(g *compose.Graph) {
	if err := g.Shutdown(); err != nil {
		c.log.Warn("shutdown failed", zap.Error(err))
	}
}
