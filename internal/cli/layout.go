package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/internal/config"
	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/visibility"
)

// layoutCommand creates the layout command for computing positioned scenes.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Lay out a JSON document and print the positioned scene",
		Long: `Lay out a JSON document with Graphviz and print the resulting scene.

The scene lists every node with its position, size and visibility flags,
and every edge. With --level N, nodes deeper than N start collapsed and
their subtrees are marked hidden; positions are computed for all nodes.

Placements are cached by content, direction and density (see 'cache').`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, output)
		},
	}

	addLayoutFlags(cmd)
	cmd.Flags().Int("level", visibility.NoLevelLimit, "collapse nodes deeper than this level")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdout io.Writer, input string, cfg *config.Config, output string) error {
	doc, err := document.ImportFile(input)
	if err != nil {
		return err
	}

	engine, closeEngine, err := c.newEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize layout cache: %w", err)
	}
	defer closeEngine()

	view := diagram.New(diagram.Options{
		Direction: cfg.LayoutDirection(),
		Density:   cfg.LayoutDensity(),
		Engine:    engine,
		Logger:    c.Logger,
	})

	spinner := newSpinner(ctx, "Laying out "+input)
	spinner.Start()
	res := view.Load(ctx, doc)
	view.SetLevelThreshold(cfg.Level)
	if res.Err != nil {
		spinner.StopWithError("Layout failed: " + res.Err.Error())
	} else {
		spinner.StopWithSuccess(fmt.Sprintf("Laid out %d nodes", len(res.Nodes)))
	}
	if spinner.Cancelled() {
		return ctx.Err()
	}

	scene := view.Scene()
	printStats(len(scene.Nodes), len(scene.Edges), len(scene.Nodes)-len(scene.VisibleNodes()), len(res.Fallbacks))
	for _, id := range res.Fallbacks {
		c.Logger.Warn("node kept a fallback size or position", "node", id)
	}

	if output == "" {
		return writeScene(stdout, scene)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := writeScene(f, scene); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(output)
	return nil
}

func writeScene(w io.Writer, scene diagram.Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scene)
}
