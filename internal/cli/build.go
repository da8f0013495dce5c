package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/graph"
	"github.com/matzehuels/jsondiagram/pkg/tree"
)

// buildCommand prints the unpositioned diagram graph of a document.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Build the node/edge graph of a JSON document",
		Long: `Build the diagram graph of a JSON document without laying it out.

Every object and array becomes a node with ids assigned in pre-order
(node-1 is the root); scalar members of objects become node properties and
each containment relation becomes an edge. The result is written as
{"nodes": [...], "edges": [...]} JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := document.ImportFile(args[0])
			if err != nil {
				return err
			}
			g := tree.Build(v)
			c.Logger.Debug("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "depth", g.MaxDepth())

			if output == "" {
				return graph.WriteGraph(g, cmd.OutOrStdout())
			}
			if err := graph.WriteGraphFile(g, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Built %d nodes", g.NodeCount())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
