package cli

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	"github.com/matzehuels/jsondiagram/pkg/search"
	"github.com/matzehuels/jsondiagram/pkg/visibility"
)

// exploreCommand opens a diagram in the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Explore a JSON document as an interactive diagram",
		Long: `Explore a JSON document in the terminal.

Nodes are shown as an indented tree. Collapse subtrees, limit the visible
depth, search labels and property keys/values (debounced as you type), and
select nodes to highlight their neighbours. With --watch the diagram is
rebuilt whenever the file is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd, args[0], watch)
		},
	}

	addLayoutFlags(cmd)
	cmd.Flags().Int("level", visibility.NoLevelLimit, "collapse nodes deeper than this level")
	cmd.Flags().Duration("search-delay", search.DefaultDelay, "search debounce delay")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the file changes")

	return cmd
}

func (c *CLI) runExplore(cmd *cobra.Command, path string, watch bool) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, err := document.ImportFile(path)
	if err != nil {
		return err
	}

	engine, closeEngine, err := c.newEngine(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize layout cache: %w", err)
	}
	defer closeEngine()

	// The terminal belongs to the explorer; problems surface in its status line.
	quiet := log.New(io.Discard)

	view := diagram.New(diagram.Options{
		Direction:   cfg.LayoutDirection(),
		Density:     cfg.LayoutDensity(),
		Engine:      engine,
		SearchDelay: cfg.SearchDelay,
		Logger:      quiet,
	})
	if res := view.Load(ctx, doc); res.Err != nil {
		c.Logger.Warn("layout failed, positions are estimates", "error", res.Err)
	}
	view.SetLevelThreshold(cfg.Level)
	view.TakeViewportRequests()

	var updates <-chan document.Update
	if watch {
		w, err := document.NewWatcher(path, 0, quiet)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		updates = w.Updates()
	}

	model := NewExplorerModel(ctx, view, path, updates)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("explorer: %w", err)
	}
	return ctx.Err()
}
