package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsondiagram/internal/config"
	"github.com/matzehuels/jsondiagram/internal/server"
	"github.com/matzehuels/jsondiagram/pkg/search"
)

// serveCommand runs the HTTP/WebSocket rendering boundary.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams to browser renderers over HTTP and WebSocket",
		Long: `Start the rendering boundary.

  GET  /healthz        liveness probe
  POST /api/validate   check editor text
  POST /api/layout     lay out a JSON body and answer the scene
  GET  /ws             interactive session (one diagram per connection)

Stop with Ctrl+C; open sessions are closed gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			engine, closeEngine, err := c.newEngine(ctx, cfg)
			if err != nil {
				return fmt.Errorf("initialize layout cache: %w", err)
			}
			defer closeEngine()

			srv := server.New(server.Config{
				Addr:            cfg.Server.Addr,
				AllowAllOrigins: cfg.Server.AllowAllOrigins,
				Direction:       cfg.LayoutDirection(),
				Density:         cfg.LayoutDensity(),
				SearchDelay:     cfg.SearchDelay,
				Engine:          engine,
				Logger:          c.Logger,
			})

			printInfo("Listening on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
			if cfg.Server.AllowAllOrigins {
				printWarning("CORS allows all origins")
			}
			return srv.Serve(ctx)
		},
	}

	addLayoutFlags(cmd)
	cmd.Flags().String("addr", config.DefaultAddr, "listen address")
	cmd.Flags().Bool("allow-all-origins", false, "allow browser renderers from any origin")
	cmd.Flags().Duration("search-delay", search.DefaultDelay, "search debounce delay")

	return cmd
}
