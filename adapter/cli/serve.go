package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/taskrank/adapter/api"
	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	mcpinternal "github.com/felixgeelhaar/taskrank/internal/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveMCP bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and optionally the MCP server)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Container == nil {
			return errors.New("app not initialized")
		}
		c := app.Container

		cfg := api.DefaultServerConfig()
		cfg.Addr = c.Config.HTTPAddr
		cfg.CORSAllowedOrigins = c.Config.CORSAllowedOrigins
		server := api.NewServer(cfg, api.DependenciesFromContainer(c), c.Logger)

		g, gctx := errgroup.WithContext(cmd.Context())

		g.Go(func() error {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})

		if serveMCP {
			g.Go(func() error {
				err := mcpinternal.Serve(gctx, c.Config, mcplocal.DependenciesFromContainer(c), Version, c.Logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve MCP tools on MCP_ADDR")

	rootCmd.AddCommand(serveCmd)
}
