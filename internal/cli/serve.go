package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/internal/config"
	"github.com/matzehuels/archboard/internal/metrics"
	"github.com/matzehuels/archboard/internal/server"
)

// serveCommand creates the serve command for the browser canvas.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram API for the browser canvas",
		Long: `Serve the diagram over HTTP. The browser canvas drives the editor through
the /api routes; Prometheus metrics are exposed at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}

			metrics.Install()
			sess, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			printInfo(c.Out, "Serving %s on %s", StyleValue.Render(sess.Editor.Snapshot().Name),
				StyleHighlight.Render("http://"+c.Config.Server.Addr))
			printStats(c.Out, len(sess.Editor.Nodes()), len(sess.Editor.Edges()))
			return server.New(sess.Editor, c.Logger).ListenAndServe(ctx, c.Config.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	return cmd
}
