package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/pkg/store"
)

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the stored diagram with the starter nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.Editor.Reset(cmd.Context())
			printSuccess(c.Out, "Diagram reset")
			printStats(c.Out, len(sess.Editor.Nodes()), len(sess.Editor.Edges()))
			return nil
		},
	}
}

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and clear the diagram store",
	}

	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeClearCommand())

	return cmd
}

// storedKey returns the key as the backend sees it, namespace included.
func storedKey(s store.Store, key string) (store.Store, string) {
	if scoped, ok := s.(*store.Scoped); ok {
		return scoped.Unwrap(), scoped.Key(key)
	}
	return s, key
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the diagram is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			inner, key := storedKey(s, c.Config.Store.Key)
			if f, ok := inner.(*store.File); ok {
				fmt.Fprintln(c.Out, f.Path(key))
				return nil
			}
			fmt.Fprintf(c.Out, "%s:%s\n", c.Config.Store.Backend, key)
			return nil
		},
	}
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored diagram",
		Long: `Delete the stored diagram; the next run starts from the starter nodes.
With --all, a file store removes every entry in its directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if all {
				inner, _ := storedKey(s, "")
				f, ok := inner.(*store.File)
				if !ok {
					return fmt.Errorf("--all is only supported by the file backend, not %q", c.Config.Store.Backend)
				}
				if err := f.Clear(); err != nil {
					return err
				}
				printSuccess(c.Out, "Cleared store")
				printDetail(c.Out, "Directory: %s", f.Dir())
				return nil
			}

			if err := c.newAdapter(s).Clear(ctx); err != nil {
				return err
			}
			printSuccess(c.Out, "Deleted %s", c.Config.Store.Key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every entry of a file store")
	return cmd
}
